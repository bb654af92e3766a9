package gallery

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/lanmedia/gallery/internal/models"
)

// filterSearch narrows entries to fuzzy matches of term,
// case- and diacritic-insensitive. Catalog order is preserved
// so cursors keep indexing the same ordering within one search.
func filterSearch(entries []models.MediaEntry, term string) []models.MediaEntry {
	out := make([]models.MediaEntry, 0, len(entries))
	for _, entry := range entries {
		if fuzzy.MatchNormalizedFold(term, entry.Name) {
			out = append(out, entry)
		}
	}
	return out
}
