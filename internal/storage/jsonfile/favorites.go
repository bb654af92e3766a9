package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lanmedia/gallery/internal/models"
	"github.com/lanmedia/gallery/internal/storage"
)

// Storage persists one favorites record per project as
// <dir>/<project>.json. Every read loads the whole file,
// every write rewrites it.
type Storage struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(dir string) (*Storage, error) {
	const op = "storage.jsonfile.New"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// projectLock returns the mutex serializing writes for one project.
func (s *Storage) projectLock(project string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sanitizeProject(project)
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// sanitizeProject reduces a project name to a bare file name,
// so a crafted name cannot leave the projects directory.
func sanitizeProject(project string) string {
	project = strings.ReplaceAll(project, string(os.PathSeparator), "_")
	project = filepath.Base(project)
	if project == "" || project == "." || project == ".." {
		project = "default"
	}
	return project
}

func (s *Storage) recordPath(project string) string {
	return filepath.Join(s.dir, sanitizeProject(project)+".json")
}

// Load reads the project's record. A missing file yields an
// empty record; an unparsable one yields ErrCorruptRecord.
func (s *Storage) Load(project string) (models.FavoritesRecord, error) {
	const op = "storage.jsonfile.Load"

	data, err := os.ReadFile(s.recordPath(project))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.FavoritesRecord{}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var record models.FavoritesRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrCorruptRecord)
	}
	if record == nil {
		record = models.FavoritesRecord{}
	}

	return record, nil
}

// Save rewrites the project's record atomically enough for a
// single process: temp file in the same directory, then rename.
func (s *Storage) Save(project string, record models.FavoritesRecord) error {
	const op = "storage.jsonfile.Save"

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	path := s.recordPath(project)
	tmp, err := os.CreateTemp(s.dir, ".favorites-*")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Toggle flips membership of mediaID in the user's set and
// persists the record. The load-flip-save sequence is serialized
// per project, so concurrent toggles cannot lose each other's data.
func (s *Storage) Toggle(project, username, mediaID string) (bool, error) {
	const op = "storage.jsonfile.Toggle"

	l := s.projectLock(project)
	l.Lock()
	defer l.Unlock()

	record, err := s.Load(project)
	if err != nil {
		if errors.Is(err, storage.ErrCorruptRecord) {
			// accepted data-loss: start over from an empty record
			record = models.FavoritesRecord{}
		} else {
			return false, fmt.Errorf("%s: %w", op, err)
		}
	}

	favorites := record[username]
	idx := -1
	for i, id := range favorites {
		if id == mediaID {
			idx = i
			break
		}
	}

	var isFavorited bool
	if idx >= 0 {
		record[username] = append(favorites[:idx], favorites[idx+1:]...)
		isFavorited = false
	} else {
		record[username] = append(favorites, mediaID)
		isFavorited = true
	}

	if err := s.Save(project, record); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return isFavorited, nil
}
