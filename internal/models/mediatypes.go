package models

import (
	"path/filepath"
	"strings"
)

// Extension allow-list partitioned into image and video sets.
// Lookup is case-insensitive.
var imageExtensions = map[string]string{
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".png":   "image/png",
	".gif":   "image/gif",
	".bmp":   "image/bmp",
	".webp":  "image/webp",
	".svg":   "image/svg+xml",
	".tiff":  "image/tiff",
	".tif":   "image/tiff",
	".ico":   "image/x-icon",
	".heic":  "image/heic",
	".heif":  "image/heif",
	".avif":  "image/avif",
	".jfif":  "image/jpeg",
	".pjpeg": "image/pjpeg",
	".pjp":   "image/jpeg",
}

var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".m4v":  "video/x-m4v",
	".3gp":  "video/3gpp",
}

func ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsMediaFile reports whether the file name carries
// an allow-listed media extension.
func IsMediaFile(name string) bool {
	e := ext(name)
	if _, ok := imageExtensions[e]; ok {
		return true
	}
	_, ok := videoExtensions[e]
	return ok
}

// IsVideoFile reports whether the name belongs to the video subset.
func IsVideoFile(name string) bool {
	_, ok := videoExtensions[ext(name)]
	return ok
}

// MimeByName returns the MIME type for an allow-listed file name.
// The second value is false for names outside the allow-list.
func MimeByName(name string) (string, bool) {
	e := ext(name)
	if m, ok := imageExtensions[e]; ok {
		return m, true
	}
	m, ok := videoExtensions[e]
	return m, ok
}
