package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrUnsupported is returned when a file is neither image, audio nor video
	ErrUnsupported = errors.New("unsupported media type")
	// ErrOutsideDir is returned for names that are absolute or climb out of
	// the media directory
	ErrOutsideDir = errors.New("media name outside the media directory")
)

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

// MimeType returns the MIME type for a media file name, keyed by extension
func MimeType(name string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// Store resolves media file names against the collection's media directory
type Store struct {
	Dir string
	log *zap.Logger
}

// NewStore creates a store rooted at dir
func NewStore(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{Dir: dir, log: log.Named("media")}
}

// Path returns the on-disk path of a media file name. Names taken from card
// HTML must stay inside the media directory.
func (s *Store) Path(name string) (string, error) {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%q: %w", name, ErrOutsideDir)
	}
	return filepath.Join(s.Dir, rel), nil
}

// Exists reports whether name is present in the media directory
func (s *Store) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// DataURL returns name as a base64 data URI. References that already are
// data URIs or remote URLs are returned as they are. ok is false when the
// file does not exist or cannot be read.
func (s *Store) DataURL(name string) (string, bool) {
	name = strings.Trim(strings.TrimSpace(name), `"'`)
	if name == "" {
		return "", false
	}
	if isExternal(name) {
		return name, true
	}

	path, err := s.Path(name)
	if err != nil {
		s.log.Warn("Media reference rejected", zap.String("name", name), zap.Error(err))
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Debug("Media file not resolved", zap.String("name", name), zap.Error(err))
		return "", false
	}

	return "data:" + MimeType(name) + ";base64," + base64.StdEncoding.EncodeToString(data), true
}

func isExternal(ref string) bool {
	return strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "http")
}
