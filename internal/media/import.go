package media

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/h2non/filetype"
	cp "github.com/otiai10/copy"
	"go.uber.org/zap"
)

var referenceRes = []*regexp.Regexp{
	regexp.MustCompile(`<img src="([^"]+)"`),
	regexp.MustCompile(`<source src="([^"]+)"`),
	regexp.MustCompile(`<video src="([^"]+)"`),
}

// Import copies an external file into the media directory and returns the
// name it was stored under. An existing name gets a numeric suffix
// (photo.png, photo_1.png, ...). Only image, audio and video content is
// accepted.
func (s *Store) Import(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read media file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !isMedia(data, ext) {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	name := s.uniqueName(filepath.Base(path))
	target, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	s.log.Info("Imported media", zap.String("source", path), zap.String("name", name))
	return name, nil
}

func isMedia(data []byte, ext string) bool {
	if filetype.IsImage(data) || filetype.IsAudio(data) || filetype.IsVideo(data) {
		return true
	}
	// SVG is plain text and has no magic number
	return ext == ".svg" && strings.Contains(string(data), "<svg")
}

func (s *Store) uniqueName(name string) string {
	if !s.Exists(name) {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if !s.Exists(candidate) {
			return candidate
		}
	}
}

// Referenced returns the media file names referenced by img, source and
// video tags in text, in first-seen order without duplicates
func Referenced(text string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, re := range referenceRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if name := m[1]; !seen[name] && !isExternal(name) {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// CopyReferenced copies every referenced media file that exists in the
// store into dst. Files already present in dst are not overwritten, and
// names that would leave either directory are skipped.
// It returns the names that were copied.
func (s *Store) CopyReferenced(text, dst string) ([]string, error) {
	var copied []string
	for _, name := range Referenced(text) {
		src, err := s.Path(name)
		if err != nil {
			s.log.Warn("Skipping media reference", zap.String("name", name), zap.Error(err))
			continue
		}
		if !s.Exists(name) {
			continue
		}
		target := filepath.Join(dst, filepath.FromSlash(name))
		if _, err := os.Stat(target); err == nil {
			continue
		}
		if err := cp.Copy(src, target); err != nil {
			return copied, fmt.Errorf("failed to copy media %s: %w", name, err)
		}
		copied = append(copied, name)
	}
	return copied, nil
}
