package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"
	"go.uber.org/zap"

	"codeberg.org/snonux/delimit/internal/mapper"
	"codeberg.org/snonux/delimit/internal/tokenizer"
)

// PreShowFile is the snapshot taken before a deck is loaded into the session
const PreShowFile = "pre_show_state.json"

// State is the persisted working session
type State struct {
	Content         string              `json:"conteudo"`
	Tags            string              `json:"tags"`
	Delimiters      map[string]bool     `json:"delimitadores"`
	Deck            string              `json:"deck_selecionado"`
	NoteType        string              `json:"modelo_selecionado"`
	FieldMappings   mapper.FieldMapping `json:"field_mappings"`
	FieldImages     map[string][]string `json:"field_images"`
	LastPreviewHTML string              `json:"last_preview_html"`
	Language        string              `json:"language"`
	NumberedTags    bool                `json:"numbered_tags"`
	RepeatTags      bool                `json:"repeat_tags"`
	TagState        mapper.TagState     `json:"tag_state"`
	PreviewLine     int                 `json:"preview_line"`
	JoinedOriginal  string              `json:"joined_original,omitempty"` // text before the last line join
}

// Default returns the state of a fresh session: only ';' active
func Default() *State {
	return &State{
		Delimiters:    tokenizer.NewSet(tokenizer.DefaultSymbol).States(),
		FieldMappings: mapper.FieldMapping{},
		FieldImages:   map[string][]string{},
		Language:      "pt",
	}
}

// DelimiterSet returns the active delimiters of the session
func (s *State) DelimiterSet() *tokenizer.Set {
	return tokenizer.FromStates(s.Delimiters)
}

// Rows returns the card and tag text as aligned rows
func (s *State) Rows() []mapper.Row {
	return mapper.Rows(s.Content, s.Tags)
}

// SetRows replaces card and tag text from rows
func (s *State) SetRows(rows []mapper.Row) {
	s.Content, s.Tags = mapper.Split(rows)
}

// RecordImage remembers that media name was added to field on line
// (0-based)
func (s *State) RecordImage(field string, line int, name string) {
	if s.FieldImages == nil {
		s.FieldImages = map[string][]string{}
	}
	images := s.FieldImages[field]
	for len(images) <= line {
		images = append(images, "")
	}
	images[line] = name
	s.FieldImages[field] = images
}

// Store reads and writes the session file
type Store struct {
	path string
	log  *zap.Logger
}

// NewStore creates a store for the session file at path
func NewStore(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, log: log.Named("session")}
}

// Path returns the session file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the session. A missing file yields the default state.
func (s *Store) Load() (*State, error) {
	return load(s.path)
}

func load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	st := Default()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", path, err)
	}
	if st.FieldMappings == nil {
		st.FieldMappings = mapper.FieldMapping{}
	}
	if st.FieldImages == nil {
		st.FieldImages = map[string][]string{}
	}
	return st, nil
}

// Save writes the session. The previous file is kept as <path>.bak on a
// best-effort basis.
func (s *Store) Save(st *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := cp.Copy(s.path, s.path+".bak"); err != nil {
			s.log.Warn("Failed to back up session", zap.Error(err))
		}
	}

	return write(s.path, st)
}

func write(path string, st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *Store) preShowPath() string {
	return filepath.Join(filepath.Dir(s.path), PreShowFile)
}

// SavePreShow snapshots the state before it is replaced by a deck's notes
func (s *Store) SavePreShow(st *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	return write(s.preShowPath(), st)
}

// RestorePreShow reads the snapshot taken by SavePreShow. ok is false when
// there is none.
func (s *Store) RestorePreShow() (st *State, ok bool, err error) {
	if _, err := os.Stat(s.preShowPath()); errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	st, err = load(s.preShowPath())
	if err != nil {
		return nil, false, err
	}
	return st, true, nil
}
