// Package seed loads summaries from a YAML (or JSON) file into a memory store
// at start-up. The file holds a list of entries:
//
//	- user_id: u1
//	  type: voice_log
//	  summary:
//	    llm_summary: Deep focus morning, coded for 3 hours
//
// Summary key order is preserved, so projections match what an API caller
// storing the same entries would produce.
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"recall/internal/domain"
)

// ErrInvalidEntry is wrapped by errors describing a malformed entry.
var ErrInvalidEntry = errors.New("invalid seed entry")

// Entry is one summary to store.
type Entry struct {
	UserID  string         `yaml:"user_id"`
	Type    string         `yaml:"type"`
	Summary domain.Mapping `yaml:"summary"`
}

// Sink receives loaded entries in file order.
type Sink interface {
	Store(userID string, summary domain.Mapping, docType string) domain.Document
}

// Parse decodes entries from r.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for i, e := range entries {
		if e.UserID == "" {
			return nil, fmt.Errorf("entry %d: missing user_id: %w", i, ErrInvalidEntry)
		}
	}
	return entries, nil
}

// LoadFile parses path and stores every entry into sink, returning the count.
func LoadFile(path string, sink Sink) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	entries, err := Parse(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	for _, e := range entries {
		sink.Store(e.UserID, e.Summary, e.Type)
	}
	return len(entries), nil
}
