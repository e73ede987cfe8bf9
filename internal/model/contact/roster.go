package contact

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

var ErrEmptyRoster = errors.New("roster contains no contacts")

type rosterFile struct {
	Contacts []Contact `toml:"contact"`
}

// LoadRoster reads a TOML roster file of the form
//
//	[[contact]]
//	id = "alice"
//	name = "Alice"
//	avatar_color = "#34B7F1"
//
// Identifiers must be unique and non-empty.
func LoadRoster(path string) ([]Contact, error) {
	var file rosterFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decode roster %s: %w", path, err)
	}
	return validateRoster(file.Contacts)
}

func validateRoster(items []Contact) ([]Contact, error) {
	if len(items) == 0 {
		return nil, ErrEmptyRoster
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]Contact, 0, len(items))
	for i, c := range items {
		c.ID = strings.TrimSpace(c.ID)
		c.Name = strings.TrimSpace(c.Name)
		if c.ID == "" {
			return nil, fmt.Errorf("contact #%d: id is required", i+1)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("contact #%d: duplicate id %q", i+1, c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.Name == "" {
			c.Name = c.ID
		}
		c.LastMessage = nil
		out = append(out, c)
	}
	return out, nil
}
