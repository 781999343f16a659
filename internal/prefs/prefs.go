// Package prefs persists small client-side preferences (currently the theme)
// in a YAML state file.
package prefs

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/server-sentinel/sentinel/internal/errors"
)

// Prefs is the on-disk state.
type Prefs struct {
	Theme string `yaml:"theme,omitempty"`
}

// Store reads and writes Prefs at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the saved preferences. A missing file is not an error.
func (s *Store) Load() (Prefs, error) {
	var p Prefs
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't read preferences from "+s.path,
			"Check file permissions, or delete the file to reset preferences")
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Prefs{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Preferences file is not valid YAML: "+s.path,
			"Delete the file to reset preferences")
	}
	return p, nil
}

// Save writes p, creating the parent directory if needed. The write goes to
// a temp file first and is renamed into place.
func (s *Store) Save(p Prefs) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't encode preferences", "")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create "+dir,
			"Check directory permissions, or set ui.state_file")
	}

	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write preferences to "+dir,
			"Check directory permissions, or set ui.state_file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't write preferences", "")
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't write preferences", "")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't save preferences to "+s.path, "")
	}
	return nil
}

// SaveTheme updates only the theme.
func (s *Store) SaveTheme(theme string) error {
	p, err := s.Load()
	if err != nil {
		p = Prefs{}
	}
	p.Theme = theme
	return s.Save(p)
}
