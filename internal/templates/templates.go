// Package templates is the file-backed template store: a YAML document
// listing event templates, owned by the caller and handed to the core
// components as a plain slice. It replaces any notion of ambient shared
// state; loading twice yields two independent copies.
package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	appLog "calmaker/internal/log"
	"calmaker/internal/model"
)

// File is the on-disk document shape.
type File struct {
	Events []model.EventTemplate `yaml:"events"`
}

// Load reads a template file, normalizes each entry and returns the
// templates ordered by creation time. A missing file is an error: unlike
// configuration there is no sensible default template set.
func Load(path string) ([]model.EventTemplate, error) {
	if path == "" {
		return nil, errors.New("templates path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("templates: parse %s: %w", path, err)
	}

	for i := range f.Events {
		Normalize(&f.Events[i])
	}

	// Persistence ordering only; expansion and encoding are order-agnostic.
	sort.SliceStable(f.Events, func(i, j int) bool {
		return f.Events[i].CreatedAt < f.Events[j].CreatedAt
	})

	appLog.Info("templates loaded", "path", path, "count", len(f.Events))
	return f.Events, nil
}

// Normalize fills the defaults a hand-edited file may omit: a generated ID,
// an upper-cased frequency and NONE for a missing one. Timezones are left
// alone; see ApplyTimezone.
func Normalize(t *model.EventTemplate) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Recurrence.Freq = model.Frequency(strings.ToUpper(string(t.Recurrence.Freq)))
	if t.Recurrence.Freq == "" {
		t.Recurrence.Freq = model.FreqNone
	}
}

// ApplyTimezone sets tz on every template that carries no zone of its own.
func ApplyTimezone(events []model.EventTemplate, tz string) {
	if tz == "" {
		return
	}
	for i := range events {
		if events[i].Timezone == "" {
			events[i].Timezone = tz
		}
	}
}

// Save writes the templates atomically (temp file + rename) with 0600
// permissions, creating the parent directory when needed.
func Save(path string, events []model.EventTemplate) error {
	if path == "" {
		return errors.New("templates path is empty")
	}

	data, err := yaml.Marshal(File{Events: events})
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calmaker-templates-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
