// Package checkpoint persists the intermediate state of a run so a later
// run can resume after the last completed step.
//
// Every save and load is a synchronous whole-file operation. A crash during
// a save can leave a corrupt file; callers should treat any load error as
// a reason to start over
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	manifestFile      = "manifest.json"
	mappingFile       = "peptide_mapping.txt"
	matchesFile       = "matches.txt"
	intersectionsFile = "intersections.snappy"
	mergedSetsFile    = "merged_sets.txt"
	mergedPeptideFile = "merged_peptides.txt"
)

// Step is a stage of a run, in execution order
type Step int

const (
	// None means nothing has completed yet
	None Step = iota

	// Indexed means the peptide index and cluster mapping are built
	Indexed

	// Matched means every read was matched against the index
	Matched

	// Merged means similar clusters were merged into groups
	Merged

	// Grouped means each group's assembly inputs were written
	Grouped
)

var stepNames = []string{"none", "index", "match", "merge", "groups"}

func (s Step) String() string {
	if s < None || int(s) >= len(stepNames) {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

// MarshalText encodes a step by its name
func (s Step) MarshalText() ([]byte, error) {
	if s < None || int(s) >= len(stepNames) {
		return nil, fmt.Errorf("unknown step %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a step from its name
func (s *Step) UnmarshalText(text []byte) error {
	for i, name := range stepNames {
		if name == string(text) {
			*s = Step(i)
			return nil
		}
	}
	return fmt.Errorf("unknown step %q", text)
}

// Manifest describes the run a checkpoint directory belongs to
type Manifest struct {
	// RunID is unique to the run that created the directory
	RunID string `json:"runId"`

	// unix seconds
	Started int64 `json:"started"`
	Updated int64 `json:"updated"`

	// LastStep is the last step that completed
	LastStep Step `json:"lastStep"`

	// Settings the run was started with
	Settings map[string]string `json:"settings,omitempty"`
}

// Store reads and writes the checkpoint files in one directory
type Store struct {
	dir string
}

// New returns a Store writing to dir, creating it if needed
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir is the checkpoint directory
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Begin starts a new run: it writes a manifest with a fresh run id and
// no completed step
func (s *Store) Begin(settings map[string]string) (*Manifest, error) {
	now := time.Now().Unix()
	m := &Manifest{
		RunID:    uuid.NewString(),
		Started:  now,
		Updated:  now,
		LastStep: None,
		Settings: settings,
	}
	return m, s.writeManifest(m)
}

// Manifest loads the manifest. A directory without one returns an error
// matching fs.ErrNotExist
func (s *Store) Manifest() (*Manifest, error) {
	dat, err := os.ReadFile(s.path(manifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint manifest: %w", err)
	}
	m := &Manifest{}
	if err := json.Unmarshal(dat, m); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint manifest %s: %w", s.path(manifestFile), err)
	}
	return m, nil
}

// LastStep is the last completed step, None if no run was started
func (s *Store) LastStep() (Step, error) {
	m, err := s.Manifest()
	if errors.Is(err, fs.ErrNotExist) {
		return None, nil
	}
	if err != nil {
		return None, err
	}
	return m.LastStep, nil
}

// SaveStep records step as the last completed one
func (s *Store) SaveStep(step Step) error {
	m, err := s.Manifest()
	if errors.Is(err, fs.ErrNotExist) {
		if m, err = s.Begin(nil); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	m.LastStep = step
	m.Updated = time.Now().Unix()
	return s.writeManifest(m)
}

// SaveSettings records settings in the manifest, replacing the values
// of the same keys
func (s *Store) SaveSettings(settings map[string]string) error {
	m, err := s.Manifest()
	if err != nil {
		return err
	}
	if m.Settings == nil {
		m.Settings = map[string]string{}
	}
	for key, value := range settings {
		m.Settings[key] = value
	}
	m.Updated = time.Now().Unix()
	return s.writeManifest(m)
}

func (s *Store) writeManifest(m *Manifest) error {
	output, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint manifest: %w", err)
	}
	if err := os.WriteFile(s.path(manifestFile), output, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint manifest: %w", err)
	}
	return nil
}
