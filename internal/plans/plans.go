// Package plans persists rename plans so a preview can be reviewed and
// applied later with `apply --plan`.
package plans

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Nomadcxx/jellyfix/internal/paths"
	"github.com/Nomadcxx/jellyfix/internal/renamer"
	"github.com/Nomadcxx/jellyfix/internal/transfer"
	"github.com/google/uuid"
)

// Latest selects the most recently saved plan in Load
const Latest = "latest"

// ErrNoPlan is returned when no saved plan matches
var ErrNoPlan = errors.New("no saved plan")

// ErrAmbiguousPlan is returned when an id prefix matches more than one plan
var ErrAmbiguousPlan = errors.New("plan id prefix is ambiguous")

// Summary contains summary stats for a saved plan
type Summary struct {
	Renames   int `json:"renames"`
	Moves     int `json:"moves"`
	Deletes   int `json:"deletes"`
	Conflicts int `json:"conflicts"`
}

// SavedPlan is a plan file on disk
type SavedPlan struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Command   string        `json:"command"`
	Summary   Summary       `json:"summary"`
	Plan      *renamer.Plan `json:"plan"`
}

// Store reads and writes plan files in one directory
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultStore returns the store under ~/.config/jellyfix/plans
func DefaultStore() (*Store, error) {
	dir, err := paths.PlansDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get plans directory: %w", err)
	}
	return NewStore(dir), nil
}

// Dir returns the directory holding plan files
func (s *Store) Dir() string {
	return s.dir
}

func summarize(p *renamer.Plan) Summary {
	counts := p.Counts()
	return Summary{
		Renames:   counts[renamer.OpRename],
		Moves:     counts[renamer.OpMove] + counts[renamer.OpMoveRename],
		Deletes:   counts[renamer.OpDelete],
		Conflicts: len(p.Conflicts),
	}
}

// Save writes p under a new id
func (s *Store) Save(p *renamer.Plan, command string) (*SavedPlan, error) {
	saved := &SavedPlan{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Command:   command,
		Summary:   summarize(p),
		Plan:      p,
	}

	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	if err := transfer.WriteFileAtomic(s.path(saved.ID), data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write plan: %w", err)
	}
	return saved, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) read(path string) (*SavedPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var saved SavedPlan
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", filepath.Base(path), err)
	}
	if saved.Plan == nil {
		saved.Plan = &renamer.Plan{}
	}
	return &saved, nil
}

// List returns every saved plan, newest first. Unreadable files are skipped.
func (s *Store) List() ([]*SavedPlan, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plans directory: %w", err)
	}

	var saved []*SavedPlan
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		p, err := s.read(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		saved = append(saved, p)
	}
	sort.Slice(saved, func(i, j int) bool {
		return saved[i].CreatedAt.After(saved[j].CreatedAt)
	})
	return saved, nil
}

// Load returns the plan with the given id, unique id prefix, or Latest
func (s *Store) Load(id string) (*SavedPlan, error) {
	if id == "" || id == Latest {
		all, err := s.List()
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return nil, ErrNoPlan
		}
		return all[0], nil
	}

	if p, err := s.read(s.path(id)); err == nil {
		return p, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var match *SavedPlan
	for _, p := range all {
		if !strings.HasPrefix(p.ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousPlan, id)
		}
		match = p
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPlan, id)
	}
	return match, nil
}

// Delete removes a saved plan
func (s *Store) Delete(id string) error {
	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNoPlan, id)
	}
	return err
}

// Prune removes plans older than maxAge and returns how many were removed
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	all, err := s.List()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, p := range all {
		if p.CreatedAt.Before(cutoff) {
			if err := s.Delete(p.ID); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
