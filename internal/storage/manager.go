package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hmi-editor/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned for an unknown snapshot id.
var ErrNotFound = errors.New("snapshot not found")

const indexFile = "snapshots.json"

// Store defines the interface for project snapshot storage.
type Store interface {
	Save(name string, project *models.ProjectData) (*models.SnapshotInfo, error)
	Import(name string, r io.Reader) (*models.SnapshotInfo, error)
	Get(id string) (*models.SnapshotInfo, error)
	Load(id string) (*models.ProjectData, error)
	List(limit int) ([]*models.SnapshotInfo, error)
	Delete(id string) error
	Rename(id string, newName string) (*models.SnapshotInfo, error)
}

// LocalStore implements Store using the local filesystem. Each snapshot is
// one JSON file named after its id; the metadata lives in an index file
// next to them.
type LocalStore struct {
	mu      sync.RWMutex
	dir     string
	entries map[string]*models.SnapshotInfo
}

// NewLocalStore creates a new LocalStore and reads any existing index.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	s := &LocalStore{
		dir:     dir,
		entries: make(map[string]*models.SnapshotInfo),
	}
	if err := s.readIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) readIndex() error {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading snapshot index: %w", err)
	}
	var list []*models.SnapshotInfo
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parsing snapshot index: %w", err)
	}
	for _, info := range list {
		if _, err := os.Stat(s.path(info.ID)); err != nil {
			continue
		}
		s.entries[info.ID] = info
	}
	return nil
}

// writeIndex persists the metadata. Callers hold the write lock.
func (s *LocalStore) writeIndex() error {
	list := make([]*models.SnapshotInfo, 0, len(s.entries))
	for _, info := range s.entries {
		list = append(list, copyInfo(info))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].SavedAt.Before(list[j].SavedAt)
	})
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, indexFile), data, 0644); err != nil {
		return fmt.Errorf("writing snapshot index: %w", err)
	}
	return nil
}

func (s *LocalStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes a project as a new snapshot.
func (s *LocalStore) Save(name string, project *models.ProjectData) (*models.SnapshotInfo, error) {
	if project == nil {
		return nil, fmt.Errorf("saving snapshot: nil project")
	}
	data, err := json.Marshal(project)
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}

	id := uuid.New().String()
	if err := os.WriteFile(s.path(id), data, 0644); err != nil {
		return nil, fmt.Errorf("writing snapshot: %w", err)
	}

	info := &models.SnapshotInfo{
		ID:      id,
		Name:    name,
		Size:    int64(len(data)),
		SavedAt: time.Now(),
		Version: project.Version,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = info
	if err := s.writeIndex(); err != nil {
		delete(s.entries, id)
		os.Remove(s.path(id))
		return nil, err
	}

	return copyInfo(info), nil
}

// Import decodes a project file and saves it as a snapshot. Files ending
// in .yaml or .yml are read as YAML, anything else as JSON.
func (s *LocalStore) Import(name string, r io.Reader) (*models.SnapshotInfo, error) {
	project, err := DecodeProject(name, r)
	if err != nil {
		return nil, err
	}
	return s.Save(name, project)
}

// DecodeProject reads a project in the format implied by name and fills
// in any missing sections.
func DecodeProject(name string, r io.Reader) (*models.ProjectData, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("decoding project: empty file")
	}

	project := &models.ProjectData{}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, project)
	default:
		err = json.Unmarshal(data, project)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	project.Normalize()
	return project, nil
}

// Get retrieves snapshot metadata by ID.
func (s *LocalStore) Get(id string) (*models.SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return copyInfo(info), nil
}

// Load reads the project stored in a snapshot.
func (s *LocalStore) Load(id string) (*models.ProjectData, error) {
	s.mu.RLock()
	_, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	f, err := os.Open(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	return DecodeProject(id+".json", f)
}

// List returns the most recent snapshots.
func (s *LocalStore) List(limit int) ([]*models.SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.SnapshotInfo
	for _, info := range s.entries {
		list = append(list, copyInfo(info))
	}

	// Sort by SavedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].SavedAt.After(list[j].SavedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete removes a snapshot from storage.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting snapshot: %w", err)
	}

	delete(s.entries, id)
	return s.writeIndex()
}

// Rename updates the display name of a snapshot.
func (s *LocalStore) Rename(id string, newName string) (*models.SnapshotInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	oldName := info.Name
	info.Name = newName
	if err := s.writeIndex(); err != nil {
		info.Name = oldName
		return nil, err
	}
	return copyInfo(info), nil
}

func copyInfo(info *models.SnapshotInfo) *models.SnapshotInfo {
	c := *info
	return &c
}
