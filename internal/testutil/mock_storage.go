// mock_storage.go - Mock snapshot store for testing
package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/hmi-editor/backend/internal/models"
	"github.com/hmi-editor/backend/internal/storage"
)

// MockStorage implements storage.Store in memory for testing
type MockStorage struct {
	snapshots map[string]*models.SnapshotInfo
	data      map[string][]byte
	mu        sync.RWMutex

	// SaveErr, when set, is returned by Save and Import
	SaveErr error
}

// NewMockStorage creates a new empty mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		snapshots: make(map[string]*models.SnapshotInfo),
		data:      make(map[string][]byte),
	}
}

func (m *MockStorage) Save(name string, project *models.ProjectData) (*models.SnapshotInfo, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	if project == nil {
		return nil, errors.New("nil project")
	}
	data, err := json.Marshal(project)
	if err != nil {
		return nil, err
	}
	return m.AddSnapshot(generateTestID(), name, data, project.Version), nil
}

func (m *MockStorage) Import(name string, r io.Reader) (*models.SnapshotInfo, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	project, err := storage.DecodeProject(name, r)
	if err != nil {
		return nil, err
	}
	return m.Save(name, project)
}

func (m *MockStorage) Get(id string) (*models.SnapshotInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	c := *info
	return &c, nil
}

func (m *MockStorage) Load(id string) (*models.ProjectData, error) {
	m.mu.RLock()
	data, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return storage.DecodeProject(id+".json", bytes.NewReader(data))
}

func (m *MockStorage) List(limit int) ([]*models.SnapshotInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []*models.SnapshotInfo
	for _, info := range m.snapshots {
		c := *info
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].SavedAt.After(list[j].SavedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.snapshots[id]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	delete(m.snapshots, id)
	delete(m.data, id)
	return nil
}

func (m *MockStorage) Rename(id string, newName string) (*models.SnapshotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	info.Name = newName
	c := *info
	return &c, nil
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// Test Helper Methods

// AddSnapshot adds raw project JSON directly to the mock
func (m *MockStorage) AddSnapshot(id, name string, data []byte, version string) *models.SnapshotInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := &models.SnapshotInfo{
		ID:      id,
		Name:    name,
		Size:    int64(len(data)),
		SavedAt: time.Now(),
		Version: version,
	}
	m.snapshots[id] = info
	m.data[id] = data
	return info
}

// SnapshotCount returns the number of stored snapshots
func (m *MockStorage) SnapshotCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

// generateTestID generates a simple test ID
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}
