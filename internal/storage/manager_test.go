// manager_test.go - Tests for snapshot storage
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hmi-editor/backend/internal/models"
)

func createTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func sampleProject() *models.ProjectData {
	p := models.NewProjectData()
	p.Devices["plc1"] = &models.Device{
		ID:   "plc1",
		Name: "PLC 1",
		Type: models.DeviceTypeS7,
		Tags: map[string]*models.Tag{
			"t1": {ID: "t1", Name: "Temperature", Daq: &models.TagDaq{Enabled: true, Interval: 60}},
		},
	}
	return p
}

func TestNewLocalStore(t *testing.T) {
	t.Run("creates snapshot directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "snapshots")

		store, err := NewLocalStore(dir)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Error("Expected snapshot directory to be created")
		}
		if store.dir != dir {
			t.Errorf("Expected dir %s, got %s", dir, store.dir)
		}
	})

	t.Run("reloads existing index", func(t *testing.T) {
		dir := t.TempDir()
		first, err := NewLocalStore(dir)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}
		info, err := first.Save("plant", sampleProject())
		if err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		second, err := NewLocalStore(dir)
		if err != nil {
			t.Fatalf("Failed to reopen store: %v", err)
		}
		got, err := second.Get(info.ID)
		if err != nil {
			t.Fatalf("Expected snapshot after reopen: %v", err)
		}
		if got.Name != "plant" {
			t.Errorf("Expected name 'plant', got %s", got.Name)
		}
	})

	t.Run("rejects corrupt index", func(t *testing.T) {
		dir := t.TempDir()
		os.WriteFile(filepath.Join(dir, indexFile), []byte("{not json"), 0644)

		if _, err := NewLocalStore(dir); err == nil {
			t.Error("Expected error for corrupt index")
		}
	})
}

func TestLocalStore_SaveAndLoad(t *testing.T) {
	store := createTestStore(t)

	info, err := store.Save("plant.json", sampleProject())
	if err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if info.ID == "" {
		t.Error("Expected ID to be set")
	}
	if info.Size == 0 {
		t.Error("Expected non-zero size")
	}
	if info.Version != models.ProjectVersion {
		t.Errorf("Expected version %s, got %s", models.ProjectVersion, info.Version)
	}

	loaded, err := store.Load(info.ID)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	dev, ok := loaded.Devices["plc1"]
	if !ok {
		t.Fatal("Expected device plc1 in loaded project")
	}
	if dev.Tags["t1"].Daq.Interval != 60 {
		t.Errorf("Expected interval 60, got %d", dev.Tags["t1"].Daq.Interval)
	}

	if _, err := store.Save("nil", nil); err == nil {
		t.Error("Expected error saving nil project")
	}
}

func TestLocalStore_Import(t *testing.T) {
	t.Run("imports yaml", func(t *testing.T) {
		store := createTestStore(t)
		src := `
version: "1.00"
devices:
  plc1:
    id: plc1
    name: Line PLC
    tags:
      t1:
        id: t1
        name: Speed
        scaleReadFunction: s1
        scaleReadParams: '[{"name":"gain","type":"value","value":2}]'
scripts:
  - id: s1
    name: gain
    mode: SERVER
    parameters:
      - {name: value, type: value}
      - {name: gain, type: value}
`
		info, err := store.Import("plant.yaml", strings.NewReader(src))
		if err != nil {
			t.Fatalf("Failed to import: %v", err)
		}
		p, err := store.Load(info.ID)
		if err != nil {
			t.Fatalf("Failed to load: %v", err)
		}
		if p.Devices["plc1"].Tags["t1"].ScaleReadFunction != "s1" {
			t.Error("Expected scale read function to survive import")
		}
		if len(p.Scripts) != 1 || len(p.Scripts[0].Parameters) != 2 {
			t.Errorf("Expected one script with two parameters, got %+v", p.Scripts)
		}
		if p.Charts == nil || p.Server.ID != models.ServerDeviceID {
			t.Error("Expected missing sections to be normalized")
		}
	})

	t.Run("imports json", func(t *testing.T) {
		store := createTestStore(t)
		info, err := store.Import("plant.json", strings.NewReader(`{"version":"1.00","texts":[{"name":"a","value":"b"}]}`))
		if err != nil {
			t.Fatalf("Failed to import: %v", err)
		}
		p, _ := store.Load(info.ID)
		if len(p.Texts) != 1 {
			t.Errorf("Expected 1 text, got %d", len(p.Texts))
		}
	})

	t.Run("rejects empty and malformed files", func(t *testing.T) {
		store := createTestStore(t)
		if _, err := store.Import("empty.json", strings.NewReader("  ")); err == nil {
			t.Error("Expected error for empty file")
		}
		if _, err := store.Import("bad.json", strings.NewReader("{")); err == nil {
			t.Error("Expected error for malformed json")
		}
		list, _ := store.List(10)
		if len(list) != 0 {
			t.Errorf("Expected no snapshots, got %d", len(list))
		}
	})
}

func TestLocalStore_List(t *testing.T) {
	t.Run("sorts by save time descending and limits", func(t *testing.T) {
		store := createTestStore(t)

		ids := make([]string, 4)
		for i := range ids {
			info, err := store.Save("snap", sampleProject())
			if err != nil {
				t.Fatalf("Failed to save: %v", err)
			}
			ids[i] = info.ID
			time.Sleep(10 * time.Millisecond)
		}

		all, err := store.List(0)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(all) != 4 {
			t.Errorf("Expected 4 snapshots, got %d", len(all))
		}
		if all[0].ID != ids[3] {
			t.Error("Expected most recent snapshot first")
		}

		limited, _ := store.List(2)
		if len(limited) != 2 {
			t.Errorf("Expected 2 snapshots, got %d", len(limited))
		}
	})
}

func TestLocalStore_Delete(t *testing.T) {
	t.Run("deletes existing snapshot", func(t *testing.T) {
		store := createTestStore(t)
		info, _ := store.Save("snap", sampleProject())

		if err := store.Delete(info.ID); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if _, err := store.Get(info.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		if _, err := os.Stat(store.path(info.ID)); !os.IsNotExist(err) {
			t.Error("Snapshot file should be deleted")
		}
	})

	t.Run("returns error for non-existent snapshot", func(t *testing.T) {
		store := createTestStore(t)
		if err := store.Delete("missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestLocalStore_Rename(t *testing.T) {
	store := createTestStore(t)
	info, _ := store.Save("old", sampleProject())

	updated, err := store.Rename(info.ID, "new")
	if err != nil {
		t.Fatalf("Failed to rename: %v", err)
	}
	if updated.Name != "new" {
		t.Errorf("Expected name 'new', got %s", updated.Name)
	}

	if info.Name != "old" {
		t.Errorf("Rename changed a previously returned snapshot: %s", info.Name)
	}
	got, _ := store.Get(info.ID)
	if got.Name != "new" {
		t.Errorf("Expected stored name 'new', got %s", got.Name)
	}
	got.Name = "mutated"
	if again, _ := store.Get(info.ID); again.Name != "new" {
		t.Errorf("Get should return a copy, stored name is now %s", again.Name)
	}

	if _, err := store.Rename("missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
