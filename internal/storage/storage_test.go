package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"testing"
	"time"
)

// createTestStorage creates a Storage instance with a temporary data directory.
func createTestStorage(t *testing.T, opts ...Option) *Storage {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "app-data"), opts...)
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	store.SetNowFunc(func() time.Time {
		return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	})
	return store
}

// createTestCycle creates a cycle under a fresh parent and returns its meta.
func createTestCycle(t *testing.T, store *Storage, name string) CycleMeta {
	t.Helper()
	idx, err := store.CreateCycle(name, t.TempDir())
	if err != nil {
		t.Fatalf("CreateCycle(%q) error = %v", name, err)
	}
	return idx.Cycles[len(idx.Cycles)-1]
}

// writeCycleFile writes raw content to folder/cycle_data.json.
func writeCycleFile(t *testing.T, folder, content string) {
	t.Helper()
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(folder, CycleFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// jsonEqual compares two JSON documents semantically.
func jsonEqual(t *testing.T, a, b []byte) bool {
	t.Helper()
	var va, vb any
	if err := json.Unmarshal(a, &va); err != nil {
		t.Fatalf("invalid JSON %q: %v", a, err)
	}
	if err := json.Unmarshal(b, &vb); err != nil {
		t.Fatalf("invalid JSON %q: %v", b, err)
	}
	return reflect.DeepEqual(va, vb)
}

func recordsEqual(t *testing.T, got, want Records) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len(records) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !jsonEqual(t, got[i], want[i]) {
			t.Errorf("records[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

// =============================================================================
// Index Tests
// =============================================================================

func TestLoadIndex_Missing(t *testing.T) {
	store := createTestStorage(t)

	idx, err := store.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if len(idx.Cycles) != 0 {
		t.Errorf("len(cycles) = %d, want 0", len(idx.Cycles))
	}
	if idx.SelectedCycleID != nil {
		t.Errorf("selectedCycleId = %q, want nil", *idx.SelectedCycleID)
	}
	if _, err := os.Stat(store.IndexPath()); !os.IsNotExist(err) {
		t.Error("LoadIndex() should not create index.json")
	}
}

func TestLoadIndex_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{cycles: oops"},
		{"empty", "   "},
		{"null", "null"},
		{"array", "[]"},
		{"wrong type", `{"cycles": "q1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := createTestStorage(t)
			if err := os.WriteFile(store.IndexPath(), []byte(tt.content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			_, err := store.LoadIndex()
			if !errors.Is(err, ErrParse) {
				t.Errorf("LoadIndex() error = %v, want ErrParse", err)
			}
		})
	}
}

func TestLoadIndex_NormalizesFolderPaths(t *testing.T) {
	store := createTestStorage(t)
	content := `{
  "cycles": [
    {"id": "cycle_a", "name": "A", "createdAt": "1", "folderPath": "\\\\?\\C:\\plans\\A"},
    {"id": "cycle_b", "name": "B", "createdAt": "2", "folderPath": "\\\\?\\UNC\\nas\\plans\\B"}
  ],
  "selectedCycleId": "cycle_b"
}`
	if err := os.WriteFile(store.IndexPath(), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	idx, err := store.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if got := idx.Cycles[0].FolderPath; got != `C:\plans\A` {
		t.Errorf("cycles[0].folderPath = %q, want %q", got, `C:\plans\A`)
	}
	if got := idx.Cycles[1].FolderPath; got != `\\nas\plans\B` {
		t.Errorf("cycles[1].folderPath = %q, want %q", got, `\\nas\plans\B`)
	}
	if idx.Selected() != "cycle_b" {
		t.Errorf("selected = %q, want cycle_b", idx.Selected())
	}
}

func TestLoadIndex_DropsDanglingSelection(t *testing.T) {
	store := createTestStorage(t)
	content := `{"cycles": [{"id": "cycle_a", "name": "A", "createdAt": "1", "folderPath": "/tmp/a"}], "selectedCycleId": "cycle_gone"}`
	if err := os.WriteFile(store.IndexPath(), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	idx, err := store.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if idx.SelectedCycleID != nil {
		t.Errorf("selectedCycleId = %q, want nil", *idx.SelectedCycleID)
	}
}

func TestSelectCycle(t *testing.T) {
	store := createTestStorage(t)
	first := createTestCycle(t, store, "First")
	second := createTestCycle(t, store, "Second")

	idx, err := store.SelectCycle(second.ID)
	if err != nil {
		t.Fatalf("SelectCycle() error = %v", err)
	}
	if idx.Selected() != second.ID {
		t.Errorf("selected = %q, want %q", idx.Selected(), second.ID)
	}

	loaded, err := store.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if loaded.Selected() != second.ID {
		t.Errorf("persisted selected = %q, want %q", loaded.Selected(), second.ID)
	}
	if loaded.Cycles[0].ID != first.ID || loaded.Cycles[1].ID != second.ID {
		t.Error("SelectCycle() reordered cycles")
	}
}

func TestSelectCycle_NotFound(t *testing.T) {
	store := createTestStorage(t)
	createTestCycle(t, store, "Only")

	before, err := os.ReadFile(store.IndexPath())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	_, err = store.SelectCycle("cycle_missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("SelectCycle() error = %v, want ErrNotFound", err)
	}

	after, err := os.ReadFile(store.IndexPath())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("SelectCycle() with unknown id modified index.json")
	}
}

// =============================================================================
// Create Tests
// =============================================================================

func TestCreateCycle(t *testing.T) {
	store := createTestStorage(t)
	parent := t.TempDir()

	idx, err := store.CreateCycle("Q1 Plan", parent)
	if err != nil {
		t.Fatalf("CreateCycle() error = %v", err)
	}
	if len(idx.Cycles) != 1 {
		t.Fatalf("len(cycles) = %d, want 1", len(idx.Cycles))
	}

	meta := idx.Cycles[0]
	if meta.ID == "" {
		t.Error("meta.ID is empty")
	}
	if meta.Name != "Q1 Plan" {
		t.Errorf("meta.Name = %q, want %q", meta.Name, "Q1 Plan")
	}
	if meta.CreatedAt != "2024-03-01T09:30:00Z" {
		t.Errorf("meta.CreatedAt = %q, want 2024-03-01T09:30:00Z", meta.CreatedAt)
	}
	if idx.Selected() != meta.ID {
		t.Errorf("selected = %q, want first cycle %q", idx.Selected(), meta.ID)
	}

	info, err := os.Stat(meta.FolderPath)
	if err != nil || !info.IsDir() {
		t.Fatalf("cycle folder %q not created: %v", meta.FolderPath, err)
	}

	data, err := store.LoadCycleData(meta.ID)
	if err != nil {
		t.Fatalf("LoadCycleData() error = %v", err)
	}
	if data.ID != meta.ID || data.Name != meta.Name || data.CreatedAt != meta.CreatedAt {
		t.Errorf("cycle data identity = %+v, want %+v", data, meta)
	}
	if len(data.Goals) != 0 || len(data.Works) != 0 || len(data.Tasks) != 0 {
		t.Errorf("new cycle has content: %+v", data)
	}
}

func TestCreateCycle_SelectionKeptWhenAlreadySet(t *testing.T) {
	store := createTestStorage(t)
	first := createTestCycle(t, store, "First")

	idx, err := store.CreateCycle("Second", t.TempDir())
	if err != nil {
		t.Fatalf("CreateCycle() error = %v", err)
	}
	if idx.Selected() != first.ID {
		t.Errorf("selected = %q, want %q", idx.Selected(), first.ID)
	}
	if len(idx.Cycles) != 2 || idx.Cycles[1].Name != "Second" {
		t.Errorf("cycles = %+v, want Second appended", idx.Cycles)
	}
}

func TestCreateCycle_UniqueIDs(t *testing.T) {
	store := createTestStorage(t)
	parent := t.TempDir()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		idx, err := store.CreateCycle(fmt.Sprintf("Cycle %d", i), parent)
		if err != nil {
			t.Fatalf("CreateCycle() error = %v", err)
		}
		id := idx.Cycles[len(idx.Cycles)-1].ID
		if seen[id] {
			t.Fatalf("duplicate cycle id %q", id)
		}
		seen[id] = true
	}
}

func TestCreateCycle_RegeneratesCollidingID(t *testing.T) {
	ids := []string{"cycle_000000aaaaaa", "cycle_000000aaaaaa", "cycle_000000bbbbbb"}
	next := 0
	store := createTestStorage(t, WithIDGenerator(func() string {
		id := ids[next]
		next++
		return id
	}))

	createTestCycle(t, store, "One")
	second := createTestCycle(t, store, "Two")
	if second.ID != "cycle_000000bbbbbb" {
		t.Errorf("second id = %q, want cycle_000000bbbbbb", second.ID)
	}
}

func TestCreateCycle_FolderName(t *testing.T) {
	store := createTestStorage(t, WithIDGenerator(func() string {
		return "cycle_0123456789abcdef"
	}))
	parent := t.TempDir()

	idx, err := store.CreateCycle("My Plan!! 2024", parent)
	if err != nil {
		t.Fatalf("CreateCycle() error = %v", err)
	}

	got := filepath.Base(idx.Cycles[0].FolderPath)
	if got != "My_Plan___2024_abcdef" {
		t.Errorf("folder name = %q, want %q", got, "My_Plan___2024_abcdef")
	}
}

func TestCreateCycle_InvalidParent(t *testing.T) {
	store := createTestStorage(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name   string
		parent string
	}{
		{"empty", ""},
		{"missing", filepath.Join(dir, "missing")},
		{"file", file},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateCycle("Plan", tt.parent)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("CreateCycle() error = %v, want ErrInvalidInput", err)
			}
		})
	}

	if _, err := os.Stat(store.IndexPath()); !os.IsNotExist(err) {
		t.Error("failed CreateCycle() wrote index.json")
	}
}

// =============================================================================
// Import Tests
// =============================================================================

func TestImportCycle_MissingFile(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.ImportCycle(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ImportCycle() error = %v, want ErrNotFound", err)
	}
}

func TestImportCycle_Malformed(t *testing.T) {
	store := createTestStorage(t)
	folder := t.TempDir()
	writeCycleFile(t, folder, `{"id": "cycle_x", "goals": {}}`)

	_, err := store.ImportCycle(folder)
	if !errors.Is(err, ErrParse) {
		t.Errorf("ImportCycle() error = %v, want ErrParse", err)
	}
}

func TestImportCycle_Backfill(t *testing.T) {
	store := createTestStorage(t)
	folder := t.TempDir()
	writeCycleFile(t, folder, `{"goals": [{"title": "Ship"}], "works": [], "tasks": []}`)

	idx, err := store.ImportCycle(folder)
	if err != nil {
		t.Fatalf("ImportCycle() error = %v", err)
	}
	if len(idx.Cycles) != 1 {
		t.Fatalf("len(cycles) = %d, want 1", len(idx.Cycles))
	}

	meta := idx.Cycles[0]
	if !regexp.MustCompile(`^cycle_[0-9a-f]{32}$`).MatchString(meta.ID) {
		t.Errorf("generated id = %q, want cycle_<hex>", meta.ID)
	}
	if meta.Name != "Imported Cycle" {
		t.Errorf("name = %q, want %q", meta.Name, "Imported Cycle")
	}
	if meta.CreatedAt != "2024-03-01T09:30:00Z" {
		t.Errorf("createdAt = %q, want clock time", meta.CreatedAt)
	}
	if idx.Selected() != meta.ID {
		t.Errorf("selected = %q, want %q", idx.Selected(), meta.ID)
	}

	// Backfilled identity is persisted in the content file.
	var onDisk CycleData
	raw, err := os.ReadFile(filepath.Join(folder, CycleFileName))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if onDisk.ID != meta.ID || onDisk.Name != meta.Name || onDisk.CreatedAt != meta.CreatedAt {
		t.Errorf("content file identity = %+v, want %+v", onDisk, meta)
	}
	recordsEqual(t, onDisk.Goals, NewRecords(`{"title":"Ship"}`))
}

func TestImportCycle_BackfillUsesIDGenerator(t *testing.T) {
	ids := []string{"cycle_000000aaaaaa", "cycle_000000aaaaaa", "cycle_000000cccccc"}
	next := 0
	store := createTestStorage(t, WithIDGenerator(func() string {
		id := ids[next]
		next++
		return id
	}))
	createTestCycle(t, store, "Existing")

	folder := t.TempDir()
	writeCycleFile(t, folder, `{"goals": [], "works": [], "tasks": []}`)

	idx, err := store.ImportCycle(folder)
	if err != nil {
		t.Fatalf("ImportCycle() error = %v", err)
	}
	if got := idx.Selected(); got != "cycle_000000cccccc" {
		t.Errorf("imported id = %q, want cycle_000000cccccc", got)
	}
	if len(idx.Cycles) != 2 {
		t.Errorf("len(cycles) = %d, want 2", len(idx.Cycles))
	}
}

func TestImportCycle_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	other := createTestCycle(t, store, "Other")
	folder := t.TempDir()
	writeCycleFile(t, folder, `{"id": "cycle_shared", "name": "Shared", "createdAt": "2023-01-01T00:00:00Z", "goals": [], "works": [], "tasks": []}`)

	if _, err := store.ImportCycle(folder); err != nil {
		t.Fatalf("first ImportCycle() error = %v", err)
	}

	// Rename the cycle externally and import again.
	writeCycleFile(t, folder, `{"id": "cycle_shared", "name": "Shared v2", "createdAt": "2023-01-01T00:00:00Z", "goals": [], "works": [], "tasks": []}`)
	idx, err := store.ImportCycle(folder)
	if err != nil {
		t.Fatalf("second ImportCycle() error = %v", err)
	}

	if len(idx.Cycles) != 2 {
		t.Fatalf("len(cycles) = %d, want 2", len(idx.Cycles))
	}
	if idx.Cycles[0].ID != other.ID {
		t.Errorf("cycles[0] = %q, want %q (order preserved)", idx.Cycles[0].ID, other.ID)
	}
	if idx.Cycles[1].Name != "Shared v2" {
		t.Errorf("cycles[1].Name = %q, want %q", idx.Cycles[1].Name, "Shared v2")
	}
	if idx.Selected() != "cycle_shared" {
		t.Errorf("selected = %q, want cycle_shared", idx.Selected())
	}
}

func TestImportCycle_MovedFolderUpdatesPath(t *testing.T) {
	store := createTestStorage(t)
	meta := createTestCycle(t, store, "Movable")

	moved := filepath.Join(t.TempDir(), "moved")
	if err := os.Rename(meta.FolderPath, moved); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	idx, err := store.ImportCycle(moved)
	if err != nil {
		t.Fatalf("ImportCycle() error = %v", err)
	}
	if len(idx.Cycles) != 1 {
		t.Fatalf("len(cycles) = %d, want 1", len(idx.Cycles))
	}
	if filepath.Base(idx.Cycles[0].FolderPath) != "moved" {
		t.Errorf("folderPath = %q, want .../moved", idx.Cycles[0].FolderPath)
	}
}

// =============================================================================
// Cycle Data Tests
// =============================================================================

func TestSaveCycleData_RoundTrip(t *testing.T) {
	store := createTestStorage(t)
	meta := createTestCycle(t, store, "Round Trip")

	in := CycleData{
		ID:        "cycle_spoofed",
		Name:      "Spoofed",
		CreatedAt: "2020-05-05T00:00:00Z",
		Goals:     NewRecords(`{"id":"goal_1","title":"Launch","cycleId":"x"}`, `{"id":"goal_2"}`),
		Works:     NewRecords(`{"id":"work_1","status":"IN_PROGRESS","body":"línea\nnext"}`),
		Tasks:     NewRecords(`{"id":"task_1","done":true}`, `null`, `42`, `"free text"`),
	}
	if err := store.SaveCycleData(meta.ID, in); err != nil {
		t.Fatalf("SaveCycleData() error = %v", err)
	}

	out, err := store.LoadCycleData(meta.ID)
	if err != nil {
		t.Fatalf("LoadCycleData() error = %v", err)
	}
	if out.ID != meta.ID {
		t.Errorf("id = %q, want index id %q", out.ID, meta.ID)
	}
	if out.Name != meta.Name {
		t.Errorf("name = %q, want index name %q", out.Name, meta.Name)
	}
	if out.CreatedAt != in.CreatedAt {
		t.Errorf("createdAt = %q, want %q", out.CreatedAt, in.CreatedAt)
	}
	recordsEqual(t, out.Goals, in.Goals)
	recordsEqual(t, out.Works, in.Works)
	recordsEqual(t, out.Tasks, in.Tasks)
}

func TestSaveCycleData_RecordBytes(t *testing.T) {
	store := createTestStorage(t)
	meta := createTestCycle(t, store, "Bytes")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"nested", `{"a":1,"b":[1,2]}`, `{"a":1,"b":[1,2]}`},
		{"html and unicode", `{"note":"<b>a & b</b>","t":"계획"}`, `{"note":"<b>a & b</b>","t":"계획"}`},
		{"key order", `{"z":1,"a":2}`, `{"z":1,"a":2}`},
		{"spaced", "{ \"a\" : [ 1, 2 ] }", `{"a":[1,2]}`},
		{"scalar", `42`, `42`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.SaveCycleData(meta.ID, CycleData{Goals: NewRecords(tt.in)}); err != nil {
				t.Fatalf("SaveCycleData() error = %v", err)
			}
			first, err := store.LoadCycleData(meta.ID)
			if err != nil {
				t.Fatalf("LoadCycleData() error = %v", err)
			}
			if len(first.Goals) != 1 || string(first.Goals[0]) != tt.want {
				t.Fatalf("loaded goals = %q, want [%s]", first.Goals, tt.want)
			}

			// A loaded record saves back to the same bytes.
			if err := store.SaveCycleData(meta.ID, *first); err != nil {
				t.Fatalf("SaveCycleData() again error = %v", err)
			}
			second, err := store.LoadCycleData(meta.ID)
			if err != nil {
				t.Fatalf("LoadCycleData() again error = %v", err)
			}
			if !bytes.Equal(second.Goals[0], first.Goals[0]) {
				t.Errorf("second round trip = %s, want %s", second.Goals[0], first.Goals[0])
			}
		})
	}
}

func TestDecodeCycleData(t *testing.T) {
	data, err := DecodeCycleData([]byte(`{"name":"X","goals":[ {"a": 1} ]}`))
	if err != nil {
		t.Fatalf("DecodeCycleData() error = %v", err)
	}
	if data.Name != "X" || data.Works == nil || data.Tasks == nil {
		t.Errorf("decoded = %+v, want name X and empty lists", data)
	}
	if len(data.Goals) != 1 || string(data.Goals[0]) != `{"a":1}` {
		t.Errorf("goals = %q, want [{\"a\":1}]", data.Goals)
	}

	for _, in := range []string{"", "null", "[]", "42", `"s"`, "{", `{"goals":{}}`} {
		if _, err := DecodeCycleData([]byte(in)); !errors.Is(err, ErrParse) {
			t.Errorf("DecodeCycleData(%q) error = %v, want ErrParse", in, err)
		}
	}
}

func TestSaveCycleData_DefaultsCreatedAt(t *testing.T) {
	store := createTestStorage(t)
	meta := createTestCycle(t, store, "Defaults")

	if err := store.SaveCycleData(meta.ID, CycleData{}); err != nil {
		t.Fatalf("SaveCycleData() error = %v", err)
	}

	out, err := store.LoadCycleData(meta.ID)
	if err != nil {
		t.Fatalf("LoadCycleData() error = %v", err)
	}
	if out.CreatedAt != meta.CreatedAt {
		t.Errorf("createdAt = %q, want %q", out.CreatedAt, meta.CreatedAt)
	}
	if out.Goals == nil || out.Works == nil || out.Tasks == nil {
		t.Error("nil record lists should load as empty lists")
	}

	raw, _ := os.ReadFile(filepath.Join(meta.FolderPath, CycleFileName))
	if bytes.Contains(raw, []byte("null")) {
		t.Errorf("content file should not contain null lists:\n%s", raw)
	}
}

func TestSaveCycleData_RecreatesFolder(t *testing.T) {
	store := createTestStorage(t)
	meta := createTestCycle(t, store, "Vanishing")
	if err := os.RemoveAll(meta.FolderPath); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}

	if err := store.SaveCycleData(meta.ID, CycleData{Tasks: NewRecords(`{"id":"t"}`)}); err != nil {
		t.Fatalf("SaveCycleData() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(meta.FolderPath, CycleFileName)); err != nil {
		t.Errorf("content file not recreated: %v", err)
	}
}

func TestSaveCycleData_InvalidRecord(t *testing.T) {
	store := createTestStorage(t)
	meta := createTestCycle(t, store, "Invalid")

	err := store.SaveCycleData(meta.ID, CycleData{Goals: NewRecords(`{not json`)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SaveCycleData() error = %v, want ErrInvalidInput", err)
	}
}

func TestCycleData_UnknownID(t *testing.T) {
	store := createTestStorage(t)

	if _, err := store.LoadCycleData("cycle_nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadCycleData() error = %v, want ErrNotFound", err)
	}
	if err := store.SaveCycleData("cycle_nope", CycleData{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveCycleData() error = %v, want ErrNotFound", err)
	}
}

func TestLoadCycleData_SelfHealsMissingFile(t *testing.T) {
	store := createTestStorage(t)
	meta := createTestCycle(t, store, "Heal")
	path := filepath.Join(meta.FolderPath, CycleFileName)
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	data, err := store.LoadCycleData(meta.ID)
	if err != nil {
		t.Fatalf("LoadCycleData() error = %v", err)
	}
	if data.ID != meta.ID || len(data.Goals) != 0 {
		t.Errorf("synthesized data = %+v", data)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("content file not rewritten: %v", err)
	}
}

func TestLoadCycleData_BackfillsIdentity(t *testing.T) {
	store := createTestStorage(t)
	meta := createTestCycle(t, store, "Backfill")
	writeCycleFile(t, meta.FolderPath, `{"id": "", "goals": [{"a": 1}]}`)

	data, err := store.LoadCycleData(meta.ID)
	if err != nil {
		t.Fatalf("LoadCycleData() error = %v", err)
	}
	if data.ID != meta.ID || data.Name != meta.Name || data.CreatedAt != meta.CreatedAt {
		t.Errorf("identity = %+v, want %+v", data, meta)
	}
	if data.Works == nil || data.Tasks == nil {
		t.Error("missing lists should load as empty")
	}
	recordsEqual(t, data.Goals, NewRecords(`{"a":1}`))
}

func TestLoadCycleData_Malformed(t *testing.T) {
	store := createTestStorage(t)
	meta := createTestCycle(t, store, "Broken")
	writeCycleFile(t, meta.FolderPath, `{"goals": [`)

	_, err := store.LoadCycleData(meta.ID)
	if !errors.Is(err, ErrParse) {
		t.Errorf("LoadCycleData() error = %v, want ErrParse", err)
	}
}

func TestSelectedCycle(t *testing.T) {
	store := createTestStorage(t)

	if _, err := store.SelectedCycle(); !errors.Is(err, ErrNotFound) {
		t.Errorf("SelectedCycle() error = %v, want ErrNotFound", err)
	}

	meta := createTestCycle(t, store, "Current")
	got, err := store.SelectedCycle()
	if err != nil {
		t.Fatalf("SelectedCycle() error = %v", err)
	}
	if got.ID != meta.ID {
		t.Errorf("SelectedCycle() = %q, want %q", got.ID, meta.ID)
	}
}

// =============================================================================
// Hooks and Backups
// =============================================================================

func TestOnSave(t *testing.T) {
	store := createTestStorage(t)
	var events []SaveEvent
	store.SetOnSave(func(ev SaveEvent) { events = append(events, ev) })

	meta := createTestCycle(t, store, "Hooked")
	if err := store.SaveCycleData(meta.ID, CycleData{}); err != nil {
		t.Fatalf("SaveCycleData() error = %v", err)
	}

	want := []struct{ file, op string }{
		{CycleFileName, "create"},
		{IndexFileName, "create"},
		{CycleFileName, "save"},
	}
	if len(events) != len(want) {
		t.Fatalf("len(events) = %d, want %d: %+v", len(events), len(want), events)
	}
	for i, w := range want {
		if events[i].File != w.file || events[i].Operation != w.op || events[i].CycleID != meta.ID {
			t.Errorf("events[%d] = %+v, want file=%s op=%s", i, events[i], w.file, w.op)
		}
	}
}

func TestBackups(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		store := createTestStorage(t)
		createTestCycle(t, store, "One")
		createTestCycle(t, store, "Two")
		if _, err := os.Stat(store.IndexPath() + ".bak"); err != nil {
			t.Errorf("index.json.bak missing: %v", err)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		store := createTestStorage(t, WithBackups(false))
		createTestCycle(t, store, "One")
		createTestCycle(t, store, "Two")
		if _, err := os.Stat(store.IndexPath() + ".bak"); !os.IsNotExist(err) {
			t.Errorf("index.json.bak should not exist, stat err = %v", err)
		}
	})
}
