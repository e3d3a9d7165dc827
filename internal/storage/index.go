package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cycleplanner/internal/fsutil"
	"cycleplanner/internal/pathutil"
)

const (
	// IndexFileName is the registry file kept in the application data dir.
	IndexFileName = "index.json"

	importedCycleName = "Imported Cycle"
)

// IndexStore owns index.json: the ordered list of known cycles and the
// selected cycle id. Every mutation rewrites the whole file.
type IndexStore struct {
	path   string
	cycles *CycleStore
	w      *writer
	now    func() time.Time
	newID  func() string
}

// Path returns the location of index.json.
func (s *IndexStore) Path() string {
	return s.path
}

// Load reads the index. A missing file yields an empty index. Folder paths
// are normalized for display and a selected id that names no cycle is
// dropped.
func (s *IndexStore) Load() (*IndexData, error) {
	idx := &IndexData{Cycles: []CycleMeta{}}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return nil, ioError("read index", err)
	}
	if err := decodeObject(raw, idx); err != nil {
		return nil, parseError("parse index", err)
	}
	if idx.Cycles == nil {
		idx.Cycles = []CycleMeta{}
	}
	for i := range idx.Cycles {
		idx.Cycles[i].FolderPath = pathutil.Display(idx.Cycles[i].FolderPath)
	}
	if sel := idx.Selected(); sel != "" && idx.indexOf(sel) < 0 {
		idx.SelectedCycleID = nil
	}
	return idx, nil
}

// Select marks cycleID as the selected cycle.
func (s *IndexStore) Select(cycleID string) (*IndexData, error) {
	idx, err := s.Load()
	if err != nil {
		return nil, err
	}
	if idx.indexOf(cycleID) < 0 {
		return nil, notFound("selected cycle does not exist: %s", cycleID)
	}
	idx.selectID(cycleID)
	if err := s.write(idx, "select", cycleID); err != nil {
		return nil, err
	}
	return idx, nil
}

// Create makes a new cycle folder under parentDir, writes its empty content
// file and appends it to the index. The new cycle becomes selected only when
// nothing was selected before. A failure after the folder was made leaves
// the folder in place.
func (s *IndexStore) Create(name, parentDir string) (*IndexData, error) {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(parentDir) == "" {
		return nil, invalidInput("parent folder is required")
	}
	parent := pathutil.Canonical(parentDir)
	if !fsutil.IsDir(parent) {
		return nil, invalidInput("the selected parent folder is not valid: %s", parentDir)
	}

	idx, err := s.Load()
	if err != nil {
		return nil, err
	}

	id := s.uniqueID(idx)
	folder := filepath.Join(parent, CycleFolderName(name, id))
	if err := os.Mkdir(folder, fsutil.DirPerm); err != nil {
		return nil, ioError("create cycle folder", err)
	}

	meta := CycleMeta{
		ID:         id,
		Name:       name,
		CreatedAt:  s.timestamp(),
		FolderPath: pathutil.Display(folder),
	}
	if err := s.cycles.write(meta, emptyCycleData(meta), "create"); err != nil {
		return nil, err
	}

	idx.Cycles = append(idx.Cycles, meta)
	if idx.SelectedCycleID == nil {
		idx.selectID(id)
	}
	if err := s.write(idx, "create", id); err != nil {
		return nil, err
	}
	return idx, nil
}

// Import registers an existing cycle folder. Empty id, name and createdAt
// in its content file are backfilled. Re-importing a known id updates that
// entry in place. The imported cycle always becomes selected.
func (s *IndexStore) Import(folderPath string) (*IndexData, error) {
	if strings.TrimSpace(folderPath) == "" {
		return nil, invalidInput("folder is required")
	}
	folder := pathutil.Canonical(folderPath)

	data, err := s.cycles.read(s.cycles.Path(folder))
	if err != nil {
		return nil, err
	}

	idx, err := s.Load()
	if err != nil {
		return nil, err
	}

	if data.ID == "" {
		data.ID = s.uniqueID(idx)
	}
	if data.Name == "" {
		data.Name = importedCycleName
	}
	if data.CreatedAt == "" {
		data.CreatedAt = s.timestamp()
	}

	meta := CycleMeta{
		ID:         data.ID,
		Name:       data.Name,
		CreatedAt:  data.CreatedAt,
		FolderPath: folder,
	}
	if i := idx.indexOf(data.ID); i >= 0 {
		idx.Cycles[i].Name = meta.Name
		idx.Cycles[i].FolderPath = meta.FolderPath
		idx.Cycles[i].CreatedAt = meta.CreatedAt
	} else {
		idx.Cycles = append(idx.Cycles, meta)
	}
	idx.selectID(data.ID)

	if err := s.cycles.write(meta, data, "import"); err != nil {
		return nil, err
	}
	if err := s.write(idx, "import", data.ID); err != nil {
		return nil, err
	}
	return idx, nil
}

func (s *IndexStore) write(idx *IndexData, op, cycleID string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), fsutil.DirPerm); err != nil {
		return ioError("create data directory", err)
	}
	return s.w.writeJSON(s.path, idx, SaveEvent{Operation: op, CycleID: cycleID})
}

func (s *IndexStore) uniqueID(idx *IndexData) string {
	for {
		id := s.newID()
		if idx.indexOf(id) < 0 {
			return id
		}
	}
}

func (s *IndexStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
