// Package storage is the file-backed data store for cycles: a global
// index.json in the application data directory and one cycle_data.json in
// each cycle's own folder. Nothing is cached between calls; the files are
// the source of truth and every mutation is a whole-file replace.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cycleplanner/internal/fsutil"
)

// Storage is the operation surface used by the UI and the CLI.
type Storage struct {
	dataDir string
	w       *writer
	index   *IndexStore
	cycles  *CycleStore
}

// Option configures a Storage.
type Option func(*Storage)

// WithBackups controls whether a .bak copy of each file is kept before it
// is overwritten. Enabled by default.
func WithBackups(keep bool) Option {
	return func(s *Storage) {
		s.w.keepBackups = keep
	}
}

// WithIDGenerator replaces the cycle id generator. Intended for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Storage) {
		if fn != nil {
			s.index.newID = fn
		}
	}
}

// New creates a Storage rooted at dataDir, creating the directory if needed.
func New(dataDir string, opts ...Option) (*Storage, error) {
	if err := os.MkdirAll(dataDir, fsutil.DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	w := &writer{keepBackups: true}
	cycles := &CycleStore{w: w}
	s := &Storage{
		dataDir: dataDir,
		w:       w,
		cycles:  cycles,
		index: &IndexStore{
			path:   filepath.Join(dataDir, IndexFileName),
			cycles: cycles,
			w:      w,
			now:    time.Now,
			newID:  newCycleID,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DataDir returns the application data directory.
func (s *Storage) DataDir() string {
	return s.dataDir
}

// IndexPath returns the location of index.json.
func (s *Storage) IndexPath() string {
	return s.index.Path()
}

// Cycles exposes the underlying CycleStore.
func (s *Storage) Cycles() *CycleStore {
	return s.cycles
}

// SetNowFunc overrides the clock used for createdAt timestamps.
// Passing nil resets it to time.Now.
func (s *Storage) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.index.now = now
}

// SetOnSave registers a callback invoked after every successful write.
func (s *Storage) SetOnSave(fn func(SaveEvent)) {
	s.w.onSave = fn
}

// LoadIndex returns the current index.
func (s *Storage) LoadIndex() (*IndexData, error) {
	return s.index.Load()
}

// SelectCycle marks cycleID as selected.
func (s *Storage) SelectCycle(cycleID string) (*IndexData, error) {
	return s.index.Select(cycleID)
}

// CreateCycle creates a new cycle folder under parentDir.
func (s *Storage) CreateCycle(name, parentDir string) (*IndexData, error) {
	return s.index.Create(name, parentDir)
}

// ImportCycle registers an existing cycle folder.
func (s *Storage) ImportCycle(folderPath string) (*IndexData, error) {
	return s.index.Import(folderPath)
}

// LoadCycleData returns the content of the cycle with the given id,
// synthesizing an empty file if it went missing.
func (s *Storage) LoadCycleData(cycleID string) (*CycleData, error) {
	meta, err := s.lookup(cycleID)
	if err != nil {
		return nil, err
	}
	return s.cycles.EnsureData(meta)
}

// SaveCycleData overwrites the content of the cycle with the given id.
func (s *Storage) SaveCycleData(cycleID string, data CycleData) error {
	meta, err := s.lookup(cycleID)
	if err != nil {
		return err
	}
	return s.cycles.Save(meta, data)
}

// SelectedCycle returns the meta of the selected cycle.
func (s *Storage) SelectedCycle() (*CycleMeta, error) {
	idx, err := s.index.Load()
	if err != nil {
		return nil, err
	}
	sel := idx.Selected()
	if sel == "" {
		return nil, notFound("no cycle is selected")
	}
	meta, _ := idx.Find(sel)
	return &meta, nil
}

func (s *Storage) lookup(cycleID string) (CycleMeta, error) {
	idx, err := s.index.Load()
	if err != nil {
		return CycleMeta{}, err
	}
	meta, ok := idx.Find(cycleID)
	if !ok {
		return CycleMeta{}, notFound("cycle was not found: %s", cycleID)
	}
	return meta, nil
}

// writer serializes and replaces files for both stores.
type writer struct {
	keepBackups bool
	onSave      func(SaveEvent)
}

// writeJSON replaces path with v indented for reading.
func (w *writer) writeJSON(path string, v any, ev SaveEvent) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return invalidInput("serialize %s: %v", filepath.Base(path), err)
	}
	return w.write(path, append(data, '\n'), ev)
}

// writeCompact replaces path with v on one line. Embedded raw values keep
// their compact encoding and HTML characters are not escaped, so records
// read back byte for byte.
func (w *writer) writeCompact(path string, v any, ev SaveEvent) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return invalidInput("serialize %s: %v", filepath.Base(path), err)
	}
	return w.write(path, buf.Bytes(), ev)
}

func (w *writer) write(path string, data []byte, ev SaveEvent) error {
	name := filepath.Base(path)
	if w.keepBackups {
		fsutil.BestEffortBackup(path, fsutil.FilePerm)
	}
	if err := fsutil.WriteFileAtomic(path, data, fsutil.FilePerm); err != nil {
		return ioError("write "+name, err)
	}

	if w.onSave != nil {
		ev.File = name
		ev.Path = path
		w.onSave(ev)
	}
	return nil
}
