package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"cycleplanner/internal/fsutil"
)

// CycleFileName is the content file kept inside every cycle folder.
const CycleFileName = "cycle_data.json"

// CycleStore owns the per-cycle content files. It holds no cycle state of
// its own; every call reads or rewrites the file under the cycle's folder.
type CycleStore struct {
	w *writer
}

// Path returns the content file path for a cycle folder.
func (c *CycleStore) Path(folder string) string {
	return filepath.Join(folder, CycleFileName)
}

// EnsureData loads the content file for meta. A missing file is synthesized
// empty from meta and written; a present file has empty id, name and
// createdAt backfilled from meta.
func (c *CycleStore) EnsureData(meta CycleMeta) (*CycleData, error) {
	path := c.Path(meta.FolderPath)
	data, err := c.read(path)
	if errors.Is(err, ErrNotFound) {
		data = emptyCycleData(meta)
		if err := c.write(meta, data, "repair"); err != nil {
			return nil, err
		}
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	data.backfill(meta)
	return data, nil
}

// Save rewrites the content file for meta. The index is authoritative for
// identity, so data's id and name are replaced with meta's; createdAt is
// only defaulted. The folder is created when missing.
func (c *CycleStore) Save(meta CycleMeta, data CycleData) error {
	data.ID = meta.ID
	data.Name = meta.Name
	if data.CreatedAt == "" {
		data.CreatedAt = meta.CreatedAt
	}
	return c.write(meta, &data, "save")
}

func (c *CycleStore) read(path string) (*CycleData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFound("%s was not found in %s", CycleFileName, filepath.Dir(path))
		}
		return nil, ioError("read cycle data", err)
	}
	data, err := decodeCycleData(raw)
	if err != nil {
		return nil, parseError("parse cycle data "+path, err)
	}
	return data, nil
}

// DecodeCycleData parses cycle content the way a content file is read.
// Anything but a JSON object fails with ErrParse.
func DecodeCycleData(raw []byte) (*CycleData, error) {
	data, err := decodeCycleData(raw)
	if err != nil {
		return nil, parseError("parse cycle data", err)
	}
	return data, nil
}

func decodeCycleData(raw []byte) (*CycleData, error) {
	data := CycleData{Goals: Records{}, Works: Records{}, Tasks: Records{}}
	if err := decodeObject(raw, &data); err != nil {
		return nil, err
	}
	data.normalize()
	return &data, nil
}

func (c *CycleStore) write(meta CycleMeta, data *CycleData, op string) error {
	if meta.FolderPath == "" {
		return invalidInput("cycle %s has no folder path", meta.ID)
	}
	if err := os.MkdirAll(meta.FolderPath, fsutil.DirPerm); err != nil {
		return ioError("create cycle folder", err)
	}
	data.normalize()
	return c.w.writeCompact(c.Path(meta.FolderPath), data, SaveEvent{Operation: op, CycleID: meta.ID})
}

// decodeObject unmarshals raw into v, rejecting anything that is not a
// JSON object (including a bare null, which json.Unmarshal accepts).
func decodeObject(raw []byte, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return errors.New("content is empty")
	}
	if trimmed[0] != '{' {
		return errors.New("expected a JSON object")
	}
	return json.Unmarshal(trimmed, v)
}
