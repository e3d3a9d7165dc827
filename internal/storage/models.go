package storage

import (
	"bytes"
	"encoding/json"
)

// Records is an ordered list of opaque JSON values owned by the UI layer.
// Elements are never inspected, only carried through load and save.
type Records []json.RawMessage

// NewRecords builds Records from already-encoded JSON values.
func NewRecords(values ...string) Records {
	r := make(Records, 0, len(values))
	for _, v := range values {
		r = append(r, json.RawMessage(v))
	}
	return r
}

// UnmarshalJSON keeps each element in compact form, the same encoding it
// is written in.
func (r *Records) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Records, 0, len(raw))
	for _, v := range raw {
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return err
		}
		out = append(out, json.RawMessage(buf.Bytes()))
	}
	*r = out
	return nil
}

func (r Records) orEmpty() Records {
	if r == nil {
		return Records{}
	}
	return r
}

// CycleMeta is the index entry for one cycle.
type CycleMeta struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CreatedAt  string `json:"createdAt"`
	FolderPath string `json:"folderPath"`
}

// IndexData is the content of index.json. Cycles keep insertion order.
type IndexData struct {
	Cycles          []CycleMeta `json:"cycles"`
	SelectedCycleID *string     `json:"selectedCycleId"`
}

// Selected returns the selected cycle id, or "" when none is selected.
func (x *IndexData) Selected() string {
	if x == nil || x.SelectedCycleID == nil {
		return ""
	}
	return *x.SelectedCycleID
}

// Find returns the cycle with the given id.
func (x *IndexData) Find(id string) (CycleMeta, bool) {
	if i := x.indexOf(id); i >= 0 {
		return x.Cycles[i], true
	}
	return CycleMeta{}, false
}

func (x *IndexData) indexOf(id string) int {
	for i := range x.Cycles {
		if x.Cycles[i].ID == id {
			return i
		}
	}
	return -1
}

func (x *IndexData) selectID(id string) {
	x.SelectedCycleID = &id
}

// CycleData is the content of a cycle's cycle_data.json.
type CycleData struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CreatedAt string  `json:"createdAt"`
	Goals     Records `json:"goals"`
	Works     Records `json:"works"`
	Tasks     Records `json:"tasks"`
}

// emptyCycleData synthesizes a content file for meta with no records.
func emptyCycleData(meta CycleMeta) *CycleData {
	return &CycleData{
		ID:        meta.ID,
		Name:      meta.Name,
		CreatedAt: meta.CreatedAt,
		Goals:     Records{},
		Works:     Records{},
		Tasks:     Records{},
	}
}

func (d *CycleData) normalize() {
	d.Goals = d.Goals.orEmpty()
	d.Works = d.Works.orEmpty()
	d.Tasks = d.Tasks.orEmpty()
}

// backfill fills empty identity fields from meta.
func (d *CycleData) backfill(meta CycleMeta) {
	if d.ID == "" {
		d.ID = meta.ID
	}
	if d.Name == "" {
		d.Name = meta.Name
	}
	if d.CreatedAt == "" {
		d.CreatedAt = meta.CreatedAt
	}
}

// SaveEvent describes one successful file write.
type SaveEvent struct {
	File      string // base name, e.g. "index.json"
	Path      string
	Operation string // "select", "create", "import", "save", "repair"
	CycleID   string
}
