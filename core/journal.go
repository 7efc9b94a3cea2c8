package core

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Record is one backup operation as written to the journal.
type Record struct {
	Op       string    `json:"op"` // export, import, delete, prune
	Snapshot string    `json:"snapshot"`
	Time     time.Time `json:"time"`
	Files    int       `json:"files,omitempty"`
	Bytes    int64     `json:"bytes,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Journal keeps the backup operations of one application id on disk.
// An empty Path keeps the journal in memory only.
type Journal struct {
	Records []Record `json:"records"`
	Path    string   `json:"-"`
	mu      sync.RWMutex
}

func NewJournal(path string) *Journal {
	return &Journal{Path: path}
}

func (j *Journal) Load() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.Path == "" {
		return nil
	}
	data, err := os.ReadFile(j.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &j.Records)
}

func (j *Journal) Save() error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.Path == "" {
		return nil
	}
	data, err := json.MarshalIndent(j.Records, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(j.Path, data, 0644)
}

func (j *Journal) Add(r Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if r.Time.IsZero() {
		r.Time = time.Now()
	}
	j.Records = append(j.Records, r)
}

// List returns a copy of the records, oldest first.
func (j *Journal) List() []Record {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Record, len(j.Records))
	copy(out, j.Records)
	return out
}

// Last returns the latest successful record of op.
func (j *Journal) Last(op string) (Record, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for i := len(j.Records) - 1; i >= 0; i-- {
		if r := j.Records[i]; r.Op == op && r.Error == "" {
			return r, true
		}
	}
	return Record{}, false
}
