// Package store persists the player's last known good state to disk.
//
// Offline continuity must survive process restarts with no network and no
// external services, so the store is plain files: one versioned JSON record
// per terminal holding the last raw screen response, and one global record
// holding the clock offset. Records are written after every successful fetch
// and only ever read back on fetch failure; nothing deletes them.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
)

const schemaVersion = 1

var (
	// ErrNoRecord indicates the requested record was never written
	ErrNoRecord = errors.New("store: no record")

	// ErrCorrupt indicates a record exists but cannot be trusted
	ErrCorrupt = errors.New("store: corrupt record")
)

// envelope wraps every persisted payload with a schema version so a future
// format change cannot be silently misread as current data
type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	SavedAt       time.Time       `json:"saved_at"`
	Payload       json.RawMessage `json:"payload"`
}

// offsetRecord is the global clock-offset payload, in signed milliseconds
type offsetRecord struct {
	OffsetMS int64 `json:"offset_ms"`
}

// FileStore is a directory-backed record store
type FileStore struct {
	dir string
}

// NewFileStore creates the backing directory if needed and returns the store
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// SaveBundle persists the raw screen response for a terminal
func (s *FileStore) SaveBundle(terminalID string, resp *v1alpha1.ScreenResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("store: encoding bundle: %w", err)
	}
	return s.write(s.bundlePath(terminalID), payload)
}

// LoadBundle returns the persisted screen response for a terminal.
// ErrNoRecord means the terminal never had a successful fetch; ErrCorrupt
// means a record exists but cannot be decoded.
func (s *FileStore) LoadBundle(terminalID string) (*v1alpha1.ScreenResponse, error) {
	payload, err := s.read(s.bundlePath(terminalID))
	if err != nil {
		return nil, err
	}
	var resp v1alpha1.ScreenResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &resp, nil
}

// SaveOffset persists the global clock offset
func (s *FileStore) SaveOffset(offset time.Duration) error {
	payload, err := json.Marshal(offsetRecord{OffsetMS: offset.Milliseconds()})
	if err != nil {
		return fmt.Errorf("store: encoding offset: %w", err)
	}
	return s.write(s.offsetPath(), payload)
}

// LoadOffset returns the persisted global clock offset
func (s *FileStore) LoadOffset() (time.Duration, error) {
	payload, err := s.read(s.offsetPath())
	if err != nil {
		return 0, err
	}
	var rec offsetRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return time.Duration(rec.OffsetMS) * time.Millisecond, nil
}

func (s *FileStore) bundlePath(terminalID string) string {
	return filepath.Join(s.dir, "terminal-"+terminalID+".json")
}

func (s *FileStore) offsetPath() string {
	return filepath.Join(s.dir, "clock-offset.json")
}

// write stores the payload in a versioned envelope via a temp file rename so
// a crash mid-write never truncates the previous good record
func (s *FileStore) write(path string, payload json.RawMessage) error {
	data, err := json.Marshal(envelope{
		SchemaVersion: schemaVersion,
		SavedAt:       time.Now().UTC(),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("store: encoding envelope: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("store: replacing %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) read(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("store: reading %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if env.SchemaVersion != schemaVersion {
		return nil, fmt.Errorf("%w: unknown schema version %d", ErrCorrupt, env.SchemaVersion)
	}
	return env.Payload, nil
}
