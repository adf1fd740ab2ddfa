package reconcile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// A workpaper is the persisted state of a reconciliation: a single indented
// JSON document holding the Snapshot of a Store. It is meant to be human
// readable and to diff nicely under version control.

// EncodeSnapshot writes the snapshot as indented JSON.
func EncodeSnapshot(w io.Writer, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to indent snapshot: %w", err)
	}
	out.WriteByte('\n')
	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("invalid workpaper: %w", err)
	}
	return snap, nil
}

// SaveWorkpaper writes the store state to filename, replacing it atomically.
func SaveWorkpaper(filename string, s *Store) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, ".workpaper-*.json")
	if err != nil {
		return fmt.Errorf("cannot create workpaper in %q: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeSnapshot(tmp, s.Snapshot()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write workpaper %q: %w", filename, err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("cannot replace workpaper %q: %w", filename, err)
	}
	return nil
}

// LoadWorkpaper reads the store state from filename.
//
// The returned error wraps fs.ErrNotExist if there is no such workpaper.
func LoadWorkpaper(filename string) (*Store, error) {
	f, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workpaper %q does not exist: %w", filename, err)
		}
		return nil, fmt.Errorf("cannot open workpaper %q: %w", filename, err)
	}
	defer f.Close()

	snap, err := DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	s, err := Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}
