package recordstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const controlFilename = "control.json"

// control is the store-level metadata file. Keys holds the live keys in
// insertion order, which is the order Sequence traverses.
type control struct {
	Version     int      `json:"version"`
	Kind        string   `json:"kind"`
	Compression bool     `json:"compression"`
	Description string   `json:"description"`
	Keys        []string `json:"keys"`
}

func readControl(dir string) (*control, error) {

	data, err := os.ReadFile(filepath.Join(dir, controlFilename))
	if os.IsNotExist(err) {
		return nil, ErrorStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read control file: %w", err)
	}

	c := &control{}
	err = json.Unmarshal(data, c)
	if err != nil {
		return nil, fmt.Errorf("decode control file: %w", err)
	}
	if c.Keys == nil {
		c.Keys = []string{}
	}

	return c, nil
}

// writeControl replaces the control file atomically, temp file plus
// rename, so a crash mid-write keeps the previous version readable.
func writeControl(dir string, c *control) error {

	f, err := os.CreateTemp(dir, ".control-*")
	if err != nil {
		return fmt.Errorf("create temp control file: %w", err)
	}

	e := json.NewEncoder(f)
	e.SetIndent("", "    ")
	err = e.Encode(c)
	if err == nil {
		err = f.Sync()
	}
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("write temp control file: %w", err)
	}
	err = f.Close()
	if err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("close temp control file: %w", err)
	}

	err = os.Rename(f.Name(), filepath.Join(dir, controlFilename))
	if err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("rename temp control file: %w", err)
	}

	return nil
}
