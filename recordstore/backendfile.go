package recordstore

import (
	"fmt"
	"os"
	"path/filepath"
)

const recordsDirname = "records"

// fileBackend keeps one file per record, named exactly after the key.
// Reserved characters are rejected by ValidateKey, so any remaining key
// is a safe file name except "." and "..", which this kind cannot host.
// Temporary files live in the store directory, beside the control file,
// so the records directory only ever contains real records.
type fileBackend struct {
	dir     string // store directory, holds temp files
	records string
}

func openFileBackend(dir string) (*fileBackend, error) {

	records := filepath.Join(dir, recordsDirname)

	err := os.MkdirAll(records, 0755)
	if err != nil {
		return nil, fmt.Errorf("create records directory: %w", err)
	}

	return &fileBackend{
		dir:     dir,
		records: records,
	}, nil
}

// Put writes to a temporary file and renames over the destination, so
// a replace never leaves a half-written or missing record behind.
func (b *fileBackend) Put(key string, value []byte) error {

	if key == "." || key == ".." {
		return fmt.Errorf("key '%s' cannot name a record file", key)
	}

	f, err := os.CreateTemp(b.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	_, err = f.Write(value)
	if err == nil {
		err = f.Sync()
	}
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	err = f.Close()
	if err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	err = os.Rename(f.Name(), filepath.Join(b.records, key))
	if err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

func (b *fileBackend) Get(key string) ([]byte, error) {
	value, err := os.ReadFile(filepath.Join(b.records, key))
	if os.IsNotExist(err) {
		return nil, ErrorKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read record file: %w", err)
	}

	return value, nil
}

func (b *fileBackend) Delete(key string) error {
	err := os.Remove(filepath.Join(b.records, key))
	if os.IsNotExist(err) {
		return ErrorKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("remove record file: %w", err)
	}

	return nil
}

func (b *fileBackend) Exists(key string) bool {
	_, err := os.Stat(filepath.Join(b.records, key))
	return err == nil
}

func (b *fileBackend) Keys() []string {
	keys := []string{}

	entries, err := os.ReadDir(b.records)
	if err != nil {
		return keys
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		keys = append(keys, entry.Name())
	}

	return keys
}

func (b *fileBackend) Flush(key string) error {

	f, err := os.Open(filepath.Join(b.records, key))
	if os.IsNotExist(err) {
		return ErrorKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("open record file: %w", err)
	}
	defer f.Close()

	err = f.Sync()
	if err != nil {
		return fmt.Errorf("sync record file: %w", err)
	}

	return nil
}

func (b *fileBackend) Sync() error {

	// Record files are synced at Put time, this persists the directory
	// entries themselves.
	d, err := os.Open(b.records)
	if err != nil {
		return fmt.Errorf("open records directory: %w", err)
	}
	defer d.Close()

	err = d.Sync()
	if err != nil {
		return fmt.Errorf("sync records directory: %w", err)
	}

	return nil
}

func (b *fileBackend) SizeOnDisk() int64 {
	total := int64(0)

	entries, err := os.ReadDir(b.records)
	if err != nil {
		return 0
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}

	return total
}

func (b *fileBackend) Close() error {
	return nil
}
