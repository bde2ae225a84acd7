package recordstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	KindBolt    = "bolt"
	KindFile    = "file"
	KindArchive = "archive"
	KindMemory  = "memory"

	KindDefault = KindBolt
)

// Config carries the named creation parameters of a record store. Kind
// and Compression are fixed for the lifetime of the store, Description
// can be changed later.
type Config struct {
	Path        string
	Kind        string // KindBolt, KindFile, KindArchive or KindMemory; empty selects KindDefault
	Description string
	Compression bool // compress payloads with zstd before they reach the backend
}

// RecordStore is a persistent map of unique keys to opaque byte
// payloads, with stable insertion-order iteration. One writer at a
// time; the mutex serializes all operations on the handle.
type RecordStore struct {
	dir     string // empty for memory stores
	backend Backend
	control *control
	present map[string]bool
	mutex   *sync.Mutex
}

// Stores open in this process, used to refuse Delete and double Open.
var openStores = map[string]*RecordStore{}
var openStoresMutex = &sync.Mutex{}

func validKind(kind string) bool {
	switch kind {
	case KindBolt, KindFile, KindArchive, KindMemory:
		return true
	}

	return false
}

// Create makes a new empty record store. It fails with ErrorStoreExists
// if the path already names one (or any existing directory).
func Create(config *Config) (*RecordStore, error) {

	kind := config.Kind
	if kind == "" {
		kind = KindDefault
	}
	if !validKind(kind) {
		return nil, ErrorUnknownKind
	}

	c := &control{
		Version:     1,
		Kind:        kind,
		Compression: config.Compression,
		Description: config.Description,
		Keys:        []string{},
	}

	if kind == KindMemory {
		backend := Backend(newMemoryBackend())
		if config.Compression {
			var err error
			backend, err = newZstdBackend(backend)
			if err != nil {
				return nil, err
			}
		}
		return &RecordStore{
			backend: backend,
			control: c,
			present: map[string]bool{},
			mutex:   &sync.Mutex{},
		}, nil
	}

	if config.Path == "" {
		return nil, fmt.Errorf("record store path is empty")
	}
	dir := filepath.Clean(config.Path)

	openStoresMutex.Lock()
	defer openStoresMutex.Unlock()

	if _, open := openStores[dir]; open {
		return nil, ErrorStoreExists
	}
	if _, err := os.Stat(dir); err == nil {
		return nil, ErrorStoreExists
	}

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	backend, err := openBackend(kind, dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	if config.Compression {
		compressed, err := newZstdBackend(backend)
		if err != nil {
			backend.Close()
			os.RemoveAll(dir)
			return nil, err
		}
		backend = compressed
	}

	err = writeControl(dir, c)
	if err != nil {
		backend.Close()
		os.RemoveAll(dir)
		return nil, err
	}

	rs := &RecordStore{
		dir:     dir,
		backend: backend,
		control: c,
		present: map[string]bool{},
		mutex:   &sync.Mutex{},
	}
	openStores[dir] = rs

	return rs, nil
}

// Open returns a handle on an existing store. The key order recorded in
// the control file is reconciled against what the backend really holds:
// keys the backend lost are dropped, keys the control file missed are
// appended in backend order.
func Open(pathname string) (*RecordStore, error) {

	if pathname == "" {
		return nil, ErrorStoreNotFound
	}
	dir := filepath.Clean(pathname)

	openStoresMutex.Lock()
	defer openStoresMutex.Unlock()

	if _, open := openStores[dir]; open {
		return nil, ErrorStoreInUse
	}

	c, err := readControl(dir)
	if err != nil {
		return nil, err
	}
	if !validKind(c.Kind) || c.Kind == KindMemory {
		return nil, ErrorUnknownKind
	}

	backend, err := openBackend(c.Kind, dir)
	if err != nil {
		return nil, err
	}
	if c.Compression {
		compressed, err := newZstdBackend(backend)
		if err != nil {
			backend.Close()
			return nil, err
		}
		backend = compressed
	}

	stored := backend.Keys()
	available := map[string]bool{}
	for _, key := range stored {
		available[key] = true
	}

	keys := []string{}
	present := map[string]bool{}
	for _, key := range c.Keys {
		if available[key] && !present[key] {
			keys = append(keys, key)
			present[key] = true
		}
	}
	for _, key := range stored {
		if !present[key] {
			keys = append(keys, key)
			present[key] = true
		}
	}
	c.Keys = keys

	rs := &RecordStore{
		dir:     dir,
		backend: backend,
		control: c,
		present: present,
		mutex:   &sync.Mutex{},
	}
	openStores[dir] = rs

	return rs, nil
}

// Delete removes a store and all its records from disk. It refuses
// stores open in this process.
func Delete(pathname string) error {

	if pathname == "" {
		return ErrorStoreNotFound
	}
	dir := filepath.Clean(pathname)

	openStoresMutex.Lock()
	defer openStoresMutex.Unlock()

	if _, open := openStores[dir]; open {
		return ErrorStoreInUse
	}

	_, err := os.Stat(filepath.Join(dir, controlFilename))
	if os.IsNotExist(err) {
		return ErrorStoreNotFound
	}
	if err != nil {
		return fmt.Errorf("stat control file: %w", err)
	}

	err = os.RemoveAll(dir)
	if err != nil {
		return fmt.Errorf("remove store directory: %w", err)
	}

	return nil
}

func (rs *RecordStore) Close() error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.backend == nil {
		return ErrorStoreClosed
	}

	err := rs.backend.Close()
	rs.backend = nil

	if rs.dir != "" {
		openStoresMutex.Lock()
		delete(openStores, rs.dir)
		openStoresMutex.Unlock()
	}

	return err
}

// caller holds rs.mutex
func (rs *RecordStore) saveControl() error {
	if rs.dir == "" {
		return nil
	}

	return writeControl(rs.dir, rs.control)
}

func (rs *RecordStore) Insert(key string, value []byte) error {

	err := ValidateKey(key)
	if err != nil {
		return err
	}

	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.backend == nil {
		return ErrorStoreClosed
	}
	if rs.present[key] {
		return ErrorDuplicateKey
	}

	err = rs.backend.Put(key, value)
	if err != nil {
		return fmt.Errorf("put '%s': %w", key, err)
	}

	rs.present[key] = true
	rs.control.Keys = append(rs.control.Keys, key)

	err = rs.saveControl()
	if err != nil {
		if undoErr := rs.backend.Delete(key); undoErr != nil {
			err = errors.Join(err, fmt.Errorf("undo put '%s': %w", key, undoErr))
		}
		delete(rs.present, key)
		rs.control.Keys = rs.control.Keys[:len(rs.control.Keys)-1]
		return err
	}

	return nil
}

func (rs *RecordStore) Read(key string) ([]byte, error) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.backend == nil {
		return nil, ErrorStoreClosed
	}
	if !rs.present[key] {
		return nil, ErrorKeyNotFound
	}

	value, err := rs.backend.Get(key)
	if err != nil {
		return nil, fmt.Errorf("get '%s': %w", key, err)
	}

	return value, nil
}

func (rs *RecordStore) Replace(key string, value []byte) error {

	err := ValidateKey(key)
	if err != nil {
		return err
	}

	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.backend == nil {
		return ErrorStoreClosed
	}
	if !rs.present[key] {
		return ErrorKeyNotFound
	}

	// Put replaces in place, count and key order stay untouched.
	err = rs.backend.Put(key, value)
	if err != nil {
		return fmt.Errorf("put '%s': %w", key, err)
	}

	return nil
}

func (rs *RecordStore) Remove(key string) error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.backend == nil {
		return ErrorStoreClosed
	}
	if !rs.present[key] {
		return ErrorKeyNotFound
	}

	// Kept around to undo the removal if persisting the key list fails.
	previous, err := rs.backend.Get(key)
	if err != nil {
		return fmt.Errorf("get '%s': %w", key, err)
	}

	err = rs.backend.Delete(key)
	if err != nil {
		return fmt.Errorf("delete '%s': %w", key, err)
	}

	delete(rs.present, key)
	keys := rs.control.Keys[:0]
	for _, k := range rs.control.Keys {
		if k != key {
			keys = append(keys, k)
		}
	}
	rs.control.Keys = keys

	err = rs.saveControl()
	if err != nil {
		if undoErr := rs.backend.Put(key, previous); undoErr != nil {
			err = errors.Join(err, fmt.Errorf("undo delete '%s': %w", key, undoErr))
		}
		rs.present[key] = true
		rs.control.Keys = append(rs.control.Keys, key)
		return err
	}

	return nil
}

func (rs *RecordStore) Length(key string) (int64, error) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.backend == nil {
		return 0, ErrorStoreClosed
	}
	if !rs.present[key] {
		return 0, ErrorKeyNotFound
	}

	value, err := rs.backend.Get(key)
	if err != nil {
		return 0, fmt.Errorf("get '%s': %w", key, err)
	}

	return int64(len(value)), nil
}

func (rs *RecordStore) ContainsKey(key string) bool {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	return rs.present[key]
}

func (rs *RecordStore) Count() int {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	return len(rs.control.Keys)
}

// Flush blocks until the named record is durably persisted.
func (rs *RecordStore) Flush(key string) error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.backend == nil {
		return ErrorStoreClosed
	}
	if !rs.present[key] {
		return ErrorKeyNotFound
	}

	err := rs.backend.Flush(key)
	if err != nil {
		return fmt.Errorf("flush '%s': %w", key, err)
	}

	return nil
}

// Sync blocks until every pending write, records and metadata both, is
// durably persisted.
func (rs *RecordStore) Sync() error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.backend == nil {
		return ErrorStoreClosed
	}

	err := rs.backend.Sync()
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	return rs.saveControl()
}

// SpaceUsed approximates the bytes consumed by the store, records plus
// metadata overhead.
func (rs *RecordStore) SpaceUsed() int64 {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.backend == nil {
		return 0
	}

	total := rs.backend.SizeOnDisk()
	if rs.dir != "" {
		info, err := os.Stat(filepath.Join(rs.dir, controlFilename))
		if err == nil {
			total += info.Size()
		}
	}

	return total
}

func (rs *RecordStore) Description() string {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	return rs.control.Description
}

func (rs *RecordStore) ChangeDescription(description string) error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.backend == nil {
		return ErrorStoreClosed
	}

	previous := rs.control.Description
	rs.control.Description = description

	err := rs.saveControl()
	if err != nil {
		rs.control.Description = previous
		return err
	}

	return nil
}

func (rs *RecordStore) Kind() string {
	return rs.control.Kind
}

func (rs *RecordStore) Path() string {
	return rs.dir
}

// caller must NOT hold rs.mutex
func (rs *RecordStore) snapshotKeys() []string {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	return append([]string{}, rs.control.Keys...)
}
