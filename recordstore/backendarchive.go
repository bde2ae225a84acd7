package recordstore

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const journalFilename = "journal"
const dataFilename = "data"

// archiveCommand is one line of the journal file.
type archiveCommand struct {
	Id        string `json:"id"`
	Name      string `json:"name"` // "set" or "delete"
	Timestamp int64  `json:"timestamp"`
	Key       string `json:"key"`
	Offset    int64  `json:"offset"`
	Size      int64  `json:"size"`
}

type archiveEntry struct {
	offset int64
	size   int64
}

// archiveBackend appends record payloads to a single data file and
// records every mutation in a JSON journal, replayed at open. A replace
// appends a new payload and journals a new offset, old payloads stay
// behind as garbage until the store is merged into a fresh one.
type archiveBackend struct {
	journalPath string
	dataPath    string
	journal     *os.File // append only
	data        *os.File // append only
	dataRead    *os.File
	dataSize    int64
	entries     map[string]archiveEntry
	order       []string // live keys, insertion order
}

func openArchiveBackend(dir string) (*archiveBackend, error) {

	b := &archiveBackend{
		journalPath: filepath.Join(dir, journalFilename),
		dataPath:    filepath.Join(dir, dataFilename),
		entries:     map[string]archiveEntry{},
		order:       []string{},
	}

	f, err := os.OpenFile(b.journalPath, os.O_RDONLY|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("open journal for read: %w", err)
	}

	j := json.NewDecoder(f)
	for {
		command := &archiveCommand{}
		err := j.Decode(&command)
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("decode journal: %w", err)
		}

		switch command.Name {
		case "set":
			if _, exists := b.entries[command.Key]; !exists {
				b.order = append(b.order, command.Key)
			}
			b.entries[command.Key] = archiveEntry{
				offset: command.Offset,
				size:   command.Size,
			}
		case "delete":
			if _, exists := b.entries[command.Key]; exists {
				delete(b.entries, command.Key)
				b.order = removeKey(b.order, command.Key)
			}
		}
	}
	f.Close()

	b.journal, err = os.OpenFile(b.journalPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("open journal for write: %w", err)
	}

	b.data, err = os.OpenFile(b.dataPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		b.journal.Close()
		return nil, fmt.Errorf("open data for write: %w", err)
	}

	b.dataRead, err = os.Open(b.dataPath)
	if err != nil {
		b.journal.Close()
		b.data.Close()
		return nil, fmt.Errorf("open data for read: %w", err)
	}

	info, err := b.data.Stat()
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("stat data: %w", err)
	}
	b.dataSize = info.Size()

	return b, nil
}

func removeKey(keys []string, key string) []string {
	result := keys[:0]
	for _, k := range keys {
		if k != key {
			result = append(result, k)
		}
	}

	return result
}

func (b *archiveBackend) appendCommand(command *archiveCommand) error {
	command.Id = uuid.New().String()
	command.Timestamp = time.Now().UnixNano()

	err := json.NewEncoder(b.journal).Encode(command)
	if err != nil {
		return fmt.Errorf("json encode command: %w", err)
	}

	return nil
}

func (b *archiveBackend) Put(key string, value []byte) error {

	offset := b.dataSize
	n, err := b.data.Write(value)
	if err != nil {
		return fmt.Errorf("append data: %w", err)
	}
	b.dataSize += int64(n)

	err = b.appendCommand(&archiveCommand{
		Name:   "set",
		Key:    key,
		Offset: offset,
		Size:   int64(len(value)),
	})
	if err != nil {
		return err
	}

	if _, exists := b.entries[key]; !exists {
		b.order = append(b.order, key)
	}
	b.entries[key] = archiveEntry{
		offset: offset,
		size:   int64(len(value)),
	}

	return nil
}

func (b *archiveBackend) Get(key string) ([]byte, error) {

	entry, exists := b.entries[key]
	if !exists {
		return nil, ErrorKeyNotFound
	}

	value := make([]byte, entry.size)
	_, err := b.dataRead.ReadAt(value, entry.offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read data at %d: %w", entry.offset, err)
	}

	return value, nil
}

func (b *archiveBackend) Delete(key string) error {

	if _, exists := b.entries[key]; !exists {
		return ErrorKeyNotFound
	}

	err := b.appendCommand(&archiveCommand{
		Name: "delete",
		Key:  key,
	})
	if err != nil {
		return err
	}

	delete(b.entries, key)
	b.order = removeKey(b.order, key)

	return nil
}

func (b *archiveBackend) Exists(key string) bool {
	_, exists := b.entries[key]
	return exists
}

func (b *archiveBackend) Keys() []string {
	return append([]string{}, b.order...)
}

func (b *archiveBackend) Flush(key string) error {
	if _, exists := b.entries[key]; !exists {
		return ErrorKeyNotFound
	}

	return b.Sync()
}

func (b *archiveBackend) Sync() error {
	err := b.data.Sync()
	if err != nil {
		return fmt.Errorf("sync data: %w", err)
	}

	err = b.journal.Sync()
	if err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}

	return nil
}

func (b *archiveBackend) SizeOnDisk() int64 {
	total := int64(0)
	for _, filename := range []string{b.dataPath, b.journalPath} {
		info, err := os.Stat(filename)
		if err != nil {
			continue
		}
		total += info.Size()
	}

	return total
}

func (b *archiveBackend) Close() error {
	err := b.journal.Close()
	if e := b.data.Close(); err == nil {
		err = e
	}
	if e := b.dataRead.Close(); err == nil {
		err = e
	}

	return err
}
