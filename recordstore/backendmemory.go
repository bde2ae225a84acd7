package recordstore

import (
	"github.com/google/btree"
)

type memoryRecord struct {
	key   string
	value []byte
}

// memoryBackend holds records in an ordered btree, no durability at
// all. Flush and Sync succeed trivially.
type memoryBackend struct {
	tree *btree.BTreeG[*memoryRecord]
	size int64
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{
		tree: btree.NewG(32, func(a, b *memoryRecord) bool {
			return a.key < b.key
		}),
	}
}

func (b *memoryBackend) Put(key string, value []byte) error {
	record := &memoryRecord{
		key:   key,
		value: append([]byte{}, value...),
	}

	previous, replaced := b.tree.ReplaceOrInsert(record)
	if replaced {
		b.size -= int64(len(previous.value))
	}
	b.size += int64(len(record.value))

	return nil
}

func (b *memoryBackend) Get(key string) ([]byte, error) {
	record, exists := b.tree.Get(&memoryRecord{key: key})
	if !exists {
		return nil, ErrorKeyNotFound
	}

	return append([]byte{}, record.value...), nil
}

func (b *memoryBackend) Delete(key string) error {
	record, existed := b.tree.Delete(&memoryRecord{key: key})
	if !existed {
		return ErrorKeyNotFound
	}
	b.size -= int64(len(record.value))

	return nil
}

func (b *memoryBackend) Exists(key string) bool {
	_, exists := b.tree.Get(&memoryRecord{key: key})
	return exists
}

func (b *memoryBackend) Keys() []string {
	keys := []string{}
	b.tree.Ascend(func(record *memoryRecord) bool {
		keys = append(keys, record.key)
		return true
	})

	return keys
}

func (b *memoryBackend) Flush(key string) error {
	if !b.Exists(key) {
		return ErrorKeyNotFound
	}

	return nil
}

func (b *memoryBackend) Sync() error {
	return nil
}

func (b *memoryBackend) SizeOnDisk() int64 {
	return b.size
}

func (b *memoryBackend) Close() error {
	b.tree.Clear(false)
	return nil
}
