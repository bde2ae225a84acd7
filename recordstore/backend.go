package recordstore

// Backend is the raw byte storage under a RecordStore. Implementations
// map keys to blobs and nothing else; uniqueness, key validation and
// iteration order are enforced one level up.
//
// Put must replace in place: an existing key never transiently
// disappears. A zero-length value is a real value, distinct from the
// key being absent.
type Backend interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	Exists(key string) bool
	Keys() []string
	Flush(key string) error
	Sync() error
	SizeOnDisk() int64
	Close() error
}

func openBackend(kind string, dir string) (Backend, error) {
	switch kind {
	case KindBolt:
		return openBoltBackend(dir)
	case KindFile:
		return openFileBackend(dir)
	case KindArchive:
		return openArchiveBackend(dir)
	case KindMemory:
		return newMemoryBackend(), nil
	}

	return nil, ErrorUnknownKind
}
