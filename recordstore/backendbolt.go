package recordstore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

const boltFilename = "records.db"

var boltBucket = []byte("records")

type boltBackend struct {
	filename string
	db       *bbolt.DB
}

func openBoltBackend(dir string) (*boltBackend, error) {

	filename := filepath.Join(dir, boltFilename)

	db, err := bbolt.Open(filename, 0666, bbolt.DefaultOptions)
	if err != nil {
		return nil, fmt.Errorf("open bolt file: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &boltBackend{
		filename: filename,
		db:       db,
	}, nil
}

// seek distinguishes a missing key from a stored zero-length value,
// which bucket.Get conflates.
func seekBolt(tx *bbolt.Tx, key string) ([]byte, []byte) {
	k, v := tx.Bucket(boltBucket).Cursor().Seek([]byte(key))
	if k == nil || !bytes.Equal(k, []byte(key)) {
		return nil, nil
	}
	return k, v
}

func (b *boltBackend) Put(key string, value []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), value)
	})
}

func (b *boltBackend) Get(key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		k, v := seekBolt(tx, key)
		if k == nil {
			return ErrorKeyNotFound
		}
		value = append([]byte{}, v...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (b *boltBackend) Delete(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		k, _ := seekBolt(tx, key)
		if k == nil {
			return ErrorKeyNotFound
		}
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
}

func (b *boltBackend) Exists(key string) bool {
	exists := false
	b.db.View(func(tx *bbolt.Tx) error {
		k, _ := seekBolt(tx, key)
		exists = k != nil
		return nil
	})

	return exists
}

func (b *boltBackend) Keys() []string {
	keys := []string{}
	b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).ForEach(func(k, v []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})

	return keys
}

func (b *boltBackend) Flush(key string) error {
	return b.db.Sync()
}

func (b *boltBackend) Sync() error {
	return b.db.Sync()
}

func (b *boltBackend) SizeOnDisk() int64 {
	info, err := os.Stat(b.filename)
	if err != nil {
		return 0
	}

	return info.Size()
}

func (b *boltBackend) Close() error {
	return b.db.Close()
}
