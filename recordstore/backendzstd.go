package recordstore

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdBackend compresses payloads on their way into any other backend.
// WithZeroFrames keeps zero-length values round-trippable.
type zstdBackend struct {
	inner   Backend
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newZstdBackend(inner Backend) (*zstdBackend, error) {

	encoder, err := zstd.NewWriter(nil, zstd.WithZeroFrames(true))
	if err != nil {
		return nil, fmt.Errorf("new zstd writer: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("new zstd reader: %w", err)
	}

	return &zstdBackend{
		inner:   inner,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

func (b *zstdBackend) Put(key string, value []byte) error {
	return b.inner.Put(key, b.encoder.EncodeAll(value, nil))
}

func (b *zstdBackend) Get(key string) ([]byte, error) {
	compressed, err := b.inner.Get(key)
	if err != nil {
		return nil, err
	}

	value, err := b.decoder.DecodeAll(compressed, []byte{})
	if err != nil {
		return nil, fmt.Errorf("zstd decode '%s': %w", key, err)
	}

	return value, nil
}

func (b *zstdBackend) Delete(key string) error {
	return b.inner.Delete(key)
}

func (b *zstdBackend) Exists(key string) bool {
	return b.inner.Exists(key)
}

func (b *zstdBackend) Keys() []string {
	return b.inner.Keys()
}

func (b *zstdBackend) Flush(key string) error {
	return b.inner.Flush(key)
}

func (b *zstdBackend) Sync() error {
	return b.inner.Sync()
}

func (b *zstdBackend) SizeOnDisk() int64 {
	return b.inner.SizeOnDisk()
}

func (b *zstdBackend) Close() error {
	b.encoder.Close()
	b.decoder.Close()

	return b.inner.Close()
}
