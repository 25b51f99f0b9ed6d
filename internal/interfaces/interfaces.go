package interfaces

import (
	"context"
	"io"

	"tagsmith/internal/shared"
)

// Resolver looks up the canonical album record for an (artist, album) pair.
// A nil record with a nil error means the resolver found nothing; errors are
// transport-level failures.
type Resolver interface {
	Find(ctx context.Context, artist, album string, trackCount int) (*shared.AlbumRecord, error)
}

// Cache is the durable (artist, album) → AlbumRecord store. Lookups on
// missing keys report absence, never failure.
type Cache interface {
	// Get returns the cached record for the exact key, if present
	Get(artist, album string) (*shared.AlbumRecord, bool)

	// Put stores a record, overwriting any entry for the same key
	Put(artist, album string, record *shared.AlbumRecord) error

	// Clear removes all entries
	Clear() error

	// Dump returns all entries for inspection
	Dump() (map[string]shared.AlbumRecord, error)

	// Close releases the underlying store
	Close() error
}

// LyricsProvider fetches lyrics for a track. A nil result with a nil error
// means no lyrics are available.
type LyricsProvider interface {
	Get(ctx context.Context, title, artist, album string, duration float64) (*shared.Lyrics, error)
}

// Decoder produces the raw mono 44.1kHz 32-bit float PCM stream of a file.
type Decoder interface {
	Decode(ctx context.Context, path string) (io.ReadCloser, error)
}

// Estimator computes beats per minute from a raw PCM stream.
type Estimator interface {
	Estimate(ctx context.Context, pcm io.Reader) (float64, error)
}

// TagStore reads and writes the audio container's tag mapping. WriteTags is
// all-or-nothing: either the full field set is persisted or the file is left
// untouched.
type TagStore interface {
	ReadTags(path string) (map[string][]string, error)
	WriteTags(path string, fields map[string][]string) error

	// Duration returns the audio length in seconds
	Duration(path string) (float64, error)
}
