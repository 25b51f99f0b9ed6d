// Package resolver turns album groups into written tag sets: it resolves
// each group to a canonical album record, matches local files to track
// records, and derives the final field mapping.
package resolver

import (
	"context"

	"golang.org/x/sync/singleflight"

	"tagsmith/internal/interfaces"
	"tagsmith/internal/shared"
)

// AlbumResolver resolves an album group to its canonical record, consulting
// the cache before the remote resolver.
type AlbumResolver struct {
	cache  interfaces.Cache
	remote interfaces.Resolver
	flight singleflight.Group
}

// NewAlbumResolver creates a resolver over the given cache and remote.
func NewAlbumResolver(cache interfaces.Cache, remote interfaces.Resolver) *AlbumResolver {
	return &AlbumResolver{cache: cache, remote: remote}
}

// Resolve returns the album record for a group. Cache hits are served
// directly; misses go to the remote resolver and positive results are
// cached. A nil record with a nil error means the remote found nothing —
// negative results are never cached, so the next run re-queries. The
// singleflight group guarantees at most one remote fetch per key even under
// concurrent callers, so duplicate cache writes cannot race.
func (r *AlbumResolver) Resolve(ctx context.Context, group *shared.AlbumGroup) (*shared.AlbumRecord, error) {
	if record, ok := r.cache.Get(group.Artist, group.Album); ok {
		return record, nil
	}

	key := group.Artist + "\x1f" + group.Album
	v, err, _ := r.flight.Do(key, func() (interface{}, error) {
		record, err := r.remote.Find(ctx, group.Artist, group.Album, len(group.Tracks))
		if err != nil {
			return nil, err
		}
		if record != nil {
			if err := r.cache.Put(group.Artist, group.Album, record); err != nil {
				return nil, err
			}
		}
		return record, nil
	})
	if err != nil {
		return nil, err
	}

	record, _ := v.(*shared.AlbumRecord)
	return record, nil
}
