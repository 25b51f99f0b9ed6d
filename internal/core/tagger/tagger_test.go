package tagger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tagsmith/internal/core/resolver"
	"tagsmith/internal/shared"
)

// memoryTagStore serves tags from a map keyed by path and records writes.
type memoryTagStore struct {
	tags   map[string]map[string][]string
	writes map[string]map[string][]string
}

func newMemoryTagStore() *memoryTagStore {
	return &memoryTagStore{
		tags:   make(map[string]map[string][]string),
		writes: make(map[string]map[string][]string),
	}
}

func (s *memoryTagStore) ReadTags(path string) (map[string][]string, error) {
	return s.tags[path], nil
}

func (s *memoryTagStore) WriteTags(path string, fields map[string][]string) error {
	s.writes[path] = fields
	return nil
}

func (s *memoryTagStore) Duration(path string) (float64, error) {
	return 200, nil
}

type memoryCache struct {
	entries map[string]*shared.AlbumRecord
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*shared.AlbumRecord)}
}

func (c *memoryCache) Get(artist, album string) (*shared.AlbumRecord, bool) {
	record, ok := c.entries[artist+"\x1f"+album]
	return record, ok
}

func (c *memoryCache) Put(artist, album string, record *shared.AlbumRecord) error {
	c.entries[artist+"\x1f"+album] = record
	return nil
}

func (c *memoryCache) Clear() error {
	c.entries = make(map[string]*shared.AlbumRecord)
	return nil
}

func (c *memoryCache) Dump() (map[string]shared.AlbumRecord, error) {
	return nil, nil
}

func (c *memoryCache) Close() error { return nil }

type stubRemote struct {
	record *shared.AlbumRecord
}

func (s *stubRemote) Find(ctx context.Context, artist, album string, trackCount int) (*shared.AlbumRecord, error) {
	return s.record, nil
}

func writeTrackFiles(t *testing.T, store *memoryTagStore, root string, tags []map[string][]string) []string {
	t.Helper()
	paths := make([]string, len(tags))
	for i, trackTags := range tags {
		path := filepath.Join(root, trackTags["TITLE"][0]+".flac")
		if err := os.WriteFile(path, []byte("fLaC"), 0644); err != nil {
			t.Fatalf("Failed to write test file: %v", err)
		}
		store.tags[path] = trackTags
		paths[i] = path
	}
	return paths
}

func testRecord() *shared.AlbumRecord {
	return &shared.AlbumRecord{
		IDs:     shared.RecordIDs{Album: "mbid-album", Artist: "mbid-artist"},
		Artists: []string{"X"},
		Date:    "2003-06-10",
		Album:   "Y",
		Tracks: []shared.TrackRecord{
			{Disc: 1, Artists: []string{"X"}, Title: "One", Position: 1},
			{Disc: 1, Artists: []string{"X"}, Title: "Two", Position: 2},
		},
	}
}

func newTestTagger(store *memoryTagStore, record *shared.AlbumRecord) *Tagger {
	albums := resolver.NewAlbumResolver(newMemoryCache(), &stubRemote{record: record})
	warnings := shared.NewWarningCollector(false)
	return New(store, albums, nil, nil, nil, warnings, "test")
}

func TestRunUpdatesMatchedFiles(t *testing.T) {
	root := t.TempDir()
	store := newMemoryTagStore()
	paths := writeTrackFiles(t, store, root, []map[string][]string{
		{"ARTIST": {"X"}, "ALBUM": {"Y"}, "TITLE": {"One"}, "TRACK": {"1"}},
		{"ARTIST": {"X"}, "ALBUM": {"Y"}, "TITLE": {"Two"}, "TRACK": {"2"}},
	})

	tg := newTestTagger(store, testRecord())
	stats, err := tg.Run(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Updated != 2 || stats.Skipped != 0 {
		t.Errorf("Expected 2 updated, 0 skipped, got %d/%d", stats.Updated, stats.Skipped)
	}
	if stats.Groups != 1 {
		t.Errorf("Expected 1 resolved group, got %d", stats.Groups)
	}

	first := store.writes[paths[0]]
	if first == nil {
		t.Fatal("Expected tags written for first track")
	}
	checks := map[string]string{
		"ARTIST":                    "X",
		"ALBUMARTIST":               "X",
		"ALBUM":                     "Y",
		"TITLE":                     "One",
		"TRACK":                     "1",
		"DISC":                      "1",
		"YEAR":                      "2003",
		"DATE":                      "2003-06-10",
		"MUSICBRAINZ_ALBUMID":       "mbid-album",
		shared.MarkerField:          "test",
	}
	for field, want := range checks {
		if got := shared.FirstTag(first, field); got != want {
			t.Errorf("Field %s: expected %q, got %q", field, want, got)
		}
	}
	for _, field := range []string{"LYRICS", "BPM"} {
		if _, ok := first[field]; ok {
			t.Errorf("Field %s should be absent when enrichment is disabled", field)
		}
	}

	second := store.writes[paths[1]]
	if got := shared.FirstTag(second, "TRACK"); got != "2" {
		t.Errorf("Second track: expected TRACK 2, got %q", got)
	}
}

func TestRunSkipsUnmatchedFile(t *testing.T) {
	root := t.TempDir()
	store := newMemoryTagStore()
	writeTrackFiles(t, store, root, []map[string][]string{
		{"ARTIST": {"X"}, "ALBUM": {"Y"}, "TITLE": {"One"}, "TRACK": {"1"}},
		{"ARTIST": {"X"}, "ALBUM": {"Y"}, "TITLE": {"Stranger"}, "TRACK": {"9"}},
	})

	tg := newTestTagger(store, testRecord())
	stats, err := tg.Run(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Updated != 1 || stats.Skipped != 1 {
		t.Errorf("Expected 1 updated, 1 skipped, got %d/%d", stats.Updated, stats.Skipped)
	}
}

func TestRunSkipsUnresolvedGroup(t *testing.T) {
	root := t.TempDir()
	store := newMemoryTagStore()
	paths := writeTrackFiles(t, store, root, []map[string][]string{
		{"ARTIST": {"X"}, "ALBUM": {"Y"}, "TITLE": {"One"}, "TRACK": {"1"}},
	})

	tg := newTestTagger(store, nil)
	stats, err := tg.Run(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.GroupsSkipped != 1 || stats.Updated != 0 {
		t.Errorf("Expected group skipped without updates, got %+v", stats)
	}
	if _, ok := store.writes[paths[0]]; ok {
		t.Error("Unresolved group must not be written")
	}
}

func TestRunForceReprocessesMarkedFiles(t *testing.T) {
	root := t.TempDir()
	store := newMemoryTagStore()
	paths := writeTrackFiles(t, store, root, []map[string][]string{
		{"ARTIST": {"X"}, "ALBUM": {"Y"}, "TITLE": {"One"}, "TRACK": {"1"}, shared.MarkerField: {"old"}},
	})

	tg := newTestTagger(store, testRecord())
	stats, err := tg.Run(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Updated != 0 {
		t.Errorf("Marked file must be skipped without --force, got %d updated", stats.Updated)
	}

	stats, err = tg.Run(context.Background(), root, Options{Force: true})
	if err != nil {
		t.Fatalf("Run with force failed: %v", err)
	}
	if stats.Updated != 1 {
		t.Errorf("Expected forced reprocess to update 1 file, got %d", stats.Updated)
	}
	if got := shared.FirstTag(store.writes[paths[0]], shared.MarkerField); got != "test" {
		t.Errorf("Expected marker refreshed to %q, got %q", "test", got)
	}
}
