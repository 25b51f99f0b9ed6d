package resolver

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"tagsmith/internal/shared"
)

// fakeTagStore serves a fixed duration and records writes.
type fakeTagStore struct {
	duration    float64
	durationErr error
}

func (f *fakeTagStore) ReadTags(path string) (map[string][]string, error) { return nil, nil }
func (f *fakeTagStore) WriteTags(path string, fields map[string][]string) error {
	return nil
}
func (f *fakeTagStore) Duration(path string) (float64, error) {
	return f.duration, f.durationErr
}

// fakeLyrics serves a canned lyrics payload.
type fakeLyrics struct {
	lyrics *shared.Lyrics
	err    error
	calls  int
}

func (f *fakeLyrics) Get(ctx context.Context, title, artist, album string, duration float64) (*shared.Lyrics, error) {
	f.calls++
	return f.lyrics, f.err
}

// fakeDecoder hands out an in-memory PCM stream.
type fakeDecoder struct{}

func (fakeDecoder) Decode(ctx context.Context, path string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("pcm")), nil
}

// fakeEstimator returns a fixed BPM.
type fakeEstimator struct {
	bpm float64
	err error
}

func (f *fakeEstimator) Estimate(ctx context.Context, pcm io.Reader) (float64, error) {
	return f.bpm, f.err
}

func fieldsRecord() (*shared.AlbumRecord, *shared.TrackRecord) {
	record := &shared.AlbumRecord{
		IDs:     shared.RecordIDs{Album: "album-mbid", Artist: "artist-mbid"},
		Artists: []string{"Queen"},
		Date:    "1975-11-21",
		Album:   "A Night at the Opera",
		Tracks: []shared.TrackRecord{
			{Disc: 1, Artists: []string{"Queen"}, Title: "Bohemian Rhapsody", Position: 11},
		},
	}
	return record, &record.Tracks[0]
}

func plainResolver(options Options, lyrics *fakeLyrics, estimator *fakeEstimator) *FieldResolver {
	if lyrics == nil {
		lyrics = &fakeLyrics{}
	}
	if estimator == nil {
		estimator = &fakeEstimator{}
	}
	return NewFieldResolver(&fakeTagStore{duration: 355}, lyrics, fakeDecoder{}, estimator, options, "1.0.0")
}

func TestResolveStaticFields(t *testing.T) {
	record, match := fieldsRecord()

	fields, err := plainResolver(Options{}, nil, nil).Resolve(context.Background(), record, match, "test.flac")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := map[string]string{
		"DISC":                      "1",
		"ALBUM":                     "A Night at the Opera",
		"TRACK":                     "11",
		"TITLE":                     "Bohemian Rhapsody",
		"ARTIST":                    "Queen",
		"ALBUMARTIST":               "Queen",
		"MUSICBRAINZ_ALBUMID":       "album-mbid",
		"MUSICBRAINZ_ALBUMARTISTID": "artist-mbid",
		"YEAR":                      "1975",
		"DATE":                      "1975-11-21",
		shared.MarkerField:          "1.0.0",
	}
	for name, value := range want {
		got, ok := fields[name]
		if !ok {
			t.Errorf("Missing field %s", name)
			continue
		}
		if got[0] != value {
			t.Errorf("Field %s: expected %q, got %q", name, value, got[0])
		}
	}

	if _, ok := fields["LYRICS"]; ok {
		t.Error("LYRICS must be absent when the option is off")
	}
	if _, ok := fields["BPM"]; ok {
		t.Error("BPM must be absent when the option is off")
	}
}

func TestResolveNoDateOmitsYearFields(t *testing.T) {
	record, match := fieldsRecord()
	record.Date = ""

	fields, err := plainResolver(Options{}, nil, nil).Resolve(context.Background(), record, match, "test.flac")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, ok := fields["YEAR"]; ok {
		t.Error("YEAR must be absent without a release date")
	}
	if _, ok := fields["DATE"]; ok {
		t.Error("DATE must be absent without a release date")
	}
}

func TestResolveLyricsPrefersSynced(t *testing.T) {
	record, match := fieldsRecord()
	lyrics := &fakeLyrics{lyrics: &shared.Lyrics{Synced: "[00:01.00] line", Plain: "line"}}

	fields, err := plainResolver(Options{Lyrics: true}, lyrics, nil).Resolve(context.Background(), record, match, "test.flac")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got := fields["LYRICS"]; len(got) != 1 || got[0] != "[00:01.00] line" {
		t.Errorf("Expected synced lyrics, got %v", got)
	}
}

func TestResolveLyricsFallsBackToPlain(t *testing.T) {
	record, match := fieldsRecord()
	lyrics := &fakeLyrics{lyrics: &shared.Lyrics{Plain: "line"}}

	fields, err := plainResolver(Options{Lyrics: true}, lyrics, nil).Resolve(context.Background(), record, match, "test.flac")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got := fields["LYRICS"]; len(got) != 1 || got[0] != "line" {
		t.Errorf("Expected plain lyrics, got %v", got)
	}
}

func TestResolveNoLyricsOmitsField(t *testing.T) {
	record, match := fieldsRecord()
	lyrics := &fakeLyrics{lyrics: nil}

	fields, err := plainResolver(Options{Lyrics: true}, lyrics, nil).Resolve(context.Background(), record, match, "test.flac")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, ok := fields["LYRICS"]; ok {
		t.Error("LYRICS must be omitted when the provider has nothing")
	}
	if lyrics.calls != 1 {
		t.Errorf("Expected 1 provider call, got %d", lyrics.calls)
	}
}

func TestResolveLyricsErrorFailsAssembly(t *testing.T) {
	record, match := fieldsRecord()
	lyrics := &fakeLyrics{err: errors.New("connection refused")}

	if _, err := plainResolver(Options{Lyrics: true}, lyrics, nil).Resolve(context.Background(), record, match, "test.flac"); err == nil {
		t.Error("Expected enrichment failure to abort field assembly")
	}
}

func TestResolveBPMRounded(t *testing.T) {
	record, match := fieldsRecord()
	estimator := &fakeEstimator{bpm: 120.6}

	fields, err := plainResolver(Options{BPM: true}, nil, estimator).Resolve(context.Background(), record, match, "test.flac")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got := fields["BPM"]; len(got) != 1 || got[0] != "121" {
		t.Errorf("Expected BPM 121, got %v", got)
	}
}

func TestResolveBPMErrorFailsAssembly(t *testing.T) {
	record, match := fieldsRecord()
	estimator := &fakeEstimator{err: errors.New("analyzer not found")}

	if _, err := plainResolver(Options{BPM: true}, nil, estimator).Resolve(context.Background(), record, match, "test.flac"); err == nil {
		t.Error("Expected estimator failure to abort field assembly")
	}
}
