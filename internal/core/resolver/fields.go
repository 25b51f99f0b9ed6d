package resolver

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"tagsmith/internal/interfaces"
	"tagsmith/internal/shared"
)

// fieldIndex is the static mapping from field name to record values.
var fieldIndex = map[string]func(r *shared.AlbumRecord, m *shared.TrackRecord) []string{
	"DISC":                      func(r *shared.AlbumRecord, m *shared.TrackRecord) []string { return []string{strconv.Itoa(m.Disc)} },
	"ALBUM":                     func(r *shared.AlbumRecord, m *shared.TrackRecord) []string { return []string{r.Album} },
	"TRACK":                     func(r *shared.AlbumRecord, m *shared.TrackRecord) []string { return []string{strconv.Itoa(m.Position)} },
	"TITLE":                     func(r *shared.AlbumRecord, m *shared.TrackRecord) []string { return []string{m.Title} },
	"ARTIST":                    func(r *shared.AlbumRecord, m *shared.TrackRecord) []string { return m.Artists },
	"ALBUMARTIST":               func(r *shared.AlbumRecord, m *shared.TrackRecord) []string { return r.Artists },
	"MUSICBRAINZ_ALBUMID":       func(r *shared.AlbumRecord, m *shared.TrackRecord) []string { return []string{r.IDs.Album} },
	"MUSICBRAINZ_ALBUMARTISTID": func(r *shared.AlbumRecord, m *shared.TrackRecord) []string { return []string{r.IDs.Artist} },
}

// Options toggles the optional enrichments.
type Options struct {
	Lyrics bool
	BPM    bool
}

// FieldResolver maps a matched (record, track) pair to the final tag set.
type FieldResolver struct {
	tags      interfaces.TagStore
	lyrics    interfaces.LyricsProvider
	decoder   interfaces.Decoder
	estimator interfaces.Estimator
	options   Options
	version   string
}

// NewFieldResolver creates a field resolver. The lyrics provider, decoder
// and estimator are only consulted when the corresponding option is on.
func NewFieldResolver(tags interfaces.TagStore, lyrics interfaces.LyricsProvider, decoder interfaces.Decoder, estimator interfaces.Estimator, options Options, version string) *FieldResolver {
	return &FieldResolver{
		tags:      tags,
		lyrics:    lyrics,
		decoder:   decoder,
		estimator: estimator,
		options:   options,
		version:   version,
	}
}

// Resolve produces the complete field set for one file. An error means the
// set could not be fully assembled (a failed enrichment included) and the
// file must be skipped: tags are only ever written all-or-nothing.
func (fr *FieldResolver) Resolve(ctx context.Context, record *shared.AlbumRecord, match *shared.TrackRecord, path string) (map[string][]string, error) {
	fields := make(map[string][]string, len(fieldIndex)+5)
	for name, value := range fieldIndex {
		fields[name] = value(record, match)
	}

	if record.Date != "" {
		fields["YEAR"] = []string{strings.SplitN(record.Date, "-", 2)[0]}
		fields["DATE"] = []string{record.Date}
	}

	if fr.options.Lyrics {
		if err := fr.addLyrics(ctx, fields, record, match, path); err != nil {
			return nil, err
		}
	}

	if fr.options.BPM {
		if err := fr.addBPM(ctx, fields, path); err != nil {
			return nil, err
		}
	}

	// Marker so re-runs can tell the file was already processed
	fields[shared.MarkerField] = []string{fr.version}

	return fields, nil
}

func (fr *FieldResolver) addLyrics(ctx context.Context, fields map[string][]string, record *shared.AlbumRecord, match *shared.TrackRecord, path string) error {
	duration, err := fr.tags.Duration(path)
	if err != nil {
		return fmt.Errorf("failed to read duration: %w", err)
	}

	artist := ""
	if len(record.Artists) > 0 {
		artist = record.Artists[0]
	}

	lyrics, err := fr.lyrics.Get(ctx, match.Title, artist, record.Album, duration)
	if err != nil {
		return fmt.Errorf("failed to fetch lyrics: %w", err)
	}
	if text := lyrics.Text(); text != "" {
		fields["LYRICS"] = []string{text}
	}
	return nil
}

func (fr *FieldResolver) addBPM(ctx context.Context, fields map[string][]string, path string) error {
	pcm, err := fr.decoder.Decode(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to decode audio: %w", err)
	}
	defer pcm.Close()

	bpm, err := fr.estimator.Estimate(ctx, pcm)
	if err != nil {
		return fmt.Errorf("failed to estimate BPM: %w", err)
	}

	fields["BPM"] = []string{strconv.Itoa(int(math.Round(bpm)))}
	return nil
}
