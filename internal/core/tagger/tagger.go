// Package tagger drives a full tagging run: scan, resolve, match, and write.
package tagger

import (
	"context"
	"fmt"

	"github.com/cheggaaa/pb/v3"

	"tagsmith/internal/core/resolver"
	"tagsmith/internal/core/scanner"
	"tagsmith/internal/interfaces"
	"tagsmith/internal/shared"
)

// Options control a single tagging run.
type Options struct {
	Lyrics bool
	BPM    bool
	Force  bool
}

// Tagger ties the scanner, resolver, and tag store into one pipeline.
type Tagger struct {
	tags      interfaces.TagStore
	albums    *resolver.AlbumResolver
	lyrics    interfaces.LyricsProvider
	decoder   interfaces.Decoder
	estimator interfaces.Estimator
	warnings  *shared.WarningCollector
	version   string
}

// New creates a Tagger with all its collaborators.
func New(tags interfaces.TagStore, albums *resolver.AlbumResolver, lyrics interfaces.LyricsProvider, decoder interfaces.Decoder, estimator interfaces.Estimator, warnings *shared.WarningCollector, version string) *Tagger {
	return &Tagger{
		tags:      tags,
		albums:    albums,
		lyrics:    lyrics,
		decoder:   decoder,
		estimator: estimator,
		warnings:  warnings,
		version:   version,
	}
}

// Run processes every FLAC file under root. Files that cannot be fully
// resolved are skipped and reported; the rest get their tags rewritten.
func (t *Tagger) Run(ctx context.Context, root string, options Options) (*shared.RunStats, error) {
	sc := scanner.New(t.tags, t.warnings)
	groups, err := sc.Scan(root, options.Force)
	if err != nil {
		return nil, err
	}

	fields := resolver.NewFieldResolver(t.tags, t.lyrics, t.decoder, t.estimator, resolver.Options{
		Lyrics: options.Lyrics,
		BPM:    options.BPM,
	}, t.version)

	stats := &shared.RunStats{}
	for _, group := range groups {
		shared.ColorInfo.Printf("\n> %s by %s (%d tracks)\n", group.Album, group.Artist, len(group.Tracks))

		record, err := t.albums.Resolve(ctx, group)
		if err != nil {
			t.warnings.AddFetchWarning(group.Artist, group.Album, err.Error())
			shared.ColorWarning.Printf("⚠️ Lookup failed for %s - %s: %v\n", group.Artist, group.Album, err)
			stats.GroupsSkipped++
			stats.Skipped += len(group.Tracks)
			continue
		}
		if record == nil {
			t.warnings.AddNotFoundWarning(group.Artist, group.Album)
			shared.ColorWarning.Printf("⚠️ No album found for %s - %s\n", group.Artist, group.Album)
			stats.GroupsSkipped++
			stats.Skipped += len(group.Tracks)
			continue
		}
		stats.Groups++

		resolver.SortCandidates(group.Tracks)
		t.processGroup(ctx, record, group.Tracks, fields, stats)
	}

	shared.ColorSuccess.Printf("\n✅ Updated %d file(s), skipped %d\n", stats.Updated, stats.Skipped)
	t.warnings.PrintSummary()
	return stats, nil
}

func (t *Tagger) processGroup(ctx context.Context, record *shared.AlbumRecord, tracks []shared.LocalTrack, fields *resolver.FieldResolver, stats *shared.RunStats) {
	var bar *pb.ProgressBar
	if shared.IsTTY() {
		bar = pb.New(len(tracks))
		bar.SetTemplateString(`{{ string . "prefix" }} {{ bar . }} {{ counters . }}`)
		bar.Set("prefix", fmt.Sprintf("Tagging %-40s:", shared.TruncateString(record.Album, 40)))
		bar.Start()
	}

	for _, track := range tracks {
		if bar != nil {
			bar.Increment()
		}
		if err := t.processTrack(ctx, record, track, fields); err != nil {
			stats.Skipped++
			continue
		}
		stats.Updated++
	}

	if bar != nil {
		bar.Finish()
	}
}

// processTrack matches one file against the album record and rewrites its
// tags. Any failure skips the file without touching it.
func (t *Tagger) processTrack(ctx context.Context, record *shared.AlbumRecord, track shared.LocalTrack, fields *resolver.FieldResolver) error {
	if !resolver.HasMatchData(track) {
		t.warnings.AddNoDataWarning(track.Path)
		return fmt.Errorf("no title or track number")
	}

	match := resolver.Match(record, track)
	if match == nil {
		t.warnings.AddNoMatchWarning(track.Path)
		return fmt.Errorf("no matching track record")
	}

	resolved, err := fields.Resolve(ctx, record, match, track.Path)
	if err != nil {
		t.warnings.AddEnrichmentWarning(track.Path, err.Error())
		return err
	}

	if err := t.tags.WriteTags(track.Path, resolved); err != nil {
		t.warnings.AddWriteWarning(track.Path, err.Error())
		return err
	}
	return nil
}
