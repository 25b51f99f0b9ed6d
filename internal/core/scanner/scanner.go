// Package scanner walks a directory tree and partitions audio files into
// album candidate groups keyed by their existing (artist, album) tags.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tagsmith/internal/shared"
)

// TagReader is the subset of the tag store the scanner needs.
type TagReader interface {
	ReadTags(path string) (map[string][]string, error)
}

// Scanner builds album groups from a directory tree.
type Scanner struct {
	tags     TagReader
	warnings *shared.WarningCollector
}

// New creates a scanner reading tags through the given reader.
func New(tags TagReader, warnings *shared.WarningCollector) *Scanner {
	return &Scanner{tags: tags, warnings: warnings}
}

// Scan enumerates FLAC files under root and groups them by their exact
// (artist, album) tag pair, in first-seen order. Files that cannot be read
// or are missing a required tag are skipped with a warning; files already
// carrying the marker field are skipped silently unless force is set.
// An invalid root is fatal.
func (s *Scanner) Scan(root string, force bool) ([]*shared.AlbumGroup, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("invalid path %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path %s is not a directory", root)
	}

	var groups []*shared.AlbumGroup
	index := make(map[string]*shared.AlbumGroup)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Only the root itself is fatal; unreadable subtrees are skipped
			s.warnings.AddFileReadWarning(path, err.Error())
			shared.ColorWarning.Printf("⚠ Skipping unreadable path '%s': %v\n", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".flac") {
			return nil
		}

		tags, err := s.tags.ReadTags(path)
		if err != nil {
			s.warnings.AddFileReadWarning(path, err.Error())
			shared.ColorWarning.Printf("⚠ Failed loading file '%s'.\n", path)
			return nil
		}

		if _, processed := tags[shared.MarkerField]; processed && !force {
			return nil
		}

		// Album artist, falling back to the plain artist tag
		artist := shared.FirstTag(tags, "ALBUMARTIST")
		if artist == "" {
			artist = shared.FirstTag(tags, "ARTIST")
		}
		if artist == "" {
			s.warnings.AddMissingTagWarning(path, "ARTIST")
			shared.ColorWarning.Printf("⚠ Skipping '%s' due to missing ARTIST tag.\n", path)
			return nil
		}

		album := shared.FirstTag(tags, "ALBUM")
		if album == "" {
			s.warnings.AddMissingTagWarning(path, "ALBUM")
			shared.ColorWarning.Printf("⚠ Skipping '%s' due to missing ALBUM tag.\n", path)
			return nil
		}

		key := artist + "\x1f" + album
		group, ok := index[key]
		if !ok {
			group = &shared.AlbumGroup{Artist: artist, Album: album}
			index[key] = group
			groups = append(groups, group)
		}

		// Title and position ride along so matching never re-opens the file
		group.Tracks = append(group.Tracks, shared.LocalTrack{
			Title:    shared.FirstTag(tags, "TITLE"),
			Position: shared.FirstTag(tags, "TRACK"),
			Path:     path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return groups, nil
}
