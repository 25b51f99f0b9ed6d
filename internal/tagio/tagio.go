// Package tagio reads and writes FLAC vorbis comments.
package tagio

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// ErrUnsupportedFile marks files that cannot be parsed as a FLAC container.
var ErrUnsupportedFile = errors.New("corrupt or unsupported audio file")

// Store reads and writes tags on FLAC files.
type Store struct{}

// NewStore creates a FLAC tag store.
func NewStore() *Store {
	return &Store{}
}

// ReadTags returns the file's vorbis comments as a field → values mapping.
// Field names are upper-cased; vorbis field names are case-insensitive.
func (s *Store) ReadTags(path string) (map[string][]string, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}

	tags := make(map[string][]string)
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		comment, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
		}
		for _, entry := range comment.Comments {
			field, value, found := strings.Cut(entry, "=")
			if !found {
				continue
			}
			field = strings.ToUpper(field)
			tags[field] = append(tags[field], value)
		}
	}
	return tags, nil
}

// WriteTags replaces the file's vorbis comment block with the given fields.
// All other metadata blocks (stream info, pictures, cue sheets) are kept.
// The file is saved once, after the full block is assembled.
func (s *Store) WriteTags(path string, fields map[string][]string) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}

	var kept []*flac.MetaDataBlock
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			kept = append(kept, block)
		}
	}
	f.Meta = kept

	comment := flacvorbis.New()

	// Deterministic field order
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range fields[name] {
			if value == "" {
				continue
			}
			comment.Add(name, value)
		}
	}

	block := comment.Marshal()
	f.Meta = append(f.Meta, &block)

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save tags: %w", err)
	}
	return nil
}

// Duration returns the audio length in seconds, derived from the stream info
// block.
func (s *Store) Duration(path string) (float64, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}

	info, err := f.GetStreamInfo()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}
	if info.SampleRate == 0 {
		return 0, fmt.Errorf("%w: zero sample rate", ErrUnsupportedFile)
	}
	return float64(info.SampleCount) / float64(info.SampleRate), nil
}
