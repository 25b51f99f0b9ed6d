package shared

import "time"

const (
	// MarkerField is the vorbis comment written to every processed file.
	// Its presence tells the scanner the file was already tagged.
	MarkerField = "TAGSMITH"

	RequestTimeout    = 30 * time.Second
	UserAgent         = "tagsmith/1.0"
	DefaultMaxRetries = 3
)

// RecordIDs holds the canonical identifiers of a release.
type RecordIDs struct {
	Album  string `json:"album"`
	Artist string `json:"artist"`
}

// TrackRecord is one track within an AlbumRecord. Position is the global
// track number across all discs of the release.
type TrackRecord struct {
	Disc     int      `json:"disc"`
	Artists  []string `json:"artist"`
	Title    string   `json:"title"`
	Position int      `json:"position"`
}

// AlbumRecord is the canonical metadata for one release. It is immutable
// once fetched; the cache and any in-flight resolution share it.
type AlbumRecord struct {
	IDs     RecordIDs     `json:"ids"`
	Artists []string      `json:"artist"`
	Date    string        `json:"date,omitempty"`
	Album   string        `json:"album"`
	Tracks  []TrackRecord `json:"tracks"`
}

// LocalTrack is one file on disk awaiting resolution. Title and Position
// are the raw tag values read at scan time; either may be empty.
type LocalTrack struct {
	Title    string
	Position string
	Path     string
}

// AlbumGroup is a set of local files sharing the same (artist, album) tag
// pair, as read from the files themselves.
type AlbumGroup struct {
	Artist string
	Album  string
	Tracks []LocalTrack
}

// Lyrics is the payload returned by the lyrics provider.
type Lyrics struct {
	Synced string `json:"syncedLyrics"`
	Plain  string `json:"plainLyrics"`
}

// Text returns the preferred lyric payload: time-synchronized if present,
// plain otherwise. Empty string means no usable lyrics.
func (l *Lyrics) Text() string {
	if l == nil {
		return ""
	}
	if l.Synced != "" {
		return l.Synced
	}
	return l.Plain
}

// RunStats summarizes one tagging run.
type RunStats struct {
	Updated       int
	Skipped       int
	Groups        int
	GroupsSkipped int
}
