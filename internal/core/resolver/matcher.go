package resolver

import (
	"sort"
	"strconv"

	"tagsmith/internal/shared"
)

// SortCandidates orders a group's files ascending by numeric track position.
// A missing or non-numeric position sorts as 0. The sort is stable so files
// with equal positions keep their scan order.
func SortCandidates(tracks []shared.LocalTrack) {
	sort.SliceStable(tracks, func(i, j int) bool {
		return numericPosition(tracks[i]) < numericPosition(tracks[j])
	})
}

func numericPosition(track shared.LocalTrack) int {
	n, err := strconv.Atoi(track.Position)
	if err != nil {
		return 0
	}
	return n
}

// HasMatchData reports whether a candidate carries anything to match on.
func HasMatchData(candidate shared.LocalTrack) bool {
	return candidate.Title != "" || candidate.Position != ""
}

// Match selects the first track record whose title equals the candidate's
// title or whose stringified position equals the candidate's raw position
// tag. Either predicate suffices; no score is computed and no second match
// is sought. Returns nil when no record satisfies either predicate.
//
// The linear scan with early return is deliberate: changing it to a scoring
// scheme would change observable outcomes on ambiguous data.
func Match(record *shared.AlbumRecord, candidate shared.LocalTrack) *shared.TrackRecord {
	for i := range record.Tracks {
		track := &record.Tracks[i]
		if candidate.Title != "" && track.Title == candidate.Title {
			return track
		}
		if candidate.Position != "" && strconv.Itoa(track.Position) == candidate.Position {
			return track
		}
	}
	return nil
}
