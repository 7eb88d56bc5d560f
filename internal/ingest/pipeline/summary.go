package pipeline

import (
	"time"

	"github.com/turtacn/KeyIP-Ingest/internal/ingest/archive"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// Summary describes one run.
type Summary struct {
	Root           string
	Years          []string
	Archives       int
	ArchivesFailed int
	Stats          archive.Stats
	Records        int
	Skips          []archive.Skip
	Duration       time.Duration
}

func (s *Summary) add(r ArchiveResult) {
	s.Archives++
	if r.Failed {
		s.ArchivesFailed++
	}
	s.Stats.Add(r.Result.Stats)
	s.Records += len(r.Result.Records)
	s.Skips = append(s.Skips, r.Result.Skips...)
}

// addWalkFailure records a path that was never decoded.
func (s *Summary) addWalkFailure(skip archive.Skip) {
	s.Stats.Skipped++
	s.Skips = append(s.Skips, skip)
}

// SkipsByCode counts skips per error code.
func (s *Summary) SkipsByCode() map[errors.ErrorCode]int {
	out := make(map[errors.ErrorCode]int)
	for _, sk := range s.Skips {
		out[sk.Code()]++
	}
	return out
}

//Personal.AI order the ending
