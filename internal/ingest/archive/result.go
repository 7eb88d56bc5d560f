package archive

import (
	"fmt"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// Skip records one entry or container dropped from a run.  Entry is empty
// when the container itself could not be used.  Nested containers are
// labelled "outer.zip!inner.zip".
type Skip struct {
	Archive string
	Entry   string
	Depth   int
	Err     error
}

// Code classifies the skip.
func (s Skip) Code() errors.ErrorCode {
	return errors.GetCode(s.Err)
}

func (s Skip) String() string {
	if s.Entry == "" {
		return fmt.Sprintf("%s: %v", s.Archive, s.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", s.Archive, s.Entry, s.Err)
}

// Stats counts what happened to the entries of one container tree.
type Stats struct {
	Entries   int // files seen, directories excluded
	Extracted int
	Skipped   int
	Ignored   int // TOC and unrelated files
	Nested    int // nested containers opened
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Entries += o.Entries
	s.Extracted += o.Extracted
	s.Skipped += o.Skipped
	s.Ignored += o.Ignored
	s.Nested += o.Nested
}

// Result is the outcome of decoding one container tree.  Records keep entry
// discovery order, depth-first through nested containers.
type Result struct {
	Records []patent.Record
	Skips   []Skip
	Stats   Stats
}

// Unreadable reports whether the outer container itself was rejected.
func (r Result) Unreadable() bool {
	for _, s := range r.Skips {
		if s.Depth == 0 && s.Entry == "" {
			return true
		}
	}
	return false
}

// Empty reports whether the result contributed no records.
func (r Result) Empty() bool { return len(r.Records) == 0 }

//Personal.AI order the ending
