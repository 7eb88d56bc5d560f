package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// ClassLevel is the IPC hierarchy depth, expressed as the number of leading
// symbols kept: section "C", class "C07", subclass "C07D".
type ClassLevel int

const (
	LevelSection  ClassLevel = 1
	LevelClass    ClassLevel = 3
	LevelSubclass ClassLevel = 4
)

// ParseClassLevel accepts "section", "class" or "subclass".
func ParseClassLevel(s string) (ClassLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "section":
		return LevelSection, nil
	case "class", "":
		return LevelClass, nil
	case "subclass":
		return LevelSubclass, nil
	default:
		return 0, errors.InvalidParam(fmt.Sprintf("unknown classification level %q", s))
	}
}

func (l ClassLevel) String() string {
	switch l {
	case LevelSection:
		return "section"
	case LevelClass:
		return "class"
	case LevelSubclass:
		return "subclass"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Truncate reduces an IPC code to the level, ignoring spaces.  It returns
// "" when the code is unavailable or too short.
func (l ClassLevel) Truncate(code string) string {
	if !patent.IsAvailable(code) {
		return ""
	}
	compact := strings.ToUpper(strings.Join(strings.Fields(code), ""))
	if len(compact) < int(l) {
		return ""
	}
	return compact[:l]
}

// ClassCount is the number of records of one year filed under one
// classification, and its share of that year's classified records.
type ClassCount struct {
	Year           string
	Classification string
	Count          int
	Share          float64
}

// ClassificationStats aggregates the primary classification per year.
type ClassificationStats struct {
	Level  ClassLevel
	Counts []ClassCount // sorted by year, then classification
	Years  []string
}

// ClassificationCounts counts records per (year, classification) using the
// first classification slot.  Records without a usable classification or
// year are left out.
func ClassificationCounts(d *Dataset, level ClassLevel) *ClassificationStats {
	field := patent.ClassificationColumn(1)
	type key struct{ year, class string }

	counts := make(map[key]int)
	totals := make(map[string]int)
	for _, rec := range d.Records {
		year := rec.Get(patent.FieldYear)
		class := level.Truncate(rec.Get(field))
		if !patent.IsAvailable(year) || class == "" {
			continue
		}
		counts[key{year, class}]++
		totals[year]++
	}

	st := &ClassificationStats{Level: level}
	for k, n := range counts {
		st.Counts = append(st.Counts, ClassCount{
			Year:           k.year,
			Classification: k.class,
			Count:          n,
			Share:          float64(n) / float64(totals[k.year]),
		})
	}
	sort.Slice(st.Counts, func(i, j int) bool {
		a, b := st.Counts[i], st.Counts[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Classification < b.Classification
	})
	for y := range totals {
		st.Years = append(st.Years, y)
	}
	sort.Strings(st.Years)
	return st
}

// Totals returns the overall count per classification.
func (s *ClassificationStats) Totals() map[string]int {
	out := make(map[string]int)
	for _, c := range s.Counts {
		out[c.Classification] += c.Count
	}
	return out
}

// Top returns the n classifications with the highest overall count, ties
// broken by name.  n <= 0 returns all of them.
func (s *ClassificationStats) Top(n int) []string {
	totals := s.Totals()
	out := make([]string, 0, len(totals))
	for c := range totals {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if totals[out[i]] != totals[out[j]] {
			return totals[out[i]] > totals[out[j]]
		}
		return out[i] < out[j]
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Series returns one classification's counts for every year, with zero
// entries for years where it does not appear.
func (s *ClassificationStats) Series(class string) []ClassCount {
	byYear := make(map[string]ClassCount)
	for _, c := range s.Counts {
		if c.Classification == class {
			byYear[c.Year] = c
		}
	}
	out := make([]ClassCount, 0, len(s.Years))
	for _, y := range s.Years {
		c, ok := byYear[y]
		if !ok {
			c = ClassCount{Year: y, Classification: class}
		}
		out = append(out, c)
	}
	return out
}

//Personal.AI order the ending
