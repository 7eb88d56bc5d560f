package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Ingest/internal/dataset"
)

type statsOptions struct {
	in    string
	level string
	top   int
}

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	opts := &statsOptions{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count primary classifications per year in a dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := GetCLIContext(cmd); err != nil {
				return err
			}
			return runStats(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.in, "in", "", "input dataset (.parquet or .csv)")
	f.StringVar(&opts.level, "level", "class", "classification level: section, class or subclass")
	f.IntVar(&opts.top, "top", 5, "number of classifications to report; 0 for all")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// statsReport is a year by classification matrix of counts and shares.
type statsReport struct {
	Level  string              `json:"level"`
	Top    []string            `json:"top"`
	Years  []string            `json:"years"`
	Totals map[string]int      `json:"totals"`
	Series map[string][]yearly `json:"series"`
}

type yearly struct {
	Year  string  `json:"year"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

func newStatsReport(st *dataset.ClassificationStats, top int) *statsReport {
	r := &statsReport{
		Level:  st.Level.String(),
		Top:    st.Top(top),
		Years:  st.Years,
		Totals: make(map[string]int),
		Series: make(map[string][]yearly),
	}
	totals := st.Totals()
	for _, class := range r.Top {
		r.Totals[class] = totals[class]
		for _, c := range st.Series(class) {
			r.Series[class] = append(r.Series[class], yearly{Year: c.Year, Count: c.Count, Share: c.Share})
		}
	}
	return r
}

func (r *statsReport) TableHeaders() []string {
	return append([]string{"Year"}, r.Top...)
}

func (r *statsReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Years)+1)
	for i, y := range r.Years {
		row := []string{y}
		for _, class := range r.Top {
			c := r.Series[class][i]
			row = append(row, fmt.Sprintf("%d (%.1f%%)", c.Count, 100*c.Share))
		}
		rows = append(rows, row)
	}
	total := []string{"total"}
	for _, class := range r.Top {
		total = append(total, strconv.Itoa(r.Totals[class]))
	}
	return append(rows, total)
}

func (r *statsReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "top %d classifications at %s level:", len(r.Top), r.Level)
	for _, class := range r.Top {
		fmt.Fprintf(&b, " %s=%d", class, r.Totals[class])
	}
	return b.String()
}

func runStats(cmd *cobra.Command, opts *statsOptions) error {
	level, err := dataset.ParseClassLevel(opts.level)
	if err != nil {
		return err
	}
	ds, err := dataset.ReadFile(afero.NewOsFs(), opts.in)
	if err != nil {
		return err
	}
	st := dataset.ClassificationCounts(ds, level)
	return PrintResult(cmd, newStatsReport(st, opts.top))
}

//Personal.AI order the ending
