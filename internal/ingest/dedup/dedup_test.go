package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

const family = patent.FieldFamilyID

func rec(fam, date, doc string) patent.Record {
	return patent.NewRecord().
		With(family, fam).
		With(patent.FieldPublicationDate, date).
		With(patent.FieldDocNumber, doc)
}

func docs(rs []patent.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Get(patent.FieldDocNumber)
	}
	return out
}

func run(t *testing.T, in []patent.Record, opts Options) Result {
	t.Helper()
	res, err := Deduplicate(in, opts)
	require.NoError(t, err)
	return res
}

func TestDeduplicate_LatestDateWins(t *testing.T) {
	in := []patent.Record{
		rec("F1", "20190101", "100"),
		rec("F1", "20200101", "50"),
		rec("F2", "20180101", "7"),
	}

	res := run(t, in, DefaultOptions(family))

	assert.Equal(t, []string{"50", "7"}, docs(res.Records))
	assert.Equal(t, 1, res.Dropped)
}

func TestDeduplicate_DocNumberBreaksDateTie(t *testing.T) {
	in := []patent.Record{
		rec("F1", "20200101", "99"),
		rec("F1", "20200101", "200"),
		rec("F1", "20200101", "150"),
	}

	res := run(t, in, DefaultOptions(family))

	assert.Equal(t, []string{"200"}, docs(res.Records), "doc numbers compare numerically")
}

func TestDeduplicate_SentinelRanksLowest(t *testing.T) {
	in := []patent.Record{
		rec("F1", patent.Sentinel, "999"),
		rec("F1", "19900101", "1"),
		rec("F2", "20200101", patent.Sentinel),
		rec("F2", "20200101", "3"),
	}

	res := run(t, in, DefaultOptions(family))

	assert.Equal(t, []string{"1", "3"}, docs(res.Records))
}

func TestDeduplicate_FullTieKeepsEarliest(t *testing.T) {
	first := rec("F1", "20200101", "5").With(patent.FieldKind, "A1")
	second := rec("F1", "20200101", "5").With(patent.FieldKind, "B1")

	res := run(t, []patent.Record{first, second}, DefaultOptions(family))

	require.Len(t, res.Records, 1)
	assert.Equal(t, "A1", res.Records[0].Get(patent.FieldKind))
}

func TestDeduplicate_SurvivorsKeepInputOrder(t *testing.T) {
	in := []patent.Record{
		rec("F3", "20200101", "30"),
		rec("F1", "20190101", "10"),
		rec("F2", "20200101", "20"),
		rec("F1", "20210101", "11"),
		rec("F3", "20190101", "31"),
	}

	res := run(t, in, DefaultOptions(family))

	assert.Equal(t, []string{"30", "20", "11"}, docs(res.Records))
}

func TestDeduplicate_Idempotent(t *testing.T) {
	in := []patent.Record{
		rec("F1", "20190101", "10"),
		rec("F1", "20210101", "11"),
		rec(patent.Sentinel, "20200101", "12"),
		rec(patent.Sentinel, "20200101", "13"),
		rec("F2", patent.Sentinel, "14"),
	}
	opts := DefaultOptions(family)

	once := run(t, in, opts)
	twice := run(t, once.Records, opts)

	assert.Equal(t, once.Records, twice.Records)
	assert.Zero(t, twice.Dropped)
}

func TestDeduplicate_SentinelKeysCollapseByDefault(t *testing.T) {
	in := []patent.Record{
		rec(patent.Sentinel, "20200101", "1"),
		rec(patent.Sentinel, "20200101", "2"),
	}

	res := run(t, in, DefaultOptions(family))
	assert.Equal(t, []string{"2"}, docs(res.Records))

	opts := DefaultOptions(family)
	opts.PreserveUnkeyed = true
	res = run(t, in, opts)
	assert.Equal(t, []string{"1", "2"}, docs(res.Records))
	assert.Zero(t, res.Dropped)
}

func TestDeduplicate_InputUntouched(t *testing.T) {
	in := []patent.Record{rec("F1", "1", "1"), rec("F1", "2", "2")}
	_ = run(t, in, DefaultOptions(family))
	assert.Len(t, in, 2)
	assert.Equal(t, "1", in[0].Get(patent.FieldDocNumber))
}

func TestDeduplicate_Empty(t *testing.T) {
	res := run(t, nil, DefaultOptions(family))
	assert.Empty(t, res.Records)
	assert.Zero(t, res.Dropped)
}

func TestDeduplicate_InvalidOptions(t *testing.T) {
	_, err := Deduplicate(nil, Options{})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = Deduplicate(nil, Options{Key: family})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestDeduplicate_RejectsUnknownFields(t *testing.T) {
	in := []patent.Record{
		rec("F1", "20190101", "1"),
		rec("F2", "20190101", "2"),
		rec("F3", "20190101", "3"),
		rec("F4", "20190101", "4"),
	}

	for name, opts := range map[string]Options{
		"key":        DefaultOptions("family_id"),
		"date":       {Key: family, DateField: "pub_date", DocNumberField: patent.FieldDocNumber},
		"doc number": {Key: family, DateField: patent.FieldPublicationDate, DocNumberField: "docnumber"},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := Deduplicate(in, opts)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
			assert.Empty(t, res.Records)
		})
	}
}

func TestGroups(t *testing.T) {
	g := Groups([]patent.Record{rec("F1", "", ""), rec("F1", "", ""), rec(patent.Sentinel, "", "")}, family)
	assert.Equal(t, map[string]int{"F1": 2, patent.Sentinel: 1}, g)
}

func TestOptions_String(t *testing.T) {
	assert.Equal(t, "key=family-id order=publication_date desc, doc-number desc", DefaultOptions(family).String())
}

//Personal.AI order the ending
