package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

func sample() *Dataset {
	d := New()
	d.Append(
		patent.NewRecord().
			With(patent.FieldDocNumber, "3000001").
			With(patent.FieldInventionTitle, `Procédé "amélioré", avec virgule`).
			With(patent.ClassificationColumn(1), "C07D 401/04").
			With(patent.FieldYear, "2019"),
		patent.NewRecord().
			With(patent.FieldDocNumber, "3000002").
			With(patent.FieldAbstract, "ligne 1\nligne 2").
			With(patent.FieldYear, "2020"),
	)
	return d
}

func TestDataset_RowsFollowColumns(t *testing.T) {
	d := sample()

	require.Equal(t, 2, d.Len())
	rows := d.Rows()
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], len(patent.Columns()))
	assert.Equal(t, "3000001", rows[0][0])
	assert.Equal(t, []string{"2019", "2020"}, d.Column(patent.FieldYear))
	assert.True(t, d.HasColumn(patent.FieldAbstract))
	assert.False(t, d.HasColumn("nope"))
}

func TestNewWithColumns_Copies(t *testing.T) {
	cols := []string{"a", "b"}
	d := NewWithColumns(cols)
	cols[0] = "z"
	assert.Equal(t, []string{"a", "b"}, d.Columns)
}

func TestCSV_RoundTrip(t *testing.T) {
	d := sample()
	var buf bytes.Buffer

	require.NoError(t, WriteCSV(&buf, d))
	assert.True(t, strings.HasPrefix(buf.String(), "doc-number,kind,"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, d.Columns, got.Columns)
	assert.Equal(t, d.Rows(), got.Rows())
}

func TestReadCSV_EmptyInput(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetCodec))
}

func TestReadCSV_EmptyCellsBecomeSentinel(t *testing.T) {
	got, err := ReadCSV(strings.NewReader("doc-number,year\n42,\n"))
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, []string{"42", patent.Sentinel}, got.Row(0))
}

func TestParquet_RoundTripKeepsColumnOrder(t *testing.T) {
	for _, c := range []string{CompressionZstd, CompressionSnappy, CompressionGzip, CompressionLZ4, CompressionNone} {
		t.Run(c, func(t *testing.T) {
			d := sample()
			var buf bytes.Buffer

			require.NoError(t, WriteParquet(&buf, d, c))

			got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
			require.NoError(t, err)
			assert.Equal(t, d.Columns, got.Columns)
			assert.Equal(t, d.Rows(), got.Rows())
		})
	}
}

func TestParquet_ManyRows(t *testing.T) {
	d := New()
	for i := 0; i < 1000; i++ {
		d.Append(patent.NewRecord().With(patent.FieldYear, "2019"))
	}
	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, d, CompressionZstd))

	got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, 1000, got.Len())
}

func TestParquet_UnknownCompression(t *testing.T) {
	err := WriteParquet(&bytes.Buffer{}, sample(), "brotli9000")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestReadParquet_Garbage(t *testing.T) {
	data := []byte("definitely not parquet")
	_, err := ReadParquet(bytes.NewReader(data), int64(len(data)))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetCodec))
}

func TestFile_RoundTripByExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	d := sample()

	for _, path := range []string{"/out/records.parquet", "/out/records.CSV"} {
		require.NoError(t, WriteFile(fs, path, d, CompressionSnappy))
		got, err := ReadFile(fs, path)
		require.NoError(t, err)
		assert.Equal(t, d.Rows(), got.Rows(), path)
	}
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("a.pq")
	require.NoError(t, err)
	assert.Equal(t, FormatParquet, f)

	_, err = FormatOf("a.xlsx")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

//Personal.AI order the ending
