package archive

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Ingest/internal/ingest/extract"
	"github.com/turtacn/KeyIP-Ingest/internal/testutil"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────────────────────

type entry struct {
	name string
	body []byte
}

func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		fw, err := w.Create(e.name)
		require.NoError(t, err)
		_, err = fw.Write(e.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func doc(docNumber string) []byte {
	return []byte(fmt.Sprintf(`<fr-patent-document doc-number="%s" kind="A1"/>`, docNumber))
}

func xmlEntry(name, docNumber string) entry { return entry{name: name, body: doc(docNumber)} }

// recordingExtractor remembers every document it was handed.
type recordingExtractor struct {
	mu   sync.Mutex
	docs []string
	next Extractor
}

func (r *recordingExtractor) Extract(b []byte) (patent.Record, error) {
	r.mu.Lock()
	r.docs = append(r.docs, string(b))
	r.mu.Unlock()
	return r.next.Extract(b)
}

func docNumbers(res Result) []string {
	out := make([]string, 0, len(res.Records))
	for _, r := range res.Records {
		out = append(out, r.Get(patent.FieldDocNumber))
	}
	return out
}

func newDecoder(opts Options, o ...Option) *Decoder {
	return NewDecoder(extract.New(), opts, o...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestDecode_FlatArchive(t *testing.T) {
	data := buildZip(t, xmlEntry("a.xml", "1"), xmlEntry("b.XML", "2"))

	res := newDecoder(DefaultOptions()).DecodeBytes("2019/a.zip", data)

	assert.Equal(t, []string{"1", "2"}, docNumbers(res))
	assert.Empty(t, res.Skips)
	assert.Equal(t, Stats{Entries: 2, Extracted: 2}, res.Stats)
	for _, r := range res.Records {
		assert.True(t, r.Complete())
	}
}

func TestDecode_NestedContainerYieldsItsRecords(t *testing.T) {
	inner := buildZip(t, xmlEntry("x.xml", "10"), xmlEntry("y.xml", "11"))
	outer := buildZip(t, entry{name: "inner.zip", body: inner})

	res := newDecoder(DefaultOptions()).DecodeBytes("outer.zip", outer)

	assert.Equal(t, []string{"10", "11"}, docNumbers(res))
	assert.Equal(t, 1, res.Stats.Nested)
	assert.Empty(t, res.Skips)
}

func TestDecode_DiscoveryOrderIsDepthFirst(t *testing.T) {
	inner := buildZip(t, xmlEntry("b.xml", "2"), xmlEntry("c.xml", "3"))
	outer := buildZip(t, xmlEntry("a.xml", "1"), entry{name: "sub/inner.ZIP", body: inner}, xmlEntry("d.xml", "4"))

	res := newDecoder(DefaultOptions()).DecodeBytes("outer.zip", outer)

	assert.Equal(t, []string{"1", "2", "3", "4"}, docNumbers(res))
}

func TestDecode_CorruptNestedContainerIsIsolated(t *testing.T) {
	outer := buildZip(t,
		xmlEntry("a.xml", "1"),
		entry{name: "broken.zip", body: []byte("this is not a zip file")},
		xmlEntry("b.xml", "2"),
	)

	res := newDecoder(DefaultOptions()).DecodeBytes("outer.zip", outer)

	assert.Equal(t, []string{"1", "2"}, docNumbers(res))
	require.Len(t, res.Skips, 1)
	s := res.Skips[0]
	assert.Equal(t, "outer.zip!broken.zip", s.Archive)
	assert.Equal(t, 1, s.Depth)
	assert.Equal(t, errors.ErrCodeArchiveCorrupt, s.Code())
}

func TestDecode_CorruptOuterContainerYieldsEmptyResult(t *testing.T) {
	res := newDecoder(DefaultOptions()).DecodeBytes("2019/bad.zip", []byte("garbage"))

	assert.True(t, res.Empty())
	require.Len(t, res.Skips, 1)
	assert.Equal(t, "2019/bad.zip", res.Skips[0].Archive)
	assert.Empty(t, res.Skips[0].Entry)
	assert.Equal(t, errors.ErrCodeArchiveCorrupt, res.Skips[0].Code())
}

func TestDecode_TOCNeverExtractedAtAnyDepth(t *testing.T) {
	toc := []byte(`<toc doc-number="TOC"/>`)
	deepest := buildZip(t, entry{name: "toc.XML", body: toc}, xmlEntry("z.xml", "3"))
	inner := buildZip(t, entry{name: "Toc.xml", body: toc}, entry{name: "deep.zip", body: deepest}, xmlEntry("y.xml", "2"))
	outer := buildZip(t,
		entry{name: "TOC.xml", body: toc},
		entry{name: "dir/TOC.xml", body: toc},
		xmlEntry("x.xml", "1"),
		entry{name: "inner.zip", body: inner},
	)

	rec := &recordingExtractor{next: extract.New()}
	res := NewDecoder(rec, DefaultOptions()).DecodeBytes("outer.zip", outer)

	assert.ElementsMatch(t, []string{"1", "2", "3"}, docNumbers(res))
	for _, d := range rec.docs {
		assert.NotContains(t, d, "<toc")
	}
	assert.Equal(t, 4, res.Stats.Ignored)
}

func TestDecode_MalformedEntryDoesNotAbortSiblings(t *testing.T) {
	outer := buildZip(t,
		xmlEntry("a.xml", "1"),
		entry{name: "bad.xml", body: []byte("<doc><a></b></doc>")},
		xmlEntry("c.xml", "3"),
	)

	res := newDecoder(DefaultOptions()).DecodeBytes("outer.zip", outer)

	assert.Equal(t, []string{"1", "3"}, docNumbers(res))
	require.Len(t, res.Skips, 1)
	assert.Equal(t, "bad.xml", res.Skips[0].Entry)
	assert.Equal(t, errors.ErrCodeDocumentMalformed, res.Skips[0].Code())
}

func TestDecode_DepthCeiling(t *testing.T) {
	level2 := buildZip(t, xmlEntry("deep.xml", "3"))
	level1 := buildZip(t, xmlEntry("mid.xml", "2"), entry{name: "level2.zip", body: level2})
	outer := buildZip(t, xmlEntry("top.xml", "1"), entry{name: "level1.zip", body: level1})

	res := newDecoder(Options{MaxDepth: 1}).DecodeBytes("outer.zip", outer)

	assert.Equal(t, []string{"1", "2"}, docNumbers(res))
	require.Len(t, res.Skips, 1)
	assert.Equal(t, errors.ErrCodeNestingTooDeep, res.Skips[0].Code())
	assert.Equal(t, "level2.zip", res.Skips[0].Entry)

	flat := newDecoder(Options{MaxDepth: 0, TOCName: "TOC.xml"}).DecodeBytes("outer.zip", outer)
	assert.Equal(t, []string{"1"}, docNumbers(flat))
}

func TestDecode_SelfNestingStopsAtCeiling(t *testing.T) {
	data := buildZip(t, xmlEntry("leaf.xml", "0"))
	for i := 0; i < 15; i++ {
		data = buildZip(t, entry{name: fmt.Sprintf("n%d.zip", i), body: data})
	}

	res := newDecoder(DefaultOptions()).DecodeBytes("bomb.zip", data)

	assert.True(t, res.Empty())
	require.Len(t, res.Skips, 1)
	assert.Equal(t, errors.ErrCodeNestingTooDeep, res.Skips[0].Code())
	assert.Equal(t, 10, res.Stats.Nested)
}

func TestDecode_ChecksumMismatchIsUnreadable(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	body := doc("9")
	fw, err := w.CreateRaw(&zip.FileHeader{
		Name:               "bad-crc.xml",
		Method:             zip.Store,
		CRC32:              0xdeadbeef,
		CompressedSize64:   uint64(len(body)),
		UncompressedSize64: uint64(len(body)),
	})
	require.NoError(t, err)
	_, err = fw.Write(body)
	require.NoError(t, err)
	fw, err = w.Create("ok.xml")
	require.NoError(t, err)
	_, err = fw.Write(doc("1"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	res := newDecoder(DefaultOptions()).DecodeBytes("crc.zip", buf.Bytes())

	assert.Equal(t, []string{"1"}, docNumbers(res))
	require.Len(t, res.Skips, 1)
	assert.Equal(t, errors.ErrCodeEntryUnreadable, res.Skips[0].Code())
}

func TestDecode_EntryTooLarge(t *testing.T) {
	big := []byte(`<doc doc-number="big">` + strings.Repeat("x", 4096) + `</doc>`)
	data := buildZip(t, entry{name: "big.xml", body: big}, xmlEntry("small.xml", "1"))

	res := newDecoder(Options{MaxEntryBytes: 1024}).DecodeBytes("a.zip", data)

	assert.Equal(t, []string{"1"}, docNumbers(res))
	require.Len(t, res.Skips, 1)
	assert.Equal(t, errors.ErrCodeEntryTooLarge, res.Skips[0].Code())
}

func TestDecode_OtherEntriesIgnored(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, err := w.Create("images/")
	require.NoError(t, err)
	for _, name := range []string{"images/fig1.tif", "readme.txt", "a.xml"} {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write(doc("1"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	res := newDecoder(DefaultOptions()).DecodeBytes("a.zip", buf.Bytes())

	assert.Len(t, res.Records, 1)
	assert.Equal(t, Stats{Entries: 3, Extracted: 1, Ignored: 2}, res.Stats)
}

func TestDecode_SkipsAreObservable(t *testing.T) {
	logger := testutil.NewMockLogger()
	var seen []Skip
	d := newDecoder(DefaultOptions(),
		WithLogger(logger),
		WithSkipHandler(func(s Skip) { seen = append(seen, s) }),
	)

	outer := buildZip(t, entry{name: "bad.xml", body: []byte("<<")})
	res := d.DecodeBytes("2020/x.zip", outer)

	require.Len(t, seen, 1)
	assert.Equal(t, res.Skips, seen)

	warns := logger.MessagesAt("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, "2020/x.zip", warns[0].Field(logging.FieldArchive))
	assert.Equal(t, "bad.xml", warns[0].Field(logging.FieldEntry))
	assert.Equal(t, string(errors.ErrCodeDocumentMalformed), warns[0].Field(logging.FieldErrorCode))
}

func TestDecodeReader(t *testing.T) {
	data := buildZip(t, xmlEntry("a.xml", "1"))

	res := newDecoder(DefaultOptions()).DecodeReader("a.zip", bytes.NewReader(data))
	assert.Equal(t, []string{"1"}, docNumbers(res))

	tooBig := newDecoder(Options{MaxEntryBytes: 16}).DecodeReader("a.zip", bytes.NewReader(data))
	require.Len(t, tooBig.Skips, 1)
	assert.Equal(t, errors.ErrCodeEntryTooLarge, tooBig.Skips[0].Code())
}

func TestDecodeDocument(t *testing.T) {
	d := newDecoder(DefaultOptions())

	ok := d.DecodeDocument("FR1.xml", doc("1"))
	assert.Equal(t, []string{"1"}, docNumbers(ok))
	assert.Equal(t, Stats{Entries: 1, Extracted: 1}, ok.Stats)

	bad := d.DecodeDocument("FR2.xml", []byte("<a><b></a>"))
	assert.True(t, bad.Empty())
	require.Len(t, bad.Skips, 1)
	assert.Equal(t, "FR2.xml", bad.Skips[0].Entry)
	assert.False(t, bad.Unreadable())
}

func TestDecoder_Classification(t *testing.T) {
	d := newDecoder(DefaultOptions())

	assert.True(t, d.IsArchive("corpus/2019/FR_2019_01.ZIP"))
	assert.False(t, d.IsArchive("corpus/2019/notes.txt"))
	assert.True(t, d.IsMarkup("dir/FR3000001.Xml"))
	assert.False(t, d.IsMarkup("dir/toc.xml"))
}

func TestResult_Unreadable(t *testing.T) {
	d := newDecoder(DefaultOptions())

	assert.True(t, d.DecodeBytes("x.zip", []byte("nope")).Unreadable())

	inner := buildZip(t, entry{name: "broken.zip", body: []byte("nope")})
	assert.False(t, d.DecodeBytes("x.zip", inner).Unreadable())
}

func TestSkip_String(t *testing.T) {
	s := Skip{Archive: "a.zip", Entry: "b.xml", Err: errors.New(errors.ErrCodeDocumentMalformed, "bad")}
	assert.Equal(t, "a.zip [b.xml]: [ING_003] bad", s.String())
	assert.Equal(t, "a.zip: <nil>", Skip{Archive: "a.zip"}.String())
}

//Personal.AI order the ending
