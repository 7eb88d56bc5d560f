package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

func TestParseLocation(t *testing.T) {
	cases := []struct {
		raw  string
		want Location
	}{
		{"s3://corpus/fr/brevets/", Location{Scheme: SchemeS3, Path: "corpus/fr/brevets"}},
		{"S3://corpus", Location{Scheme: SchemeS3, Path: "corpus"}},
		{"gs://bucket/2019", Location{Scheme: SchemeGCS, Path: "bucket/2019"}},
		{"file:///data/corpus/", Location{Scheme: SchemeLocal, Path: "/data/corpus"}},
		{"./corpus/../corpus", Location{Scheme: SchemeLocal, Path: "corpus"}},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseLocation(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseLocation_Invalid(t *testing.T) {
	for _, raw := range []string{"", "s3:///nobucket", "ftp://host/x", "file://"} {
		_, err := ParseLocation(raw)
		assert.True(t, errors.IsCode(err, errors.CodeInvalidParam), raw)
	}
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "s3://corpus/fr", Location{Scheme: SchemeS3, Path: "corpus/fr"}.String())
	assert.Equal(t, "/data", Location{Scheme: SchemeLocal, Path: "/data"}.String())
}

func TestSplitPath(t *testing.T) {
	b, k := SplitPath("corpus/2019/a.zip")
	assert.Equal(t, "corpus", b)
	assert.Equal(t, "2019/a.zip", k)

	b, k = SplitPath("/corpus/")
	assert.Equal(t, "corpus", b)
	assert.Empty(t, k)
}

func TestJoinPathAndDirPrefix(t *testing.T) {
	assert.Equal(t, "corpus/2019/a.zip", JoinPath("corpus", "/2019/", "a.zip"))
	assert.Equal(t, "corpus", JoinPath("corpus", "", "/"))
	assert.Equal(t, "", DirPrefix(""))
	assert.Equal(t, "2019/", DirPrefix("2019"))
}

func TestDirCache(t *testing.T) {
	c := NewDirCache()
	assert.False(t, c.Has("corpus/2019"))
	c.Remember("corpus/2019/")
	assert.True(t, c.Has("corpus/2019"))
}

func TestUnreachable(t *testing.T) {
	assert.Nil(t, Unreachable(nil, "list", "x"))

	err := Unreachable(fmt.Errorf("dial tcp: refused"), "list", "corpus/2019")
	assert.True(t, errors.IsCode(err, errors.ErrCodeStorageUnreachable))
	assert.Contains(t, err.Error(), "path=corpus/2019")

	wrapped := fmt.Errorf("get: %w", context.DeadlineExceeded)
	assert.Same(t, wrapped, Unreachable(wrapped, "open", "x"))
}

//Personal.AI order the ending
