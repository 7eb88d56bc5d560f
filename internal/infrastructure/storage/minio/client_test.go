package minio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucketName, opts.Prefix)
	infos := args.Get(0).([]minio.ObjectInfo)
	ch := make(chan minio.ObjectInfo, len(infos))
	for _, info := range infos {
		ch <- info
	}
	close(ch)
	return ch
}

func (m *MockMinIOAPI) OpenObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

type StoreTestSuite struct {
	suite.Suite
	api   *MockMinIOAPI
	store *Store
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	s.api = new(MockMinIOAPI)
	s.store = NewStoreWithClient(s.api, logging.NewNopLogger())
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
}

func (s *StoreTestSuite) TestList_ObjectsAndPrefixesSorted() {
	s.api.On("ListObjects", mock.Anything, "corpus", "fr/").Return([]minio.ObjectInfo{
		{Key: "fr/2020/"},
		{Key: "fr/2019/"},
		{Key: "fr/readme.txt"},
	})

	got, err := s.store.List(s.ctx, "corpus/fr")

	s.Require().NoError(err)
	s.Equal([]string{"corpus/fr/2019", "corpus/fr/2020", "corpus/fr/readme.txt"}, got)
}

func (s *StoreTestSuite) TestList_BucketRoot() {
	s.api.On("ListObjects", mock.Anything, "corpus", "").Return([]minio.ObjectInfo{
		{Key: "2019/"},
	})

	got, err := s.store.List(s.ctx, "corpus")

	s.Require().NoError(err)
	s.Equal([]string{"corpus/2019"}, got)
}

func (s *StoreTestSuite) TestList_ErrorIsStorageUnreachable() {
	s.api.On("ListObjects", mock.Anything, "corpus", "fr/").Return([]minio.ObjectInfo{
		{Err: fmt.Errorf("connection refused")},
	})

	_, err := s.store.List(s.ctx, "corpus/fr")

	s.Require().Error(err)
	s.True(errors.IsCode(err, errors.ErrCodeStorageUnreachable))
}

func (s *StoreTestSuite) TestIsDir_ListedPrefixIsCached() {
	s.api.On("ListObjects", mock.Anything, "corpus", "").Return([]minio.ObjectInfo{
		{Key: "2019/"},
		{Key: "a.zip"},
	}).Once()

	_, err := s.store.List(s.ctx, "corpus")
	s.Require().NoError(err)

	ok, err := s.store.IsDir(s.ctx, "corpus/2019")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *StoreTestSuite) TestIsDir_ProbesUnknownPrefix() {
	s.api.On("ListObjects", mock.Anything, "corpus", "2019/a.zip/").Return([]minio.ObjectInfo{}).Once()
	s.api.On("ListObjects", mock.Anything, "corpus", "2019/").Return([]minio.ObjectInfo{{Key: "2019/a.zip"}}).Once()

	ok, err := s.store.IsDir(s.ctx, "corpus/2019/a.zip")
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.store.IsDir(s.ctx, "corpus/2019")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *StoreTestSuite) TestIsDir_Bucket() {
	s.api.On("BucketExists", mock.Anything, "corpus").Return(true, nil)
	s.api.On("BucketExists", mock.Anything, "missing").Return(false, nil)

	ok, err := s.store.IsDir(s.ctx, "corpus")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.IsDir(s.ctx, "missing/")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *StoreTestSuite) TestOpen() {
	s.api.On("OpenObject", mock.Anything, "corpus", "2019/a.zip").
		Return(io.NopCloser(strings.NewReader("PK")), nil)

	rc, err := s.store.Open(s.ctx, "corpus/2019/a.zip")
	s.Require().NoError(err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	s.Require().NoError(err)
	s.Equal("PK", string(body))
}

func (s *StoreTestSuite) TestOpen_NotFound() {
	s.api.On("OpenObject", mock.Anything, "corpus", "2019/missing.zip").
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."})

	_, err := s.store.Open(s.ctx, "corpus/2019/missing.zip")

	s.Require().Error(err)
	s.True(errors.IsCode(err, errors.ErrCodeStorageUnreachable))
}

func (s *StoreTestSuite) TestOpen_RejectsBucketOnly() {
	_, err := s.store.Open(s.ctx, "corpus")
	s.True(errors.IsCode(err, errors.CodeInvalidParam))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

//Personal.AI order the ending
