package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"ats-catalog/core/reconcile"
	"ats-catalog/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testScope = reconcile.Scope{SourceSystem: "join", CompanyName: "Qdrant Inc"}

func snapshotBody(t *testing.T, jobs []reconcile.NormalizedJob) io.ReadCloser {
	t.Helper()
	data, err := json.Marshal(jobs)
	require.NoError(t, err)
	return io.NopCloser(strings.NewReader(string(data)))
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "snapshots/join/Qdrant%20Inc.json", SnapshotKey(testScope))
	assert.Equal(t, "snapshots/join/a%2Fb.json", SnapshotKey(reconcile.Scope{SourceSystem: "join", CompanyName: "a/b"}))
}

func TestArchive_LoadMissing(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "bucket", SnapshotKey(testScope), mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})

	jobs, err := NewArchive(client, "bucket", nil).Load(context.Background(), testScope)
	require.NoError(t, err)
	assert.Nil(t, jobs)
}

func TestArchive_LoadError(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "bucket", SnapshotKey(testScope), mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := NewArchive(client, "bucket", nil).Load(context.Background(), testScope)
	assert.ErrorContains(t, err, "get snapshot")
}

func TestArchive_Save(t *testing.T) {
	client := new(mocks.Client)
	jobs := []reconcile.NormalizedJob{{ExternalID: "1", Title: "Engineer"}}

	client.On("PutObject", mock.Anything, "bucket", SnapshotKey(testScope), mock.Anything, mock.Anything,
		mock.MatchedBy(func(o minio.PutObjectOptions) bool { return o.ContentType == "application/json" })).
		Run(func(args mock.Arguments) {
			data, err := io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), args.Get(4).(int64))

			var stored []reconcile.NormalizedJob
			require.NoError(t, json.Unmarshal(data, &stored))
			assert.Equal(t, jobs[0].Title, stored[0].Title)
		}).
		Return(minio.UploadInfo{}, nil)

	require.NoError(t, NewArchive(client, "bucket", nil).Save(context.Background(), testScope, jobs))
	client.AssertExpectations(t)
}

func TestArchive_RecordLogsDelta(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	client := new(mocks.Client)

	prev := []reconcile.NormalizedJob{{ExternalID: "1", Title: "Engineer"}, {ExternalID: "2", Title: "Designer"}}
	curr := []reconcile.NormalizedJob{{ExternalID: "1", Title: "Senior Engineer"}, {ExternalID: "3", Title: "Writer"}}

	client.On("GetObject", mock.Anything, "bucket", SnapshotKey(testScope), mock.Anything).Return(snapshotBody(t, prev), nil)
	client.On("PutObject", mock.Anything, "bucket", SnapshotKey(testScope), mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	delta := NewArchive(client, "bucket", zap.New(core)).Record(context.Background(), testScope, curr)

	assert.Equal(t, []string{"3"}, delta.New)
	assert.Equal(t, []string{"1"}, delta.Updated)
	assert.Equal(t, []string{"2"}, delta.Closed)

	entries := logs.FilterMessage("Snapshot delta").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(1), fields["new"])
	assert.Equal(t, int64(1), fields["closed"])
	client.AssertExpectations(t)
}

func TestArchive_RecordEmptyKeepsBaseline(t *testing.T) {
	client := new(mocks.Client)
	prev := []reconcile.NormalizedJob{{ExternalID: "1"}}
	client.On("GetObject", mock.Anything, "bucket", SnapshotKey(testScope), mock.Anything).Return(snapshotBody(t, prev), nil)

	delta := NewArchive(client, "bucket", nil).Record(context.Background(), testScope, nil)

	assert.True(t, delta.Inconclusive)
	assert.Empty(t, delta.Closed)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestArchive_RecordSwallowsStorageErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "bucket", SnapshotKey(testScope), mock.Anything).Return(nil, errors.New("timeout"))
	client.On("PutObject", mock.Anything, "bucket", SnapshotKey(testScope), mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("access denied"))

	delta := NewArchive(client, "bucket", zap.New(core)).Record(context.Background(), testScope, []reconcile.NormalizedJob{{ExternalID: "1"}})

	assert.Equal(t, []string{"1"}, delta.New)
	assert.Equal(t, 1, logs.FilterMessage("Loading previous snapshot failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Saving snapshot failed").Len())
}

func objectChan(objs ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objs))
	for _, o := range objs {
		ch <- o
	}
	close(ch)
	return ch
}

func TestArchive_List(t *testing.T) {
	client := new(mocks.Client)
	modified := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	client.On("ListObjects", mock.Anything, "bucket", minio.ListObjectsOptions{Prefix: "snapshots/", Recursive: true}).
		Return(objectChan(
			minio.ObjectInfo{Key: "snapshots/join/Qdrant.json", Size: 120, LastModified: modified},
			minio.ObjectInfo{Key: "snapshots/kekahr/10Decoders.json", Size: 80, LastModified: modified},
		))

	list, err := NewArchive(client, "bucket", nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "snapshots/join/Qdrant.json", list[0].Key)
	assert.Equal(t, int64(120), list[0].Size)
	assert.Equal(t, modified, list[1].LastModified)
}

func TestArchive_ListError(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).
		Return(objectChan(minio.ObjectInfo{Err: errors.New("access denied")}))

	_, err := NewArchive(client, "bucket", nil).List(context.Background())
	assert.ErrorContains(t, err, "access denied")
}
