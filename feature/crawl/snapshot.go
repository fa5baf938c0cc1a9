package crawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"ats-catalog/core/reconcile"
	"ats-catalog/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archive keeps the last normalized batch of every scope in object storage.
type Archive struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewArchive creates an archive writing to bucket.
func NewArchive(client storage.Client, bucket string, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{client: client, bucket: bucket, logger: logger}
}

const snapshotPrefix = "snapshots/"

// SnapshotKey returns the object key of scope's snapshot.
func SnapshotKey(scope reconcile.Scope) string {
	return fmt.Sprintf(snapshotPrefix+"%s/%s.json", url.PathEscape(scope.SourceSystem), url.PathEscape(scope.CompanyName))
}

// Load returns the stored snapshot of scope, or nil when there is none.
func (a *Archive) Load(ctx context.Context, scope reconcile.Scope) ([]reconcile.NormalizedJob, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, SnapshotKey(scope), minio.GetObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var jobs []reconcile.NormalizedJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return jobs, nil
}

// Save overwrites the snapshot of scope with jobs.
func (a *Archive) Save(ctx context.Context, scope reconcile.Scope, jobs []reconcile.NormalizedJob) error {
	if jobs == nil {
		jobs = []reconcile.NormalizedJob{}
	}
	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = a.client.PutObject(ctx, a.bucket, SnapshotKey(scope), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// Record compares jobs with the previous snapshot, logs the delta and stores jobs.
// An empty batch is not stored. Failures are logged and never returned.
func (a *Archive) Record(ctx context.Context, scope reconcile.Scope, jobs []reconcile.NormalizedJob) reconcile.SnapshotDelta {
	l := a.logger.With(zap.Stringer("scope", scope))

	prev, err := a.Load(ctx, scope)
	if err != nil {
		l.Warn("Loading previous snapshot failed", zap.Error(err))
	}

	delta := reconcile.Diff(prev, jobs)
	if delta.Inconclusive {
		// The previous snapshot stays as the baseline.
		l.Warn("Empty snapshot, delta inconclusive", zap.Int("previous", len(prev)))
		return delta
	}
	l.Info("Snapshot delta",
		zap.Int("new", len(delta.New)),
		zap.Int("updated", len(delta.Updated)),
		zap.Int("closed", len(delta.Closed)),
	)

	if err := a.Save(ctx, scope, jobs); err != nil {
		l.Warn("Saving snapshot failed", zap.Error(err))
	}
	return delta
}

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// List returns every stored snapshot.
func (a *Archive) List(ctx context.Context) ([]SnapshotInfo, error) {
	out := []SnapshotInfo{}
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: snapshotPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list snapshots: %w", obj.Err)
		}
		out = append(out, SnapshotInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return out, nil
}
