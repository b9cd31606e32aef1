package mergeapi

import (
	"context"
	"errors"
	"fmt"

	"bulk-merge/core/database"
	"bulk-merge/core/merge"
	"bulk-merge/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mode names accepted by the merge API.
const (
	ModeReplace = "replace"
	ModeIgnore  = "ignore"
	ModeMerge   = "merge"
)

var (
	// ErrUnknownMode is returned for a mode outside replace/ignore/merge.
	ErrUnknownMode = errors.New("unknown merge mode")
	// ErrBadBatchSource is returned when the request supplies both inline
	// records and a storage object, or a storage object without storage
	// being configured.
	ErrBadBatchSource = errors.New("invalid batch source")
)

// Request describes one merge invocation.
type Request struct {
	// Mode selects the conflict policy: replace, ignore or merge.
	Mode string `json:"mode"`
	// Records is the inline candidate batch.
	Records []merge.Record `json:"records"`
	// Object optionally names a JSON batch file in the configured bucket,
	// used instead of inline records.
	Object string `json:"object"`
	// Columns lists the columns to overwrite on conflict (merge mode only).
	Columns []string `json:"columns"`
}

// Service resolves merge requests against the database.
type Service struct {
	db     *gorm.DB
	engine *merge.Engine
	store  storage.Client
	bucket string
	logger *zap.Logger
}

// NewService creates a new merge API service.
func NewService(db *gorm.DB, engine *merge.Engine, store storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		engine: engine,
		store:  store,
		bucket: bucket,
		logger: logger,
	}
}

// Run discovers the target table, resolves the candidate batch and executes
// the requested merge mode.
func (s *Service) Run(ctx context.Context, tableName string, req Request) (merge.Result, error) {
	batch, err := s.resolveBatch(ctx, req)
	if err != nil {
		return merge.Result{}, err
	}

	target, err := database.Describe(s.db, tableName)
	if err != nil {
		return merge.Result{}, err
	}

	switch req.Mode {
	case ModeReplace:
		return s.engine.Replace(ctx, target, batch)
	case ModeIgnore:
		return s.engine.IgnoreExisting(ctx, target, batch)
	case ModeMerge:
		return s.engine.Merge(ctx, target, batch, req.Columns)
	default:
		return merge.Result{}, fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}
}

// resolveBatch returns the candidate records, fetching them from object
// storage when the request names a batch file.
func (s *Service) resolveBatch(ctx context.Context, req Request) ([]merge.Record, error) {
	if req.Object == "" {
		return req.Records, nil
	}
	if len(req.Records) > 0 {
		return nil, fmt.Errorf("%w: provide either records or object, not both", ErrBadBatchSource)
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: no storage configured for object %s", ErrBadBatchSource, req.Object)
	}

	var batch []merge.Record
	if err := storage.FetchJSON(ctx, s.store, s.bucket, req.Object, &batch); err != nil {
		return nil, err
	}
	s.logger.Info("Fetched batch from storage",
		zap.String("object", req.Object),
		zap.Int("records", len(batch)),
	)
	return batch, nil
}
