package merge

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bulk-merge/core/schema"

	"go.uber.org/zap"
)

// cleanupTimeout bounds the failure-path DROP so a wedged engine cannot
// hang an invocation that is already returning an error.
const cleanupTimeout = 30 * time.Second

// Engine reconciles candidate batches into target tables through disposable
// staging tables. An Engine is safe for concurrent use: every invocation
// gets its own staging table and operation context.
type Engine struct {
	db       *sql.DB
	dialect  schema.Dialect
	log      *zap.Logger
	registry *schema.Registry
	faults   FaultInjectionConfig
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithDialect sets the identifier-quoting dialect. Defaults to MySQL.
func WithDialect(d schema.Dialect) Option {
	return func(e *Engine) { e.dialect = d }
}

// WithLogger sets the logger used for cleanup warnings and phase tracing.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithRegistry sets a caller-owned staging registry, letting several
// engines share one bookkeeping view of live staging tables.
func WithRegistry(r *schema.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithFaultInjection arms fault-injection points. Test-only; never enable
// in production configurations.
func WithFaultInjection(cfg FaultInjectionConfig) Option {
	return func(e *Engine) { e.faults = cfg }
}

// New creates an Engine over an open database handle.
func New(db *sql.DB, opts ...Option) *Engine {
	e := &Engine{
		db:      db,
		dialect: schema.DialectMySQL,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = schema.NewRegistry()
	}
	return e
}

// Registry returns the staging registry the engine records its staging
// tables in.
func (e *Engine) Registry() *schema.Registry {
	return e.registry
}

// callOptions collects the per-invocation options.
type callOptions struct {
	stagingName string
	conn        *sql.Conn
	tx          *sql.Tx
}

// CallOption configures a single merge invocation.
type CallOption func(*callOptions)

// WithStagingName overrides the timestamp-derived staging table name.
// Callers issuing concurrent merges against the same target within one
// second must supply distinct names to avoid create collisions.
func WithStagingName(name string) CallOption {
	return func(co *callOptions) { co.stagingName = name }
}

// WithTransaction switches the invocation to user-managed mode: all
// statements run on tx, and the engine never commits or rolls it back.
// Both handles must be supplied; supplying only one fails the invocation
// with ErrInvalidTxn before any database work.
func WithTransaction(conn *sql.Conn, tx *sql.Tx) CallOption {
	return func(co *callOptions) {
		co.conn = conn
		co.tx = tx
	}
}

// Replace reconciles the batch with full-row overwrite semantics: target
// rows whose primary key appears in the batch are deleted, then every
// staged row is inserted. Returns (Replaced, Inserted) counts.
func (e *Engine) Replace(ctx context.Context, target *schema.Table, batch []Record, opts ...CallOption) (Result, error) {
	return e.run(ctx, target, batch, replacePlan{}, opts)
}

// IgnoreExisting reconciles the batch with insert-if-absent semantics:
// staged rows whose primary key already exists in the target are skipped.
// Returns (Ignored, Inserted) counts.
func (e *Engine) IgnoreExisting(ctx context.Context, target *schema.Table, batch []Record, opts ...CallOption) (Result, error) {
	return e.run(ctx, target, batch, ignorePlan{}, opts)
}

// Merge reconciles the batch with column-level upsert semantics: on a
// primary-key conflict only the listed columns of the existing row are
// overwritten from the staged row; non-conflicting rows are inserted in
// full. The column list must be non-empty, exclude the primary key, and
// name only columns of the target.
func (e *Engine) Merge(ctx context.Context, target *schema.Table, batch []Record, columns []string, opts ...CallOption) (Result, error) {
	if err := validateMergeColumns(target, columns); err != nil {
		return Result{}, err
	}
	return e.run(ctx, target, batch, selectivePlan{columns: columns}, opts)
}

// run drives the shared control flow: validate preconditions, pick the
// transaction mode, then create staging, load the batch, reconcile, and
// drop staging, with any failure routed through cleanup.
func (e *Engine) run(ctx context.Context, target *schema.Table, batch []Record, p plan, opts []CallOption) (Result, error) {
	// Empty batch is a documented no-op: zero counts, no database work.
	if len(batch) == 0 {
		return Result{Exact: true}, nil
	}
	if err := target.Validate(); err != nil {
		return Result{}, err
	}
	if err := validateBatch(target, batch); err != nil {
		return Result{}, err
	}

	co := &callOptions{}
	for _, opt := range opts {
		opt(co)
	}
	mode, err := txnModeFor(co)
	if err != nil {
		return Result{}, err
	}

	name := co.stagingName
	if name == "" {
		name = schema.StagingName(target.Name)
	}
	octx := &opContext{
		mode:    mode,
		staging: schema.CloneForStaging(target, name),
	}
	e.registry.Register(octx.staging)

	log := e.log.With(
		zap.String("policy", p.name()),
		zap.String("table", target.Name),
		zap.String("staging_table", octx.staging.Name),
		zap.Int("batch_size", len(batch)),
	)

	res, err := e.runTxn(ctx, octx, co, func(tx *sql.Tx) (Result, error) {
		return e.phases(ctx, tx, octx, target, batch, p)
	})
	if err != nil {
		log.Debug("merge failed", zap.Error(err))
		return Result{}, err
	}
	log.Debug("merge complete",
		zap.Int64("replaced", res.Replaced),
		zap.Int64("ignored", res.Ignored),
		zap.Int64("inserted", res.Inserted),
		zap.Bool("exact", res.Exact),
	)
	return res, nil
}

// phases runs the strictly ordered round trips of one invocation on its
// transaction. Any error aborts the remaining phases; the caller routes it
// through rollback and cleanup.
func (e *Engine) phases(ctx context.Context, tx *sql.Tx, octx *opContext, target *schema.Table, batch []Record, p plan) (Result, error) {
	if err := e.createStaging(ctx, tx, octx); err != nil {
		return Result{}, err
	}
	if err := e.loadStaging(ctx, tx, octx, batch); err != nil {
		return Result{}, err
	}
	if e.faults.BeforeReconcile {
		return Result{}, fmt.Errorf("%w: %w before reconcile", ErrReconcile, ErrInjectedFault)
	}
	res, err := p.reconcile(ctx, tx, e.dialect, target, octx.staging, len(batch))
	if err != nil {
		return Result{}, err
	}
	if err := e.dropStaging(ctx, tx, octx); err != nil {
		return Result{}, err
	}
	return res, nil
}

// validateMergeColumns rejects malformed Merge column lists before any
// database work.
func validateMergeColumns(target *schema.Table, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("%w: column list is empty", ErrInvalidColumns)
	}
	for _, col := range columns {
		if col == target.PrimaryKey {
			return fmt.Errorf("%w: primary key %s cannot be merged", ErrInvalidColumns, col)
		}
		if !target.HasColumn(col) {
			return fmt.Errorf("%w: column %s does not exist in table %s", ErrInvalidColumns, col, target.Name)
		}
	}
	return nil
}
