package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"bulk-merge/core/config"
	"bulk-merge/core/database"
	"bulk-merge/core/logger"
	"bulk-merge/core/merge"
	"bulk-merge/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the merge command
	mergeMode        string
	mergeColumns     []string
	mergeFile        string
	mergeObject      string
	mergeStagingName string
	mergeReport      string
	mergeYes         bool
)

// mergeCmd reconciles one batch file into a table.
var mergeCmd = &cobra.Command{
	Use:   "merge <table>",
	Short: "Reconcile a candidate batch into a table",
	Long: `Reconcile a candidate batch into a table through a staging table.

The batch is a JSON array of objects, read from a local file (--file) or
from the configured storage bucket (--object). Every record must carry the
table's primary key.

Modes:
  replace  batch rows fully overwrite existing rows with the same key
  ignore   batch rows whose key already exists are skipped
  merge    only the --columns of conflicting rows are overwritten

Examples:
  # Full-row overwrite from a local batch file
  merge records --mode replace --file batch.json

  # Insert-if-absent from a storage object, without confirmation
  merge records --mode ignore --object batches/records.json --yes

  # Overwrite only update_at on conflicts, upload the result report
  merge records --mode merge --columns update_at --file batch.json --report reports/records.json`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeMode, "mode", "replace", "Conflict policy: replace, ignore or merge")
	mergeCmd.Flags().StringSliceVar(&mergeColumns, "columns", nil, "Columns to overwrite on conflict (merge mode)")
	mergeCmd.Flags().StringVar(&mergeFile, "file", "", "Local JSON batch file")
	mergeCmd.Flags().StringVar(&mergeObject, "object", "", "JSON batch object in the storage bucket")
	mergeCmd.Flags().StringVar(&mergeStagingName, "staging-name", "", "Override the generated staging table name")
	mergeCmd.Flags().StringVar(&mergeReport, "report", "", "Upload the result as JSON to this storage object")
	mergeCmd.Flags().BoolVar(&mergeYes, "yes", false, "Auto-confirm destructive modes (non-interactive)")

	RootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	tableName := args[0]

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Read the candidate batch
	batch, client, err := loadBatch(ctx, cfg)
	if err != nil {
		return err
	}
	l.Info("Batch loaded",
		zap.String("table", tableName),
		zap.String("mode", mergeMode),
		zap.Int("records", len(batch)))

	// Discover the target table
	target, err := database.Describe(db, tableName)
	if err != nil {
		return fmt.Errorf("failed to describe table %s: %w", tableName, err)
	}

	// Replace and merge overwrite existing rows. Ask before doing so.
	if mergeMode != "ignore" && !mergeYes {
		if !confirmDestructiveAction() {
			l.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access database handle: %w", err)
	}
	engine := merge.New(sqlDB,
		merge.WithDialect(database.Dialect(db)),
		merge.WithLogger(l),
	)

	var opts []merge.CallOption
	if mergeStagingName != "" {
		opts = append(opts, merge.WithStagingName(mergeStagingName))
	}

	var res merge.Result
	switch mergeMode {
	case "replace":
		res, err = engine.Replace(ctx, target, batch, opts...)
	case "ignore":
		res, err = engine.IgnoreExisting(ctx, target, batch, opts...)
	case "merge":
		res, err = engine.Merge(ctx, target, batch, mergeColumns, opts...)
	default:
		return fmt.Errorf("unknown mode %q (want replace, ignore or merge)", mergeMode)
	}
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	l.Info("Merge complete",
		zap.String("table", tableName),
		zap.Int64("replaced", res.Replaced),
		zap.Int64("ignored", res.Ignored),
		zap.Int64("inserted", res.Inserted),
		zap.Bool("exact", res.Exact))

	// Optionally upload the result report
	if mergeReport != "" {
		if client == nil {
			if client, err = storage.NewClient(cfg.Storage); err != nil {
				return fmt.Errorf("failed to connect to storage: %w", err)
			}
		}
		if err := storage.PutJSON(ctx, client, cfg.Storage.Bucket, mergeReport, res); err != nil {
			return fmt.Errorf("failed to upload report: %w", err)
		}
		l.Info("Report uploaded", zap.String("object", mergeReport))
	}

	return nil
}

// loadBatch reads the candidate records from --file or --object. The storage
// client is returned when one was opened so a report upload can reuse it.
func loadBatch(ctx context.Context, cfg *config.Config) ([]merge.Record, storage.Client, error) {
	switch {
	case mergeFile != "" && mergeObject != "":
		return nil, nil, fmt.Errorf("provide either --file or --object, not both")
	case mergeFile != "":
		data, err := os.ReadFile(mergeFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read batch file: %w", err)
		}
		var batch []merge.Record
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, nil, fmt.Errorf("failed to parse batch file: %w", err)
		}
		return batch, nil, nil
	case mergeObject != "":
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		var batch []merge.Record
		if err := storage.FetchJSON(ctx, client, cfg.Storage.Bucket, mergeObject, &batch); err != nil {
			return nil, nil, err
		}
		return batch, client, nil
	default:
		return nil, nil, fmt.Errorf("a batch source is required: --file or --object")
	}
}

// confirmDestructiveAction asks the user to confirm before overwriting rows.
func confirmDestructiveAction() bool {
	fmt.Print("This operation overwrites existing rows. Continue? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
