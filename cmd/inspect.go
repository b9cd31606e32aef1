package cmd

import (
	"fmt"

	"bulk-merge/core/config"
	"bulk-merge/core/database"

	"github.com/spf13/cobra"
)

// inspectCmd prints the discovered descriptor of a table.
var inspectCmd = &cobra.Command{
	Use:   "inspect <table>",
	Short: "Show the merge descriptor of a table",
	Long: `Show the table descriptor the merge engine would use: the ordered
columns with their SQL types and the primary key. Fails for missing tables
and for tables the engine cannot merge into (no primary key, composite
primary key).`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	RootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	tableName := args[0]

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	table, err := database.Describe(db, tableName)
	if err != nil {
		return fmt.Errorf("failed to describe table %s: %w", tableName, err)
	}

	fmt.Printf("table: %s\n", table.Name)
	fmt.Printf("primary key: %s\n", table.PrimaryKey)
	fmt.Println("columns:")
	for _, col := range table.Columns {
		marker := ""
		if col.Name == table.PrimaryKey {
			marker = " (primary key)"
		}
		fmt.Printf("  %-24s %s%s\n", col.Name, col.Type, marker)
	}
	return nil
}
