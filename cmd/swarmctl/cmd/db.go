package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// dbCmd groups the Store's operational maintenance operations (spec.md
// §4.1: backup(path) and vacuum()).
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Store maintenance: backup and vacuum",
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup <path>",
	Short: "Back up the Store to path",
	Args:  cobra.ExactArgs(1),
	RunE:  runDBBackup,
}

var dbVacuumCmd = &cobra.Command{
	Use:   "vacuum",
	Short: "Reclaim space and defragment the Store",
	RunE:  runDBVacuum,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbBackupCmd)
	dbCmd.AddCommand(dbVacuumCmd)
}

func runDBBackup(_ *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Store.Backup(context.Background(), args[0]); err != nil {
		return fmt.Errorf("db backup: %w", err)
	}
	fmt.Printf("backed up to %s\n", args[0])
	return nil
}

func runDBVacuum(_ *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Store.Vacuum(context.Background()); err != nil {
		return fmt.Errorf("db vacuum: %w", err)
	}
	fmt.Println("vacuum complete")
	return nil
}
