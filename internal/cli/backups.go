package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confdock/settings/atomicwrite"
	"github.com/confdock/settings/backing"
)

var (
	backupsFile string
	backupsKeep int
)

// backupsCmd groups backup maintenance commands.
var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Manage rotating settings backups",
	Long: `Backups are the timestamped .bak copies the atomic writer
rotates before each save. Names sort lexically by age.

Available commands:
  list   - Show backups for a settings file, oldest first
  prune  - Delete all but the newest N backups`,
}

var backupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups for a settings file, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		writer := backupWriter()
		backups, err := writer.ListBackups(backupsFile)
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("no backups")
			return nil
		}
		for _, b := range backups {
			fmt.Println(b)
		}
		return nil
	},
}

var backupsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest N backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		if backupsKeep < 0 {
			return errors.New("--keep must not be negative")
		}
		return backupWriter().PruneBackups(backupsFile, backupsKeep)
	},
}

func backupWriter() *atomicwrite.Writer {
	return atomicwrite.New(backing.OS(), atomicwrite.Options{})
}

func init() {
	backupsCmd.PersistentFlags().StringVarP(&backupsFile, "file", "f", "", "settings file the backups belong to")
	backupsCmd.MarkPersistentFlagRequired("file")
	backupsPruneCmd.Flags().IntVar(&backupsKeep, "keep", 3, "newest backups to retain")
	backupsCmd.AddCommand(backupsListCmd)
	backupsCmd.AddCommand(backupsPruneCmd)
	rootCmd.AddCommand(backupsCmd)
}
