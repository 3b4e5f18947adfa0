package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/articlescore/internal/cache"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the record cache",
	Long: `Manage the on-disk cache of analyzed records.

Entries are keyed by lexicon fingerprint and document text, so a changed
word list never serves stale scores. Clearing is only needed to reclaim
disk space.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [dir]",
	Short: "Remove every cached record",
	Long: `Clear deletes the record cache directory (cache.dir, or the given dir).

Example:
  articlescore cache clear
  articlescore cache clear ./.articlescore-cache`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var dir string
		if len(args) == 1 {
			dir = args[0]
		} else {
			cfg, err := loadConfig(viper.GetViper())
			if err != nil {
				return err
			}
			dir = cfg.Cache.Dir
		}
		if dir == "" {
			return fmt.Errorf("no cache directory configured")
		}

		if err := cache.NewDiskCache(dir, 0).Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}

		fmt.Fprintf(os.Stderr, "✓ Cleared record cache %s\n", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
