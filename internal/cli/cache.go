package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/internal/engine/cache"
)

func openCache() (*cache.FileStore, error) {
	return cache.OpenFromConfig(config.GetGlobalConfig().Cache)
}

// NewCacheClearCmd creates the cache clear command.
func NewCacheClearCmd() *cobra.Command {
	var expiredOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached prediction results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCache()
			if err != nil {
				return err
			}
			var n int
			if expiredOnly {
				n, err = store.CleanupExpired()
			} else {
				n, err = store.Clear()
			}
			if err != nil {
				return err
			}
			cmd.Printf("Removed %d cache entr%s\n", n, plural(n, "y", "ies"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "only remove expired entries")
	return cmd
}

// NewCacheStatsCmd creates the cache stats command.
func NewCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show result cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCache()
			if err != nil {
				return err
			}
			st, err := store.Stats()
			if err != nil {
				return err
			}
			cmd.Printf("Directory: %s\n", st.Directory)
			cmd.Printf("Entries:   %d (%d expired)\n", st.Entries, st.Expired)
			cmd.Printf("Size:      %s\n", formatBytes(st.SizeBytes))
			cmd.Printf("TTL:       %s\n", cache.FormatDuration(time.Duration(st.TTLSeconds)*time.Second))
			cmd.Printf("Max size:  %d MB\n", st.MaxSizeMB)
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func formatBytes(n int64) string {
	const unit = 1024
	switch {
	case n >= unit*unit:
		return fmt.Sprintf("%.1f MB", float64(n)/(unit*unit))
	case n >= unit:
		return fmt.Sprintf("%.1f KB", float64(n)/unit)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
