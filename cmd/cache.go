package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/enrich"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the contact cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show contact cache statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		stats, err := st.ContactStats(ctx, cacheTTLDays())
		if err != nil {
			return eris.Wrap(err, "cache stats")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "Live entries:\t%d\n", stats.Live)
		_, _ = fmt.Fprintf(w, "Expired entries:\t%d\n", stats.Expired)
		_, _ = fmt.Fprintf(w, "TTL days:\t%d\n", cacheTTLDays())
		return w.Flush()
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired contact cache entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		n, err := st.DeleteExpiredContacts(ctx, cacheTTLDays())
		if err != nil {
			return eris.Wrap(err, "cache purge")
		}

		zap.L().Info("cache purged", zap.Int("deleted", n))
		fmt.Printf("Deleted %d expired entries.\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func cacheTTLDays() int {
	if cfg.Enrich.CacheTTLDays <= 0 {
		return enrich.DefaultCacheTTLDays
	}
	return cfg.Enrich.CacheTTLDays
}
