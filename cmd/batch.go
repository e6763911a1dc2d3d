package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/enrich"
	"github.com/sells-group/outreach-cli/internal/leads"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/notion"
)

var (
	batchInput       string
	batchXLSX        string
	batchNotion      bool
	batchOutput      string
	batchLimit       int
	batchConcurrency int
	batchVerify      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch enrich leads from CSV, XLSX, or the Notion queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnrich(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		records, err := loadBatchRecords(ctx, env)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			zap.L().Info("no leads to process")
			return nil
		}

		if batchLimit > 0 && len(records) > batchLimit {
			records = records[:batchLimit]
		}

		for i := range records {
			leads.Normalize(&records[i])
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Enrich.Concurrency
		}

		exec := enrich.NewExecutor(env.Matrix, env.Registry, env.Cache,
			enrich.WithConcurrency(concurrency),
			enrich.WithBudget(budget()),
			enrich.WithStore(env.Store),
			enrich.WithRouterOptions(enrich.WithVerifyExisting(batchVerify || cfg.Enrich.VerifyExisting)),
			enrich.WithProgress(func(done, total int) {
				if done%25 == 0 || done == total {
					zap.L().Info("batch progress", zap.Int("done", done), zap.Int("total", total))
				}
			}),
		)

		results, summary, err := exec.Run(ctx, records)
		if err != nil {
			return eris.Wrap(err, "batch run")
		}

		if batchNotion && env.Notion != nil {
			writeBackNotion(ctx, env.Notion, records, results)
		}

		if batchOutput != "" {
			if err := writeEnrichedOutput(batchOutput, records, results); err != nil {
				return err
			}
			zap.L().Info("enriched file written", zap.String("path", batchOutput))
		}

		zap.L().Info("batch complete",
			zap.String("run_id", summary.RunID),
			zap.Int("total", summary.Total),
			zap.Int("enriched", summary.Enriched),
			zap.Int("verified", summary.Verified),
			zap.Int("no_candidates", summary.NoCandidates),
			zap.Int("errors", summary.Errors),
		)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "path to a lead CSV file")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "path to a lead XLSX file")
	batchCmd.Flags().BoolVar(&batchNotion, "notion", false, "pull queued leads from the Notion lead database")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "path for the enriched CSV output")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of leads to process (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "worker count (default from config)")
	batchCmd.Flags().BoolVar(&batchVerify, "verify-existing", false, "verify pre-supplied emails instead of trusting them")
	rootCmd.AddCommand(batchCmd)
}

// loadBatchRecords reads leads from whichever input source was selected.
func loadBatchRecords(ctx context.Context, env *enrichEnv) ([]model.Record, error) {
	switch {
	case batchInput != "":
		f, err := os.Open(batchInput)
		if err != nil {
			return nil, eris.Wrap(err, "batch: open input")
		}
		defer f.Close()
		return leads.ReadCSV(f)
	case batchXLSX != "":
		return leads.ReadXLSX(batchXLSX)
	case batchNotion:
		if err := cfg.Validate("notion"); err != nil {
			return nil, err
		}
		if env.Notion == nil {
			return nil, eris.New("batch: notion is not configured")
		}
		pages, err := notion.QueryQueuedLeads(ctx, env.Notion, cfg.Notion.LeadDB)
		if err != nil {
			return nil, eris.Wrap(err, "batch: query queued leads")
		}
		records := make([]model.Record, 0, len(pages))
		for _, page := range pages {
			records = append(records, leadToRecord(page))
		}
		return records, nil
	default:
		return nil, eris.New("batch: one of --input, --xlsx, --notion is required")
	}
}

func leadToRecord(page notionapi.Page) model.Record {
	rec := model.Record{
		NotionPageID: string(page.ID),
	}

	if prop, ok := page.Properties["Company"]; ok {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			for _, rt := range tp.Title {
				rec.Company += rt.PlainText
			}
		}
	}

	if prop, ok := page.Properties["Domain"]; ok {
		if up, ok := prop.(*notionapi.URLProperty); ok {
			rec.Domain = up.URL
		}
	}

	if prop, ok := page.Properties["Contact"]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			for _, rt := range rtp.RichText {
				rec.FullName += rt.PlainText
			}
		}
	}

	if prop, ok := page.Properties["Email"]; ok {
		if ep, ok := prop.(*notionapi.EmailProperty); ok {
			rec.Email = ep.Email
		}
	}

	rec.Company = strings.TrimSpace(rec.Company)
	rec.Domain = strings.TrimSpace(rec.Domain)
	rec.FullName = strings.TrimSpace(rec.FullName)
	rec.Email = strings.TrimSpace(rec.Email)

	return rec
}

// writeBackNotion updates lead pages with their resolution outcome. Failures
// are logged and skipped so one bad page never aborts the batch.
func writeBackNotion(ctx context.Context, client notion.Client, records []model.Record, results []model.Result) {
	for i, rec := range records {
		if rec.NotionPageID == "" {
			continue
		}
		status := notion.StatusFailed
		if results[i].Outcome.Success() {
			status = notion.StatusEnriched
		}
		if err := notion.UpdateLeadStatus(ctx, client, rec.NotionPageID, status, results[i].Email); err != nil {
			zap.L().Warn("notion status update failed",
				zap.String("page_id", rec.NotionPageID),
				zap.Error(err),
			)
		}
	}
}

func writeEnrichedOutput(path string, records []model.Record, results []model.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "batch: create output")
	}
	defer f.Close()

	if err := leads.WriteEnrichedCSV(f, records, results); err != nil {
		return err
	}
	return f.Sync()
}
