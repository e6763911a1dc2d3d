package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/enrich"
	"github.com/sells-group/outreach-cli/internal/leads"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
)

var (
	enrichEmail     string
	enrichDomain    string
	enrichCompany   string
	enrichFirstName string
	enrichLastName  string
	enrichFullName  string
	enrichVerify    bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Resolve an email for a single lead",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnrich(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rec := model.Record{
			Email:     enrichEmail,
			Domain:    enrichDomain,
			Company:   enrichCompany,
			FirstName: enrichFirstName,
			LastName:  enrichLastName,
			FullName:  enrichFullName,
		}
		leads.Normalize(&rec)

		if rec.Email == "" && rec.Domain == "" && rec.Company == "" {
			return eris.New("enrich: at least one of --email, --domain, --company is required")
		}

		breaker := resilience.NewBatchBreaker()
		router := enrich.NewRouter(env.Matrix, env.Registry, env.Cache, breaker,
			enrich.WithVerifyExisting(enrichVerify || cfg.Enrich.VerifyExisting),
		)

		result := enrich.ResolveWithBudget(ctx, router, rec, budget())

		zap.L().Info("resolution complete",
			zap.String("action", string(result.Action)),
			zap.String("outcome", string(result.Outcome)),
			zap.String("source", result.Source),
			zap.Int64("duration_ms", result.DurationMs),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichEmail, "email", "", "pre-supplied email to verify or pass through")
	enrichCmd.Flags().StringVar(&enrichDomain, "domain", "", "company domain")
	enrichCmd.Flags().StringVar(&enrichCompany, "company", "", "company name")
	enrichCmd.Flags().StringVar(&enrichFirstName, "first-name", "", "contact first name")
	enrichCmd.Flags().StringVar(&enrichLastName, "last-name", "", "contact last name")
	enrichCmd.Flags().StringVar(&enrichFullName, "full-name", "", "contact full name")
	enrichCmd.Flags().BoolVar(&enrichVerify, "verify-existing", false, "verify pre-supplied emails instead of trusting them")
	rootCmd.AddCommand(enrichCmd)
}
