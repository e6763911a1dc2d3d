package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/enrich"
	"github.com/sells-group/outreach-cli/internal/model"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show provider capabilities and priority order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		matrix := enrich.DefaultMatrix()
		if cfg.Routing.Table != "" {
			m, err := enrich.LoadMatrix(cfg.Routing.Table)
			if err != nil {
				return eris.Wrap(err, "load routing table")
			}
			matrix = m
		}

		registry := buildRegistry(cfg)
		configured := make(map[string]bool)
		for _, name := range registry.Names() {
			configured[name] = true
		}

		actions := []model.Action{
			model.ActionVerify,
			model.ActionFindPerson,
			model.ActionFindCompanyContact,
			model.ActionSearchPerson,
			model.ActionSearchCompany,
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ACTION\tPRIORITY ORDER")
		_, _ = fmt.Fprintln(w, "------\t--------------")
		for _, action := range actions {
			names := matrix.Order(action)
			marked := make([]string, 0, len(names))
			for _, name := range names {
				if configured[name] {
					marked = append(marked, name)
				} else {
					marked = append(marked, name+" (unconfigured)")
				}
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\n", action, strings.Join(marked, " > "))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
