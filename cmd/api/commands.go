package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"placement/api/internal/app"
	"placement/api/internal/config"
	"placement/api/internal/store"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, _, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo users and sample companies",
		Long: `Create the Admin, Manager and Officer demo accounts and two sample
companies. Existing users are left alone and companies are only added to an
empty table, so running seed twice is safe.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, dataStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			service := app.New(cfg, dataStore, app.Options{Logger: newLogger(cfg)})
			result, err := service.Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d companies\n", result.Users, result.Companies)
			return nil
		},
	}
}

func newProposalsCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:     "proposals",
		Aliases: []string{"pending"},
		Short:   "List proposed company updates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := store.ProposalFilter{Status: store.ProposalStatus(status)}
			if status != "" && !filter.Status.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, dataStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			items, err := dataStore.ListProposals(cmd.Context(), filter)
			if err != nil {
				return err
			}
			renderProposals(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (pending, approved, rejected)")
	return cmd
}

func renderProposals(w io.Writer, items []store.Proposal) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"ID", "Company", "Officer", "Fields", "Status", "Reviewed By", "Created"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 40},
		{Number: 5, Align: text.AlignCenter},
	})
	for _, item := range items {
		reviewer := "-"
		if item.ReviewedBy != nil {
			reviewer = item.ReviewedByName
		}
		t.AppendRow(table.Row{
			item.ID,
			item.CompanyName,
			item.OfficerName,
			fmt.Sprint(item.Requested.Keys()),
			string(item.Status),
			reviewer,
			item.CreatedAt.Local().Format(time.DateTime),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d total", len(items))})
	t.Render()
}
