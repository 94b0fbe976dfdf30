package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/expense-queue/internal/cli"
	"github.com/Veraticus/expense-queue/internal/format"
)

func periodicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "periodic",
		Aliases: []string{"recurring"},
		Short:   "Manage the names of recurring expenses",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list [query]",
		Short: "List periodic expenses",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			query := strings.Join(args, "")
			periodic, err := client.ListPeriodicExpenses(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to list periodic expenses: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(periodic) == 0 {
				writeLine(out, cli.FormatInfo("No periodic expenses"))
				return nil
			}
			rows := make([][]string, 0, len(periodic))
			for _, p := range periodic {
				rows = append(rows, []string{fmt.Sprint(p.ID), format.Sanitize(p.Name)})
			}
			writeLine(out, cli.RenderTable([]string{"ID", "Name"}, rows))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a periodic expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			p, err := client.CreatePeriodicExpense(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to create periodic expense: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created periodic expense %q (ID: %d)", p.Name, p.ID)))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "suggest <name>",
		Short: "Find the periodic expense a name most likely refers to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			s, err := client.SuggestPeriodicExpense(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to suggest periodic expense: %w", err)
			}
			out := cmd.OutOrStdout()
			if s.Suggestion == nil {
				writeLine(out, cli.FormatInfo(fmt.Sprintf("No periodic expense looks like %q", args[0])))
				return nil
			}
			writeLine(out, cli.FormatSuccess(fmt.Sprintf("%s (%d%% match)", format.Sanitize(*s.Suggestion), s.Confidence)))
			return nil
		},
	})

	return cmd
}
