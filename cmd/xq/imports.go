package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/expense-queue/internal/cli"
	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upload bank exports and process them into the queue",
	}

	cmd.AddCommand(uploadImportCmd())
	cmd.AddCommand(uploadTicketsCmd())
	cmd.AddCommand(importHistoryCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "process",
		Short: "Process newly uploaded files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			result, err := client.ProcessImports(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to process imports: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(importSummary(result)))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "process-all",
		Short: "Reprocess every uploaded file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if err := confirm(cmd.Context(), prompterFor(cmd), "Reprocess every uploaded file?"); err != nil {
				return err
			}
			result, err := client.ProcessAllImports(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to process imports: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(importSummary(result)))
			return nil
		},
	})

	return cmd
}

func importSummary(result model.ImportResult) string {
	var b strings.Builder
	if result.Message != "" {
		b.WriteString(format.Sanitize(result.Message))
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%d imported, %d skipped", result.Imported, result.Skipped)
	if result.Processed > 0 {
		fmt.Fprintf(&b, ", %d processed", result.Processed)
	}
	return b.String()
}

func uploadImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <files...>",
		Short: "Upload spreadsheet exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			ctx, stop := interruptible(cmd)
			defer stop()

			progress := cli.NewProgress(cmd.ErrOrStderr(), len(args), "Uploading files")
			var (
				imported int
				failures []string
			)
			for _, path := range args {
				if err := ctx.Err(); err != nil {
					progress.Finish()
					return err
				}
				result, err := uploadFile(ctx, client, path)
				progress.Step(err)
				if err != nil {
					failures = append(failures, fmt.Sprintf("%s: %v", filepath.Base(path), err))
					continue
				}
				imported += result.Imported
			}
			progress.Finish()

			for _, f := range failures {
				writeLine(cmd.ErrOrStderr(), cli.FormatError(f))
			}
			if progress.Done() > 0 {
				writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Uploaded %d of %d files, %d transactions imported", progress.Done(), len(args), imported)))
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d of %d uploads failed", len(failures), len(args))
			}
			return nil
		},
	}
}

func uploadFile(ctx context.Context, client service.ImportAPI, path string) (model.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.ImportResult{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return client.UploadImport(ctx, filepath.Base(path), f)
}

func uploadTicketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tickets <photos...>",
		Short: "Upload receipt photos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			ctx, stop := interruptible(cmd)
			defer stop()

			result, err := client.UploadTickets(ctx, args)
			if err != nil {
				return fmt.Errorf("failed to upload tickets: %w", err)
			}
			out := cmd.OutOrStdout()
			writeLine(out, cli.FormatSuccess(format.Sanitize(result.Message)))
			for _, f := range result.Files {
				writeLine(out, cli.SubtleStyle.Render("  "+format.Sanitize(f)))
			}
			return nil
		},
	}
}

func importHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List past uploads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			records, err := client.ImportHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load import history: %w", err)
			}
			if len(records) == 0 {
				writeLine(cmd.OutOrStdout(), cli.FormatInfo("No imports yet"))
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				status := r.Status
				if r.ErrorMessage != "" {
					status += ": " + format.Sanitize(r.ErrorMessage)
				}
				rows = append(rows, []string{
					fmt.Sprint(r.ID),
					r.ImportedAt.Format("2006-01-02 15:04"),
					format.Sanitize(r.Filename),
					fmt.Sprint(r.RecordsImported),
					fmt.Sprint(r.RecordsSkipped),
					status,
				})
			}
			writeLine(cmd.OutOrStdout(), cli.RenderTable([]string{"ID", "Imported", "File", "Records", "Skipped", "Status"}, rows))
			return nil
		},
	}
}

func notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Turn captured payment notifications into queue items",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "parse-all",
		Short: "Parse every pending notification",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			result, err := client.ParseNotifications(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to parse notifications: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Parsed %d notifications", result.Parsed)))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "accept-all",
		Short: "Accept every parsed notification into the queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			result, err := client.AcceptAllNotifications(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to accept notifications: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Accepted %d notifications", result.Accepted)))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "discard <id>",
		Short: "Discard a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			if err := client.DiscardNotification(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to discard notification: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Discarded notification #%d", id)))
			return nil
		},
	})

	return cmd
}

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Browse and correct saved expenses",
	}

	cmd.AddCommand(listExpensesCmd())
	cmd.AddCommand(showExpenseCmd())
	cmd.AddCommand(updateExpenseCmd())
	cmd.AddCommand(deleteExpenseCmd())

	return cmd
}

func listExpensesCmd() *cobra.Command {
	var (
		filter     model.ExpenseFilter
		categoryID int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.CategoryID = optionalID(categoryID)
			client, err := newClient()
			if err != nil {
				return err
			}
			page, err := client.ListExpenses(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, page)
			}
			if len(page.Expenses) == 0 {
				writeLine(out, cli.FormatInfo("No expenses match"))
				return nil
			}
			rows := make([][]string, 0, len(page.Expenses))
			for _, e := range page.Expenses {
				rows = append(rows, []string{
					fmt.Sprint(e.ID),
					e.TransactionDate,
					format.SignedCurrency(e.Amount, e.Currency),
					format.Sanitize(expenseMerchant(e)),
					format.Sanitize(expenseCategory(e)),
					string(e.Type),
				})
			}
			writeLine(out, cli.RenderTable([]string{"ID", "Date", "Amount", "Merchant", "Category", "Type"}, rows))
			writeLine(out, cli.SubtleStyle.Render(fmt.Sprintf("%d-%d of %d", page.Skip+1, page.Skip+len(page.Expenses), page.Total)))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.DateFrom, "from", "", "earliest transaction date (2006-01-02)")
	cmd.Flags().StringVar(&filter.DateTo, "to", "", "latest transaction date (2006-01-02)")
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "text matched against merchant and description")
	cmd.Flags().IntVar(&categoryID, "category", 0, "category id")
	cmd.Flags().IntVar(&filter.Skip, "skip", 0, "expenses to skip")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "page size")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func expenseMerchant(e model.Expense) string {
	if e.MerchantAlias != nil {
		return e.MerchantAlias.DisplayName
	}
	return ""
}

func expenseCategory(e model.Expense) string {
	if e.Category != nil {
		return e.Category.Name
	}
	return ""
}

func showExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			e, err := client.GetExpense(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get expense: %w", err)
			}

			tags := make([]string, 0, len(e.Tags))
			for _, t := range e.Tags {
				tags = append(tags, t.Name)
			}
			lines := []string{
				fmt.Sprintf("Date:     %s", format.Date(e.TransactionDate)),
				fmt.Sprintf("Amount:   %s", format.SignedCurrency(e.Amount, e.Currency)),
				fmt.Sprintf("Merchant: %s", format.Sanitize(expenseMerchant(e))),
				fmt.Sprintf("Category: %s", format.Sanitize(expenseCategory(e))),
				fmt.Sprintf("Type:     %s", e.Type),
				fmt.Sprintf("Tags:     %s", format.Tags(tags)),
			}
			if e.Description != "" {
				lines = append(lines, fmt.Sprintf("Note:     %s", format.Sanitize(e.Description)))
			}
			if e.Archived {
				lines = append(lines, cli.SubtleStyle.Render("archived"))
			}
			writeLine(cmd.OutOrStdout(), cli.RenderBox(fmt.Sprintf("Expense #%d", e.ID), strings.Join(lines, "\n")))
			return nil
		},
	}
}

type expenseFlags struct {
	description string
	notes       string
	date        string
	typ         string
	tags        []string
	category    int
	merchant    int
}

// update builds an ExpenseUpdate from the flags the user actually passed.
func (f *expenseFlags) update(cmd *cobra.Command) (model.ExpenseUpdate, error) {
	var u model.ExpenseUpdate
	changed := cmd.Flags().Changed
	if changed("description") {
		u.Description = &f.description
	}
	if changed("notes") {
		u.Notes = &f.notes
	}
	if changed("date") {
		if _, err := time.Parse(model.DateLayout, f.date); err != nil {
			return u, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", f.date)
		}
		u.TransactionDate = &f.date
	}
	if changed("type") {
		typ, err := model.ParseExpenseType(f.typ)
		if err != nil {
			return u, err
		}
		u.Type = &typ
	}
	if changed("category") {
		u.CategoryID = &f.category
	}
	if changed("merchant") {
		u.MerchantAliasID = &f.merchant
	}
	if changed("tags") {
		tags := make([]string, 0, len(f.tags))
		for _, t := range f.tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		u.Tags = &tags
	}
	return u, nil
}

func updateExpenseCmd() *cobra.Command {
	var flags expenseFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Correct a saved expense",
		Example: `  xq expenses update 12 --category 4 --tags work,travel
  xq expenses update 12 --tags ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			update, err := flags.update(cmd)
			if err != nil {
				return err
			}
			if update.IsZero() {
				return fmt.Errorf("nothing to update: pass --description, --notes, --date, --type, --category, --merchant or --tags")
			}
			client, err := newClient()
			if err != nil {
				return err
			}

			e, err := client.UpdateExpense(cmd.Context(), id, update)
			if err != nil {
				return fmt.Errorf("failed to update expense: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated expense #%d (%s %s)", e.ID, format.Date(e.TransactionDate), format.SignedCurrency(e.Amount, e.Currency))))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.description, "description", "", "description")
	cmd.Flags().StringVar(&flags.notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&flags.date, "date", "", "transaction date (2006-01-02)")
	cmd.Flags().StringVar(&flags.typ, "type", "", "fixed, necessary variable or discretionary")
	cmd.Flags().IntVar(&flags.category, "category", 0, "category id")
	cmd.Flags().IntVar(&flags.merchant, "merchant", 0, "merchant alias id")
	cmd.Flags().StringSliceVar(&flags.tags, "tags", nil, "replace the tags, comma separated")
	return cmd
}

func deleteExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			if err := confirm(cmd.Context(), prompterFor(cmd), fmt.Sprintf("Delete expense #%d?", id)); err != nil {
				return err
			}
			if err := client.DeleteExpense(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete expense: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted expense #%d", id)))
			return nil
		},
	}
}
