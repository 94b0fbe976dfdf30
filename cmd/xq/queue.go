package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/expense-queue/internal/cli"
	"github.com/Veraticus/expense-queue/internal/config"
	"github.com/Veraticus/expense-queue/internal/export"
	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/queue"
	"github.com/Veraticus/expense-queue/internal/tui"
	"github.com/Veraticus/expense-queue/internal/tui/themes"
)

func queueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Triage the processing queue",
		Long: `Without a subcommand, opens the interactive queue. Subcommands give
scriptable access to the same actions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			return runQueueTUI(cmd.Context(), settings.API.BaseURL, settings)
		},
	}

	cmd.AddCommand(listQueueCmd())
	cmd.AddCommand(countQueueCmd())
	cmd.AddCommand(batchQueueCmd("discard", "Discard queue items", func(ctx context.Context, ctrl *queue.Controller) (*model.BatchResult, error) {
		return ctrl.DiscardSelected(ctx)
	}))
	cmd.AddCommand(batchQueueCmd("archive", "Archive queue items", func(ctx context.Context, ctrl *queue.Controller) (*model.BatchResult, error) {
		return ctrl.ArchiveSelected(ctx)
	}))
	cmd.AddCommand(batchQueueCmd("save", "Save complete queue items as expenses", func(ctx context.Context, ctrl *queue.Controller) (*model.BatchResult, error) {
		return ctrl.BulkSaveSelected(ctx)
	}))
	cmd.AddCommand(applyRulesCmd())
	cmd.AddCommand(duplicatesCmd())
	cmd.AddCommand(exportQueueCmd())

	return cmd
}

// controllerOptions maps the feature switches onto controller capabilities.
func controllerOptions(settings config.Settings) []queue.Option {
	opts := []queue.Option{queue.WithUpdateMode()}
	if settings.TUI.Filter {
		opts = append(opts, queue.WithFilterMode())
	}
	if settings.TUI.DuplicatesPage {
		opts = append(opts, queue.WithDuplicatesPage())
	}
	return opts
}

func runQueueTUI(ctx context.Context, baseURL string, settings config.Settings) error {
	client, err := clientFor(baseURL, settings)
	if err != nil {
		return err
	}

	restore, err := redirectLogs(settings)
	if err != nil {
		return err
	}
	defer restore()

	prompter := tui.NewPrompter()
	ctrl := queue.New(client, prompter, controllerOptions(settings)...)

	return tui.Run(ctx, ctrl, prompter,
		tui.WithCatalog(client),
		tui.WithTheme(themes.GetTheme(settings.TUI.Theme)),
		tui.WithDebounce(settings.TUI.Debounce),
	)
}

func listQueueCmd() *cobra.Command {
	var (
		filters filterFlags
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := filters.filter()
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}

			items, err := client.ListQueue(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list queue: %w", err)
			}
			categories, err := client.ListCategories(cmd.Context(), model.CategoryTypeAny)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, export.Rows(items, categories))
			}
			if len(items) == 0 {
				writeLine(out, cli.FormatInfo("Queue empty"))
				return nil
			}
			writeLine(out, renderQueue(items, categories))
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func renderQueue(items []model.QueueItem, categories []model.Category) string {
	rows := export.Rows(items, categories)
	table := make([][]string, 0, len(rows))
	for i, row := range rows {
		merchant := row.Merchant
		if merchant == "" {
			merchant = row.RawMerchant
		} else if row.MerchantSuggested {
			merchant = "~" + merchant
		}
		table = append(table, []string{
			fmt.Sprint(row.ID),
			row.Date,
			format.SignedCurrency(items[i].Amount, items[i].Currency),
			format.Truncate(format.Sanitize(merchant), 28),
			format.Sanitize(row.Category),
			row.Type,
			format.Tags(row.Tags),
		})
	}
	return cli.RenderTable([]string{"ID", "Date", "Amount", "Merchant", "Category", "Type", "Tags"}, table)
}

func countQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of queued items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			n, err := client.QueueCount(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to count queue: %w", err)
			}
			writeLine(cmd.OutOrStdout(), fmt.Sprint(n))
			return nil
		},
	}
}

type batchAction func(ctx context.Context, ctrl *queue.Controller) (*model.BatchResult, error)

func batchQueueCmd(use, short string, action batchAction) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   use + " [ids...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("pass item ids or --all")
			}
			client, err := newClient()
			if err != nil {
				return err
			}

			ctrl := queue.New(client, prompterFor(cmd))
			if err := ctrl.LoadAll(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load queue: %w", err)
			}
			if all {
				ctrl.SelectAll()
			} else if err := selectIDs(ctrl, args); err != nil {
				return err
			}

			ctx, stop := interruptible(cmd)
			defer stop()

			result, err := action(ctx, ctrl)
			if err != nil {
				return err
			}
			return reportBatch(cmd, result)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "apply to every queued item")
	return cmd
}

// selectIDs selects the given items on a loaded controller.
func selectIDs(ctrl *queue.Controller, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !ctrl.FocusID(id) {
			return fmt.Errorf("item %d is not in the queue", id)
		}
		if !ctrl.IsSelected(id) {
			ctrl.ToggleSelect()
		}
	}
	return nil
}

func reportBatch(cmd *cobra.Command, result *model.BatchResult) error {
	summary := capitalize(result.Summary())
	if !result.OK() {
		writeLine(cmd.ErrOrStderr(), cli.FormatWarning(summary))
		for _, failed := range result.Failed {
			writeLine(cmd.ErrOrStderr(), cli.SubtleStyle.Render("  "+failed.Error()))
		}
		return fmt.Errorf("%d of %d items failed", len(result.Failed), result.Attempted)
	}
	writeLine(cmd.OutOrStdout(), cli.FormatSuccess(summary))
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func applyRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply-rules",
		Short: "Run every active rule over the queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if err := confirm(cmd.Context(), prompterFor(cmd), "Apply rules to every queued item?"); err != nil {
				return err
			}

			ctrl := queue.New(client, nil)
			if _, err := ctrl.ApplyRules(cmd.Context()); err != nil {
				return fmt.Errorf("failed to apply rules: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(ctrl.Message()))
			writeLine(cmd.OutOrStdout(), cli.SubtleStyle.Render(fmt.Sprintf("%d items left in the queue", ctrl.Len())))
			return nil
		},
	}
}

func duplicatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "List queue items that look like duplicates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			sets, err := client.FindDuplicates(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to find duplicates: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(sets) == 0 {
				writeLine(out, cli.FormatInfo("No duplicates found"))
				return nil
			}
			for _, id := range model.DuplicateIDs(sets) {
				writeLine(out, renderDuplicateSet(sets[id]))
			}
			return nil
		},
	}
}

func renderDuplicateSet(set model.DuplicateSet) string {
	raw := set.RawExpense
	var b strings.Builder
	fmt.Fprintf(&b, "%s #%d %s %s %s\n",
		cli.TitleStyle.UnsetMargins().Render("Queue item"),
		raw.ID, raw.TransactionDate,
		format.SignedCurrency(raw.Amount, raw.Currency),
		format.Sanitize(raw.MerchantLabel()))
	for _, d := range set.Duplicates {
		kind := "queue"
		if d.Type == model.DuplicateSaved {
			kind = "saved"
		}
		fmt.Fprintf(&b, "  %s #%d %s %s %s\n",
			cli.SubtleStyle.Render(kind), d.ID, d.TransactionDate,
			format.SignedCurrency(d.Amount, raw.Currency),
			format.Sanitize(d.MerchantName))
	}
	return strings.TrimRight(b.String(), "\n")
}

func exportQueueCmd() *cobra.Command {
	var (
		filters   filterFlags
		formatArg string
		output    string
		delimiter string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export queue items as CSV, JSON or YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := filters.filter()
			if err != nil {
				return err
			}
			if formatArg == "" {
				formatArg = "csv"
				if output != "" && output != "-" {
					formatArg = filepath.Ext(output)
				}
			}
			exportFormat, err := export.ParseFormat(formatArg)
			if err != nil {
				return err
			}
			var opts export.Options
			if delimiter != "" {
				runes := []rune(delimiter)
				if len(runes) != 1 {
					return fmt.Errorf("--delimiter must be a single character")
				}
				opts.Delimiter = runes[0]
			}

			client, err := newClient()
			if err != nil {
				return err
			}
			items, err := client.ListQueue(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list queue: %w", err)
			}
			categories, err := client.ListCategories(cmd.Context(), model.CategoryTypeAny)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}

			if output == "" || output == "-" {
				return export.Write(cmd.OutOrStdout(), exportFormat, items, categories, opts)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := export.Write(f, exportFormat, items, categories, opts); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			writeLine(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Exported %d items to %s", len(items), output)))
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&formatArg, "format", "f", "", "csv, json or yaml (default: from the output extension, else csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "CSV field delimiter")
	return cmd
}
