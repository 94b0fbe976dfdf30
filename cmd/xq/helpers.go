package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/expense-queue/internal/api"
	"github.com/Veraticus/expense-queue/internal/cli"
	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/config"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/service"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// loadSettings validates the merged flag, env and file configuration.
func loadSettings() (config.Settings, error) {
	return config.Load(viper.GetViper())
}

// newClient builds the API client from configuration.
func newClient() (*api.Client, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return clientFor(settings.API.BaseURL, settings)
}

func clientFor(baseURL string, settings config.Settings) (*api.Client, error) {
	opts := []api.Option{api.WithTimeout(settings.API.Timeout)}
	if settings.API.Token != "" {
		opts = append(opts, api.WithToken(settings.API.Token))
	}
	return api.NewClient(baseURL, opts...)
}

// prompterFor returns the confirmation prompter for line-oriented commands.
func prompterFor(cmd *cobra.Command) service.Prompter {
	if viper.GetBool("yes") {
		return service.AutoConfirm{}
	}
	return cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
}

// confirm asks before a destructive command, mapping a decline onto ErrCancelled.
func confirm(ctx context.Context, prompter service.Prompter, message string) error {
	ok, err := prompter.Confirm(ctx, message)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrCancelled
	}
	return nil
}

// interruptible wraps the command context for operations that commit item by
// item, so an interrupt reports what was left undone.
func interruptible(cmd *cobra.Command) (context.Context, func()) {
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context(), true)
	return ctx, handler.Stop
}

// redirectLogs sends slog output to the configured log file while a
// full-screen program owns the terminal.
func redirectLogs(settings config.Settings) (func(), error) {
	path := settings.Logging.File
	if path == "" {
		common.SetupLogger(io.Discard, common.ParseLevel(settings.Logging.Level), settings.Logging.Format)
		return func() {}, nil
	}
	if err := config.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	common.SetupLogger(f, common.ParseLevel(settings.Logging.Level), settings.Logging.Format)
	return func() {
		common.SetupLogger(os.Stderr, common.ParseLevel(settings.Logging.Level), settings.Logging.Format)
		if err := f.Close(); err != nil {
			slog.Warn("Failed to close log file", "error", err)
		}
	}, nil
}

// parseIDs converts positional arguments into item IDs.
func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid id %q", part)
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, common.ErrNoTargets
	}
	return ids, nil
}

func parseID(arg string) (int, error) {
	ids, err := parseIDs([]string{arg})
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, fmt.Errorf("expected a single id, got %q", arg)
	}
	return ids[0], nil
}

// optionalID parses a flag that names an ID, treating 0 as unset.
func optionalID(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

// filterFlags holds the queue filter flags.
type filterFlags struct {
	from   string
	to     string
	min    string
	max    string
	source string
	search string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "earliest transaction date (2006-01-02)")
	cmd.Flags().StringVar(&f.to, "to", "", "latest transaction date (2006-01-02)")
	cmd.Flags().StringVar(&f.min, "min", "", "minimum absolute amount")
	cmd.Flags().StringVar(&f.max, "max", "", "maximum absolute amount")
	cmd.Flags().StringVar(&f.source, "source", "", "import source")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "text matched against merchant and description")
}

func (f *filterFlags) filter() (model.QueueFilter, error) {
	filter := model.QueueFilter{
		DateFrom: f.from,
		DateTo:   f.to,
		Source:   f.source,
		Search:   f.search,
	}
	for _, d := range []string{f.from, f.to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, d); err != nil {
			return filter, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", d)
		}
	}
	if f.from != "" && f.to != "" && f.from > f.to {
		return filter, fmt.Errorf("--from %s is after --to %s", f.from, f.to)
	}
	var err error
	if filter.AmountMin, err = amountFlag("--min", f.min); err != nil {
		return filter, err
	}
	if filter.AmountMax, err = amountFlag("--max", f.max); err != nil {
		return filter, err
	}
	if filter.AmountMin != nil && filter.AmountMax != nil && filter.AmountMin.GreaterThan(*filter.AmountMax) {
		return filter, fmt.Errorf("--min is above --max")
	}
	return filter, nil
}

func amountFlag(name, v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("invalid %s amount %q", name, v)
	}
	d = d.Abs()
	return &d, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLine(w io.Writer, s string) {
	if _, err := fmt.Fprintln(w, s); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}
