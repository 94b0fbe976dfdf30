package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/emulator"
	"github.com/Veraticus/expense-queue/internal/storage"
)

func emulatorCmd() *cobra.Command {
	var (
		seed  bool
		token string
	)

	cmd := &cobra.Command{
		Use:   "emulator",
		Short: "Serve a local copy of the expense API",
		Long: `Runs the expense API contract over a SQLite database so xq can be
tried without the real server. Point clients at it with --base-url.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openEmulatorStore(ctx, settings.Emulator.Database, seed)
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					slog.Warn("Failed to close emulator database", "error", err)
				}
			}()

			srv, err := emulator.Listen(settings.Emulator.Addr, emulator.NewRouter(st, emulator.Options{Token: token}))
			if err != nil {
				return err
			}
			slog.Info("Emulator database", "path", st.Path())
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default: emulator.addr)")
	cmd.Flags().String("db", "", "SQLite database path, or :memory: (default: emulator.database)")
	cmd.Flags().BoolVar(&seed, "seed", false, "fill an empty database with demo data")
	cmd.Flags().StringVar(&token, "token", "", "require this bearer token")
	_ = viper.BindPFlag("emulator.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("emulator.database", cmd.Flags().Lookup("db"))

	return cmd
}

// openEmulatorStore opens and migrates the emulator database, seeding it
// when asked and the queue is empty.
func openEmulatorStore(ctx context.Context, path string, seed bool) (*storage.SQLiteStorage, error) {
	st, err := storage.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open emulator database: %w", err)
	}
	if !seed {
		return st, nil
	}

	n, err := st.QueueCount(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if n > 0 {
		slog.Info("Database already has queue items, skipping seed", "count", n)
		return st, nil
	}
	if err := emulator.Seed(ctx, st, time.Now()); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Open the queue against a seeded in-memory emulator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			st, err := openEmulatorStore(ctx, storage.MemoryPath, true)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			srv, err := emulator.Listen("127.0.0.1:0", emulator.NewRouter(st, emulator.Options{}))
			if err != nil {
				return err
			}
			serveErr := make(chan error, 1)
			go func() { serveErr <- srv.Serve(ctx) }()

			settings.API.Token = ""
			client, err := clientFor(srv.URL(), settings)
			if err != nil {
				return err
			}
			err = common.WithRetry(ctx, func() error {
				_, err := client.QueueCount(ctx)
				return err
			}, common.RetryOptions{MaxAttempts: 5, InitialDelay: 50 * time.Millisecond})
			if err != nil {
				return fmt.Errorf("emulator did not start: %w", err)
			}

			tuiErr := runQueueTUI(ctx, srv.URL(), settings)
			cancel()
			if err := <-serveErr; err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("Emulator stopped with error", "error", err)
			}
			return tuiErr
		},
	}
}
