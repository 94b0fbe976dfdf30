package testutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-queue/internal/api"
	"github.com/Veraticus/expense-queue/internal/emulator"
	"github.com/Veraticus/expense-queue/internal/storage"
)

// SeedTime is the clock the seeded emulator dates its demo data from.
var SeedTime = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// Emulator is an in-memory emulator served over httptest.
type Emulator struct {
	Store  *storage.SQLiteStorage
	Server *httptest.Server
	Client *api.Client
}

// NewEmulator starts an empty emulator, closed when the test ends.
func NewEmulator(t *testing.T) *Emulator {
	t.Helper()
	st, err := storage.Open(context.Background(), storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := httptest.NewServer(emulator.NewRouter(st, emulator.Options{}))
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL)
	require.NoError(t, err)
	return &Emulator{Store: st, Server: srv, Client: client}
}

// NewSeededEmulator starts an emulator filled with the demo data.
func NewSeededEmulator(t *testing.T) *Emulator {
	t.Helper()
	e := NewEmulator(t)
	require.NoError(t, emulator.Seed(context.Background(), e.Store, SeedTime))
	return e
}
