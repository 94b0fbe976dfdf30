package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/testutil"
)

func TestMerchantSource(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.Merchants = []model.Merchant{
		{ID: 1, DisplayName: "Tesco", RawName: "TESCO STORES 2231"},
		{ID: 2, DisplayName: "Pret", RawName: "pret"},
	}
	src := merchantSource{api: api}

	results, err := src.Search(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "TESCO STORES 2231", results[0].Detail)
	assert.Empty(t, results[1].Detail)

	created, err := src.Create(context.Background(), "Corner Shop")
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", created.Label)
	assert.NotZero(t, created.ID)
}

func TestTagSource(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.Tags = []model.Tag{{ID: 3, Name: "work"}, {ID: 4, Name: "holiday"}}
	src := tagSource{api: api}

	results, err := src.Search(context.Background(), "ho")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 4, results[0].ID)

	created, err := src.Create(context.Background(), "gift")
	require.NoError(t, err)
	assert.Equal(t, "gift", created.Label)
}

func TestSourcesWithoutCatalog(t *testing.T) {
	_, err := merchantSource{}.Search(context.Background(), "x")
	require.ErrorIs(t, err, errNoCatalog)

	_, err = tagSource{}.Create(context.Background(), "x")
	require.ErrorIs(t, err, errNoCatalog)
}
