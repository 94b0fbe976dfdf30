package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/testutil"
)

func exportItems() []model.QueueItem {
	return []model.QueueItem{
		testutil.NewItem(1, "-42.1",
			testutil.WithRawMerchant("TESCO STORES 3021"),
			testutil.WithSuggestedMerchant(9, "Tesco"),
			testutil.WithSuggestedCategory(4),
			testutil.WithTags("food", "weekly"),
		),
		testutil.NewItem(2, "1500", testutil.WithCategory(5, "Salary")),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "csv", want: FormatCSV},
		{in: ".JSON", want: FormatJSON},
		{in: "yml", want: FormatYAML},
		{in: "yaml", want: FormatYAML},
		{in: "xlsx", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRows(t *testing.T) {
	rows := Rows(exportItems(), testutil.Categories())
	require.Len(t, rows, 2)

	assert.Equal(t, "-42.10", rows[0].Amount)
	assert.Equal(t, "Tesco", rows[0].Merchant)
	assert.True(t, rows[0].MerchantSuggested)
	assert.Equal(t, "4", rows[0].CategoryID)
	assert.Equal(t, "Supermarket", rows[0].Category)
	assert.Equal(t, "food;weekly", rows[0].TagList)

	assert.Equal(t, "1500.00", rows[1].Amount)
	assert.Empty(t, rows[1].Merchant)
	assert.Equal(t, "Salary", rows[1].Category)
	assert.Equal(t, []string{}, rows[1].Tags)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, exportItems(), testutil.Categories(), Options{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,date,amount,currency,raw_merchant,merchant,merchant_suggested,category_id,category,type,description,raw_description,source,tags", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,2024-03-01,-42.10,GBP,TESCO STORES 3021,Tesco,true,4,Supermarket,"))
	assert.True(t, strings.HasSuffix(lines[1], ",food;weekly"))

	buf.Reset()
	require.NoError(t, Write(&buf, FormatCSV, exportItems(), nil, Options{Delimiter: ';'}))
	assert.True(t, strings.HasPrefix(buf.String(), "id;date;amount"))
}

func TestWriteJSONAndYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, exportItems(), testutil.Categories(), Options{}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "-42.10", decoded[0]["amount"])
	assert.Equal(t, []any{"food", "weekly"}, decoded[0]["tags"])
	assert.NotContains(t, decoded[0], "TagList")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatYAML, exportItems(), testutil.Categories(), Options{}))

	var rows []Row
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Tesco", rows[0].Merchant)
	assert.Equal(t, []string{"food", "weekly"}, rows[0].Tags)
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Format("xml"), exportItems(), nil, Options{}))
}
