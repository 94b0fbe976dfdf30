package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/Veraticus/expense-queue/internal/config"
	"github.com/Veraticus/expense-queue/internal/export"
	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/testutil"
)

// useEmulator points the global configuration at a seeded emulator.
func useEmulator(t *testing.T, autoConfirm bool) *testutil.Emulator {
	t.Helper()
	viper.Reset()
	config.SetDefaults(viper.GetViper())
	t.Cleanup(func() {
		viper.Reset()
		config.SetDefaults(viper.GetViper())
	})

	e := testutil.NewSeededEmulator(t)
	viper.Set("api.base_url", e.Server.URL)
	viper.Set("yes", autoConfirm)
	return e
}

// run executes cmd with args, returning stdout and stderr.
func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func queueIDs(t *testing.T, e *testutil.Emulator, search string) []int {
	t.Helper()
	items, err := e.Client.ListQueue(context.Background(), model.QueueFilter{Search: search})
	require.NoError(t, err)
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []int
		wantErr error
	}{
		{name: "separate args", args: []string{"3", "7"}, want: []int{3, 7}},
		{name: "comma list", args: []string{"3,7, 9"}, want: []int{3, 7, 9}},
		{name: "empty", args: []string{" , "}, wantErr: common.ErrNoTargets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDs(tt.args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseIDs([]string{"-1"})
	require.Error(t, err)
	_, err = parseIDs([]string{"abc"})
	require.Error(t, err)
	_, err = parseID("1,2")
	require.Error(t, err)
}

func TestFilterFlags(t *testing.T) {
	tests := []struct {
		name    string
		flags   filterFlags
		wantErr string
	}{
		{name: "empty", flags: filterFlags{}},
		{name: "full", flags: filterFlags{from: "2024-03-01", to: "2024-03-31", min: "-5", max: "50", search: "tesco"}},
		{name: "bad date", flags: filterFlags{from: "01/03/2024"}, wantErr: "invalid date"},
		{name: "reversed dates", flags: filterFlags{from: "2024-04-01", to: "2024-03-01"}, wantErr: "is after"},
		{name: "bad amount", flags: filterFlags{min: "five"}, wantErr: "invalid --min amount"},
		{name: "min above max", flags: filterFlags{min: "10", max: "5"}, wantErr: "--min is above --max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.flags.filter()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.flags.min != "" {
				require.NotNil(t, f.AmountMin)
				assert.False(t, f.AmountMin.IsNegative())
			}
		})
	}
}

func TestQueueList(t *testing.T) {
	useEmulator(t, true)

	out, _, err := run(t, queueCmd(), "", "list", "--search", "dishoom")

	require.NoError(t, err)
	assert.Contains(t, out, "DISHOOM KINGS X")
	assert.Contains(t, out, "-£38.00")
	assert.NotContains(t, out, "TESCO")
}

func TestQueueListJSON(t *testing.T) {
	useEmulator(t, true)

	out, _, err := run(t, queueCmd(), "", "list", "--json")

	require.NoError(t, err)
	var rows []export.Row
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 15)
}

func TestQueueCount(t *testing.T) {
	useEmulator(t, true)

	out, _, err := run(t, queueCmd(), "", "count")

	require.NoError(t, err)
	assert.Equal(t, "15\n", out)
}

func TestQueueDiscard(t *testing.T) {
	e := useEmulator(t, true)
	ids := queueIDs(t, e, "dishoom")
	require.Len(t, ids, 2)

	out, _, err := run(t, queueCmd(), "", "discard", fmt.Sprint(ids[0]), fmt.Sprint(ids[1]))

	require.NoError(t, err)
	assert.Contains(t, out, "2 of 2")
	assert.Empty(t, queueIDs(t, e, "dishoom"))
}

func TestQueueDiscardPrompts(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		wantErr   error
		remaining int
	}{
		{name: "declined", answer: "n\n", wantErr: common.ErrCancelled, remaining: 1},
		{name: "accepted", answer: "y\n", remaining: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := useEmulator(t, false)
			ids := queueIDs(t, e, "paypal")
			require.Len(t, ids, 1)

			_, stderr, err := run(t, queueCmd(), tt.answer, "discard", fmt.Sprint(ids[0]))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, stderr, "Discard 1 item? [y/N]")
			assert.Len(t, queueIDs(t, e, "paypal"), tt.remaining)
		})
	}
}

func TestQueueDiscardUnknownID(t *testing.T) {
	useEmulator(t, true)

	_, _, err := run(t, queueCmd(), "", "discard", "99999")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the queue")
}

func TestQueueBatchNeedsTargets(t *testing.T) {
	useEmulator(t, true)

	_, _, err := run(t, queueCmd(), "", "archive")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--all")
}

func TestQueueSaveRequiresCompleteItems(t *testing.T) {
	e := useEmulator(t, true)
	ids := queueIDs(t, e, "paypal")

	_, _, err := run(t, queueCmd(), "", "save", fmt.Sprint(ids[0]))

	require.ErrorIs(t, err, common.ErrIncompleteItems)
}

func TestQueueSaveSuggested(t *testing.T) {
	e := useEmulator(t, true)
	ids := queueIDs(t, e, "trainline")
	require.Len(t, ids, 1)

	out, _, err := run(t, queueCmd(), "", "save", fmt.Sprint(ids[0]))

	require.NoError(t, err)
	assert.Contains(t, out, "1 of 1")
	assert.Empty(t, queueIDs(t, e, "trainline"))
}

func TestQueueExport(t *testing.T) {
	useEmulator(t, true)
	dir := t.TempDir()
	path := filepath.Join(dir, "queue.yaml")

	_, stderr, err := run(t, queueCmd(), "", "export", "-o", path, "--search", "tfl")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Exported 2 items")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows []export.Row
	require.NoError(t, yaml.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "TFL TRAVEL CH", rows[0].RawMerchant)
}

func TestQueueExportCSVToStdout(t *testing.T) {
	useEmulator(t, true)

	out, _, err := run(t, queueCmd(), "", "export", "--format", "csv", "--delimiter", ";", "--search", "acme")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id;date;amount"))
	assert.Contains(t, lines[1], "2450.00")
}

func TestQueueDuplicates(t *testing.T) {
	useEmulator(t, true)

	out, _, err := run(t, queueCmd(), "", "duplicates")

	require.NoError(t, err)
	assert.Contains(t, out, "Queue item")
	assert.Contains(t, out, "Tesco")
	assert.Contains(t, out, "-£22.50")
	assert.Contains(t, out, "saved", "the queued Trainline ticket matches its saved expense")
}

func TestApplyRules(t *testing.T) {
	e := useEmulator(t, true)
	active := true
	_, err := e.Client.CreateRule(context.Background(), model.RuleInput{
		Name:       "Drop transfers",
		Field:      model.FieldRawMerchantName,
		MatchType:  model.MatchExact,
		MatchValue: "PAYPAL TRANSFER",
		Action:     model.ActionDiscard,
		Active:     &active,
	})
	require.NoError(t, err)

	out, _, err := run(t, queueCmd(), "", "apply-rules")

	require.NoError(t, err)
	assert.Contains(t, out, "1 discarded")
	assert.Contains(t, out, "14 items left")
}

func TestCategories(t *testing.T) {
	e := useEmulator(t, true)

	out, _, err := run(t, categoriesCmd(), "", "add", "Pets", "--type", "expense", "--color", "#aa5500")
	require.NoError(t, err)
	assert.Contains(t, out, `Created category "Pets"`)

	out, _, err = run(t, categoriesCmd(), "", "list", "--type", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, "Pets")
	assert.Contains(t, out, "  Supermarket")
	assert.NotContains(t, out, "Salary")

	categories, err := e.Client.ListCategories(context.Background(), model.CategoryTypeAny)
	require.NoError(t, err)
	var pets model.Category
	for _, c := range categories {
		if c.Name == "Pets" {
			pets = c
		}
	}
	require.NotZero(t, pets.ID)

	out, _, err = run(t, categoriesCmd(), "", "update", fmt.Sprint(pets.ID), "--name", "Pet care")
	require.NoError(t, err)
	assert.Contains(t, out, `"Pet care"`)

	_, _, err = run(t, categoriesCmd(), "", "update", fmt.Sprint(pets.ID))
	require.Error(t, err)

	_, _, err = run(t, categoriesCmd(), "", "delete", fmt.Sprint(pets.ID))
	require.NoError(t, err)

	_, _, err = run(t, categoriesCmd(), "", "list", "--type", "other")
	require.Error(t, err)
}

func TestMerchants(t *testing.T) {
	useEmulator(t, true)

	out, _, err := run(t, merchantsCmd(), "", "add", "Dishoom", "--raw-name", "DISHOOM KINGS X")
	require.NoError(t, err)
	assert.Contains(t, out, `Created merchant "Dishoom"`)

	out, _, err = run(t, merchantsCmd(), "", "search", "dish")
	require.NoError(t, err)
	assert.Contains(t, out, "DISHOOM KINGS X")

	out, _, err = run(t, merchantsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Tesco")
}

func TestTags(t *testing.T) {
	e := useEmulator(t, true)

	out, _, err := run(t, tagsCmd(), "", "add", " Receipts ")
	require.NoError(t, err)
	assert.Contains(t, out, `Created tag "receipts"`)

	_, _, err = run(t, tagsCmd(), "", "add", "Work")
	require.Error(t, err, "work is already seeded")

	tags, err := e.Client.ListTags(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, tags)

	out, _, err = run(t, tagsCmd(), "", "delete", fmt.Sprint(tags[0].ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 tag")

	remaining, err := e.Client.ListTags(context.Background())
	require.NoError(t, err)
	assert.Len(t, remaining, len(tags)-1)

	_, _, err = run(t, tagsCmd(), "", "list")
	require.NoError(t, err)
}

func TestRules(t *testing.T) {
	e := useEmulator(t, true)

	out, _, err := run(t, rulesCmd(), "", "add", "NETFLIX.COM", "--action", "save", "--merchant", "Netflix", "--type", "fixed")
	require.NoError(t, err)
	assert.Contains(t, out, `Created rule "NETFLIX.COM"`)

	rules, err := e.Client.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 3, "two seeded rules plus the new one")
	var netflix model.Rule
	for _, r := range rules {
		if r.MatchValue == "NETFLIX.COM" {
			netflix = r
		}
	}
	require.NotZero(t, netflix.ID)
	require.True(t, netflix.Active)
	require.NotNil(t, netflix.SaveData)
	assert.Equal(t, model.TypeFixed, netflix.SaveData.Type)

	out, _, err = run(t, rulesCmd(), "", "toggle", fmt.Sprint(netflix.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "now off")

	rules, err = e.Client.ListRules(context.Background())
	require.NoError(t, err)
	for _, r := range rules {
		if r.ID == netflix.ID {
			assert.False(t, r.Active)
		}
	}

	out, _, err = run(t, rulesCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NETFLIX.COM")

	_, _, err = run(t, rulesCmd(), "", "add", "x", "--match", "glob")
	require.Error(t, err)

	_, _, err = run(t, rulesCmd(), "", "delete", fmt.Sprint(rules[0].ID))
	require.NoError(t, err)
}

func TestImportUploadUnsupported(t *testing.T) {
	useEmulator(t, true)
	path := filepath.Join(t.TempDir(), "statement.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not really a spreadsheet"), 0o600))

	_, stderr, err := run(t, importCmd(), "", "upload", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 uploads failed")
	assert.Contains(t, stderr, "statement.xlsx")
}

func TestImportHistoryAndNotifications(t *testing.T) {
	useEmulator(t, true)

	_, _, err := run(t, importCmd(), "", "history")
	require.NoError(t, err)

	out, _, err := run(t, notificationsCmd(), "", "parse-all")
	require.NoError(t, err)
	assert.Contains(t, out, "Parsed 0 notifications")

	_, _, err = run(t, notificationsCmd(), "", "discard", "1")
	require.Error(t, err)
}

func TestExpenses(t *testing.T) {
	e := useEmulator(t, true)

	out, _, err := run(t, expensesCmd(), "", "list", "--search", "netflix")
	require.NoError(t, err)
	assert.Contains(t, out, "-£10.99")

	page, err := e.Client.ListExpenses(context.Background(), model.ExpenseFilter{Search: "netflix"})
	require.NoError(t, err)
	require.NotEmpty(t, page.Expenses)

	out, _, err = run(t, expensesCmd(), "", "show", fmt.Sprint(page.Expenses[0].ID))
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("Expense #%d", page.Expenses[0].ID))
	assert.Contains(t, out, "fixed")
}

func TestExpenseCorrections(t *testing.T) {
	e := useEmulator(t, true)
	ctx := context.Background()

	page, err := e.Client.ListExpenses(ctx, model.ExpenseFilter{Search: "netflix"})
	require.NoError(t, err)
	require.NotEmpty(t, page.Expenses)
	id := fmt.Sprint(page.Expenses[0].ID)

	out, _, err := run(t, expensesCmd(), "", "update", id, "--notes", "family plan", "--tags", "home,shared")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated expense #"+id)

	expense, err := e.Client.GetExpense(ctx, page.Expenses[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "family plan", expense.Notes)
	assert.Equal(t, model.TypeFixed, expense.Type, "unset flags leave fields alone")
	assert.Len(t, expense.Tags, 2)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no flags", []string{"update", id}, "nothing to update"},
		{"bad date", []string{"update", id, "--date", "01/03/2024"}, "invalid --date"},
		{"bad type", []string{"update", id, "--type", "luxury"}, "invalid expense type"},
		{"unknown expense", []string{"update", "9999", "--notes", "x"}, "failed to update expense"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, expensesCmd(), "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	out, _, err = run(t, expensesCmd(), "", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted expense #"+id)
	_, err = e.Client.GetExpense(ctx, page.Expenses[0].ID)
	assert.True(t, common.IsNotFound(err))
}

func TestExpenseDelete_Declined(t *testing.T) {
	e := useEmulator(t, false)
	ctx := context.Background()
	page, err := e.Client.ListExpenses(ctx, model.ExpenseFilter{Limit: 1})
	require.NoError(t, err)
	require.NotEmpty(t, page.Expenses)

	_, _, err = run(t, expensesCmd(), "n\n", "delete", fmt.Sprint(page.Expenses[0].ID))
	require.ErrorIs(t, err, common.ErrCancelled)

	_, err = e.Client.GetExpense(ctx, page.Expenses[0].ID)
	require.NoError(t, err)
}

func TestPeriodic(t *testing.T) {
	useEmulator(t, true)

	out, _, err := run(t, periodicCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Netflix")
	assert.Contains(t, out, "Spotify Premium")

	out, _, err = run(t, periodicCmd(), "", "add", "Gym membership")
	require.NoError(t, err)
	assert.Contains(t, out, `Created periodic expense "Gym membership"`)

	_, _, err = run(t, periodicCmd(), "", "add", "Rent")
	require.Error(t, err)

	out, _, err = run(t, periodicCmd(), "", "list", "gym")
	require.NoError(t, err)
	assert.Contains(t, out, "Gym membership")
	assert.NotContains(t, out, "Netflix")

	out, _, err = run(t, periodicCmd(), "", "suggest", "Netflx")
	require.NoError(t, err)
	assert.Contains(t, out, "Netflix (92% match)")

	out, _, err = run(t, periodicCmd(), "", "suggest", "Council tax")
	require.NoError(t, err)
	assert.Contains(t, out, "No periodic expense looks like")
}

func TestImportTickets(t *testing.T) {
	useEmulator(t, true)
	path := filepath.Join(t.TempDir(), "receipt.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600))

	out, _, err := run(t, importCmd(), "", "tickets", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded 1 ticket photos successfully")
	assert.Contains(t, out, "_receipt.jpg")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, versionCmd(), "")

	require.NoError(t, err)
	assert.Equal(t, "xq version dev\n", out)
}

func TestControllerOptions(t *testing.T) {
	assert.Len(t, controllerOptions(config.Settings{}), 1)
	assert.Len(t, controllerOptions(config.Settings{TUI: config.TUISettings{Filter: true, DuplicatesPage: true}}), 3)
}
