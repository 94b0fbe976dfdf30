package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-queue/internal/model"
	"github.com/Veraticus/expense-queue/internal/queue"
	"github.com/Veraticus/expense-queue/internal/service"
	"github.com/Veraticus/expense-queue/internal/testutil"
	"github.com/Veraticus/expense-queue/internal/tui/tuitest"
)

func queueItems() []model.QueueItem {
	return []model.QueueItem{
		testutil.NewItem(1, "-12.50", testutil.WithRawMerchant("TESCO STORES")),
		testutil.NewItem(2, "-3.20", testutil.WithRawMerchant("PRET A MANGER")),
		testutil.NewItem(3, "-48.00", testutil.WithRawMerchant("TRAINLINE")),
	}
}

// start builds a model over api and delivers the initial load.
func start(t *testing.T, api *testutil.FakeAPI, prompter service.Prompter, opts ...queue.Option) (Model, *queue.Controller) {
	t.Helper()
	ctrl := queue.New(api, prompter, opts...)
	m := NewModel(context.Background(), ctrl,
		WithCatalog(api),
		WithDebounce(time.Millisecond),
		WithSize(120, 40),
	)
	m = drive(t, m, tuitest.Exec(m.Init(), tuitest.DefaultWait)...)
	require.True(t, m.ready)
	api.Reset()
	return m, ctrl
}

func drive(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	next, _ := tuitest.Send(m, msgs...)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tuitest.KeyEnter()
		case "esc":
			msg = tuitest.KeyEsc()
		case "ctrl+a":
			msg = tuitest.Key(tea.KeyCtrlA)
		case "ctrl+c":
			msg = tuitest.Key(tea.KeyCtrlC)
		case "left":
			msg = tuitest.Key(tea.KeyLeft)
		case "backspace":
			msg = tuitest.Key(tea.KeyBackspace)
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tuitest.KeyPress(k)
		}
		m = drive(t, m, msg)
	}
	return m
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return drive(t, m, tuitest.Type(text)...)
}

func TestModel_InitialLoad(t *testing.T) {
	api := testutil.NewFakeAPI(queueItems()...)

	m, ctrl := start(t, api, nil)

	assert.Equal(t, 3, ctrl.Len())
	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Expense queue")
	assert.Contains(t, view, "3 items")
	assert.True(t, tuitest.ContainsInOrder(view, "TESCO STORES", "PRET A MANGER", "TRAINLINE"))
}

func TestModel_Resize(t *testing.T) {
	m, _ := start(t, testutil.NewFakeAPI(queueItems()...), nil)

	m = drive(t, m, tuitest.WindowSize(60, 20))

	assert.Equal(t, 60, m.width)
	assert.Equal(t, 20, m.height)
	assert.Contains(t, tuitest.StripANSI(m.View()), "TESCO")
}

func TestModel_LoadingScreen(t *testing.T) {
	ctrl := queue.New(testutil.NewFakeAPI(), nil)
	m := NewModel(context.Background(), ctrl)

	assert.Contains(t, tuitest.StripANSI(m.View()), "Loading queue")
}

func TestModel_EmptyQueue(t *testing.T) {
	m, _ := start(t, testutil.NewFakeAPI(), nil)

	assert.Contains(t, tuitest.StripANSI(m.View()), "Queue empty")
}

func TestModel_Navigation(t *testing.T) {
	m, ctrl := start(t, testutil.NewFakeAPI(queueItems()...), nil)

	m = press(t, m, "j")
	assert.Equal(t, 1, ctrl.Focused())

	m = press(t, m, "G")
	assert.Equal(t, 2, ctrl.Focused())

	m = press(t, m, "k", "g")
	assert.Equal(t, 0, ctrl.Focused())

	press(t, m, "k")
	assert.Equal(t, 0, ctrl.Focused())
}

func TestModel_Selection(t *testing.T) {
	m, ctrl := start(t, testutil.NewFakeAPI(queueItems()...), nil)

	m = press(t, m, " ", "j", "x")
	assert.Equal(t, 2, ctrl.SelectedCount())
	assert.Contains(t, tuitest.StripANSI(m.View()), "2 selected")

	m = press(t, m, "ctrl+a")
	assert.Equal(t, 3, ctrl.SelectedCount())

	press(t, m, "esc")
	assert.Equal(t, 0, ctrl.SelectedCount())
}

func TestModel_DiscardFocused(t *testing.T) {
	api := testutil.NewFakeAPI(queueItems()...)
	prompter := &testutil.Prompter{Answer: true}
	m, ctrl := start(t, api, prompter)

	m = press(t, m, "j", "d")

	assert.Equal(t, []string{"Discard 1 item?"}, prompter.Messages)
	assert.Contains(t, api.CallStrings(), "DELETE /api/queue/2")
	assert.Equal(t, 2, ctrl.Len())
	assert.Contains(t, m.toast.Message, "discarded 1 of 1")
}

func TestModel_DiscardDeclined(t *testing.T) {
	api := testutil.NewFakeAPI(queueItems()...)
	m, ctrl := start(t, api, &testutil.Prompter{Answer: false})

	m = press(t, m, "d")

	assert.Equal(t, 3, ctrl.Len())
	assert.NotContains(t, api.CallStrings(), "DELETE /api/queue/1")
	assert.Equal(t, "Cancelled", m.toast.Message)
}

func TestModel_BulkSaveSelected(t *testing.T) {
	items := queueItems()
	items[0] = testutil.NewItem(1, "-12.50", testutil.Complete())
	items[1] = testutil.NewItem(2, "-3.20", testutil.Complete())
	api := testutil.NewFakeAPI(items...)
	m, ctrl := start(t, api, nil)

	press(t, m, " ", "j", " ", "s")

	assert.Contains(t, api.CallStrings(), "POST /api/queue/bulk-save")
	assert.Equal(t, 1, ctrl.Len())
}

// chanSender collects the program messages a Prompter sends.
type chanSender chan tea.Msg

func (s chanSender) Send(msg tea.Msg) {
	s <- msg
}

func TestModel_ConfirmModal(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		wantLen int
	}{
		{name: "yes discards", answer: "y", wantLen: 2},
		{name: "no keeps the item", answer: "n", wantLen: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := testutil.NewFakeAPI(queueItems()...)
			prompter := NewPrompter()
			sender := make(chanSender, 1)
			prompter.Attach(sender)
			m, ctrl := start(t, api, prompter)

			// The discard blocks on the prompt, so Send abandons it.
			m = press(t, m, "d")
			var request tea.Msg
			select {
			case request = <-sender:
			case <-time.After(time.Second):
				t.Fatal("no confirmation requested")
			}

			m = drive(t, m, request)
			require.NotNil(t, m.confirm)
			assert.Equal(t, queue.ModalConfirm, ctrl.Modal())
			assert.Contains(t, tuitest.StripANSI(m.View()), "Discard 1 item?")

			m = press(t, m, tt.answer)
			assert.Nil(t, m.confirm)
			require.Eventually(t, func() bool { return !ctrl.Busy() }, time.Second, 5*time.Millisecond)
			assert.Equal(t, tt.wantLen, ctrl.Len())
			assert.Equal(t, queue.ModalNone, ctrl.Modal())
		})
	}
}

func TestModel_QuitAnswersPendingConfirm(t *testing.T) {
	m, _ := start(t, testutil.NewFakeAPI(queueItems()...), nil)
	reply := make(chan bool, 1)
	m = drive(t, m, confirmRequestMsg{reply: reply, message: "Discard 1 item?"})

	next, quit := tuitest.Send(m, tuitest.Key(tea.KeyCtrlC))

	assert.True(t, quit)
	assert.False(t, <-reply)
	assert.Nil(t, next.(Model).confirm)
}

func TestModel_IgnoresKeysWhileConfirming(t *testing.T) {
	m, ctrl := start(t, testutil.NewFakeAPI(queueItems()...), nil)
	reply := make(chan bool, 1)
	m = drive(t, m, confirmRequestMsg{reply: reply, message: "Archive 1 item?"})

	m = press(t, m, "j")

	assert.Equal(t, 0, ctrl.Focused())
	assert.NotNil(t, m.confirm)
}

func TestModel_UpdateModeCategory(t *testing.T) {
	api := testutil.NewFakeAPI(queueItems()...)
	m, ctrl := start(t, api, nil, queue.WithUpdateMode())

	m = press(t, m, "u")
	assert.True(t, ctrl.UpdateMode())

	m = press(t, m, "c")
	require.Equal(t, queue.ModalCategory, ctrl.Modal())
	assert.Contains(t, tuitest.StripANSI(m.View()), "Category · TESCO STORES")

	m = typeText(t, m, "groc")
	press(t, m, "enter")

	assert.Contains(t, api.CallStrings(), "PUT /api/queue/1")
	assert.Equal(t, queue.ModalNone, ctrl.Modal())
	item, ok := ctrl.FocusedItem()
	require.True(t, ok)
	id, ok := item.ResolvedCategoryID()
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

func TestModel_UpdateModeDescriptionOverSelection(t *testing.T) {
	api := testutil.NewFakeAPI(queueItems()...)
	m, ctrl := start(t, api, nil, queue.WithUpdateMode())

	m = press(t, m, "ctrl+a", "u", "e")
	require.Equal(t, queue.ModalDescription, ctrl.Modal())
	assert.Contains(t, tuitest.StripANSI(m.View()), "3 items")

	m = typeText(t, m, "team lunch")
	press(t, m, "enter")

	calls := strings.Join(api.CallStrings(), "\n")
	for _, id := range []string{"1", "2", "3"} {
		assert.Contains(t, calls, "PUT /api/queue/"+id)
	}
	for _, item := range api.Items {
		assert.Equal(t, "team lunch", item.Description)
	}
}

func TestModel_UpdateModeMerchantAutocomplete(t *testing.T) {
	api := testutil.NewFakeAPI(queueItems()...)
	api.Merchants = []model.Merchant{{ID: 7, DisplayName: "Tesco", RawName: "TESCO STORES"}}
	m, ctrl := start(t, api, nil, queue.WithUpdateMode())

	m = press(t, m, "u", "m")
	require.Equal(t, queue.ModalMerchant, ctrl.Modal())

	m = typeText(t, m, "tesco")
	press(t, m, "enter")

	assert.Contains(t, api.CallStrings(), "PUT /api/queue/1")
	item, ok := ctrl.FocusedItem()
	require.True(t, ok)
	id, ok := item.ResolvedMerchantID()
	require.True(t, ok)
	assert.Equal(t, 7, id)
}

func TestModel_EditorsNeedUpdateMode(t *testing.T) {
	api := testutil.NewFakeAPI(queueItems()...)
	m, ctrl := start(t, api, nil, queue.WithUpdateMode())

	press(t, m, "c", "e")

	assert.Equal(t, queue.ModalNone, ctrl.Modal())
}

func TestModel_EscapeClosesEditor(t *testing.T) {
	m, ctrl := start(t, testutil.NewFakeAPI(queueItems()...), nil, queue.WithUpdateMode())

	m = press(t, m, "u", "y")
	require.Equal(t, queue.ModalType, ctrl.Modal())

	m = press(t, m, "esc")
	assert.Equal(t, queue.ModalNone, ctrl.Modal())
	assert.True(t, ctrl.UpdateMode())

	press(t, m, "esc")
	assert.False(t, ctrl.UpdateMode())
}

func TestModel_Search(t *testing.T) {
	m, ctrl := start(t, testutil.NewFakeAPI(queueItems()...), nil)

	m = press(t, m, "/")
	require.True(t, m.searching)

	m = typeText(t, m, "pret")
	assert.Equal(t, "pret", ctrl.Filter().Search)
	assert.Equal(t, 1, ctrl.Len())

	m = press(t, m, "esc")
	assert.False(t, m.searching)
	assert.Empty(t, ctrl.Filter().Search)
	assert.Equal(t, 3, ctrl.Len())
}

func TestModel_FilterForm(t *testing.T) {
	items := queueItems()
	items[2].TransactionDate = "2024-04-02"
	m, ctrl := start(t, testutil.NewFakeAPI(items...), nil, queue.WithFilterMode())

	m = press(t, m, "f")
	require.Equal(t, queue.ModalFilter, ctrl.Modal())

	m = typeText(t, m, "2024-04-01")
	m = press(t, m, "enter")

	assert.Equal(t, queue.ModalNone, ctrl.Modal())
	assert.Equal(t, "2024-04-01", ctrl.Filter().DateFrom)
	assert.Equal(t, 1, ctrl.Len())
	assert.Contains(t, m.toast.Message, "1 items match")
}

func TestModel_FilterDisabled(t *testing.T) {
	m, ctrl := start(t, testutil.NewFakeAPI(queueItems()...), nil)

	m = press(t, m, "f")

	assert.Equal(t, queue.ModalNone, ctrl.Modal())
	assert.NotEmpty(t, m.toast.Message)
}

func TestModel_Help(t *testing.T) {
	m, ctrl := start(t, testutil.NewFakeAPI(queueItems()...), nil)

	m = press(t, m, "?")
	require.Equal(t, queue.ModalHelp, ctrl.Modal())
	assert.Contains(t, tuitest.StripANSI(m.View()), "Keys")

	press(t, m, "?")
	assert.Equal(t, queue.ModalNone, ctrl.Modal())
}

func TestModel_MergeRequiresTwo(t *testing.T) {
	m, ctrl := start(t, testutil.NewFakeAPI(queueItems()...), nil)

	m = press(t, m, "m")

	assert.Equal(t, queue.ModalNone, ctrl.Modal())
	assert.NotEmpty(t, m.toast.Message)
}

func TestModel_Merge(t *testing.T) {
	api := testutil.NewFakeAPI(queueItems()...)
	m, ctrl := start(t, api, nil)

	m = press(t, m, " ", "j", " ", "m")
	require.Equal(t, queue.ModalMerge, ctrl.Modal())
	assert.Contains(t, tuitest.StripANSI(m.View()), "Merge 2 items")

	// Raw items carry no merchant to prefill.
	m = press(t, m, "enter")
	assert.Equal(t, queue.ModalMerge, ctrl.Modal())
	assert.NotEmpty(t, m.toast.Message)
	assert.NotContains(t, api.CallStrings(), "POST /api/queue/merge")

	m = typeText(t, m, "Lunch")
	press(t, m, "enter")

	assert.Contains(t, api.CallStrings(), "POST /api/queue/merge")
	assert.Equal(t, 1, ctrl.Len())
	assert.Equal(t, queue.ModalNone, ctrl.Modal())
}

func TestModel_ToastExpiry(t *testing.T) {
	clock := tuitest.NewClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	ctrl := queue.New(testutil.NewFakeAPI(queueItems()...), nil)
	m := NewModel(context.Background(), ctrl, WithClock(clock.Now))

	m = drive(t, m, tuitest.Exec(m.showInfo("hello"), tuitest.DefaultWait)...)
	require.Equal(t, "hello", m.toast.Message)
	expires := m.toast.Expires

	m = drive(t, m, toastExpiredMsg{at: expires.Add(-time.Second)})
	assert.Equal(t, "hello", m.toast.Message)

	clock.Advance(5 * time.Second)
	assert.False(t, m.toast.Active(clock.Now()))

	m = drive(t, m, toastExpiredMsg{at: expires})
	assert.Empty(t, m.toast.Message)
}

func TestModel_Quit(t *testing.T) {
	m, _ := start(t, testutil.NewFakeAPI(queueItems()...), nil)

	next, quit := tuitest.Send(m, tuitest.KeyPress("q"))

	assert.True(t, quit)
	assert.Empty(t, next.View())
}

func TestModel_UpdateModeTagsCreatesAndCommits(t *testing.T) {
	items := queueItems()
	items[0].Tags = []string{"food"}
	api := testutil.NewFakeAPI(items...)
	m, ctrl := start(t, api, nil, queue.WithUpdateMode())

	m = press(t, m, "u", "t")
	require.Equal(t, queue.ModalTags, ctrl.Modal())
	assert.Contains(t, tuitest.StripANSI(m.View()), "#food")

	m = typeText(t, m, "work")
	m = press(t, m, "enter")
	assert.Contains(t, api.CallStrings(), "POST /api/tags")
	assert.Contains(t, tuitest.StripANSI(m.View()), "#work")

	press(t, m, "enter")

	assert.Contains(t, api.CallStrings(), "PUT /api/queue/1")
	item, ok := ctrl.FocusedItem()
	require.True(t, ok)
	assert.Equal(t, []string{"food", "work"}, item.Tags)
}

func TestModel_UpdateModeTagsRemovesChosenTag(t *testing.T) {
	items := queueItems()
	items[0].Tags = []string{"food", "work"}
	api := testutil.NewFakeAPI(items...)
	m, ctrl := start(t, api, nil, queue.WithUpdateMode())

	m = press(t, m, "u", "t")
	m = typeText(t, m, "travel")
	m = press(t, m, "enter")
	m = press(t, m, "left", "left", "left", "backspace")
	assert.NotContains(t, tuitest.StripANSI(m.View()), "#food")

	press(t, m, "enter")

	item, ok := ctrl.FocusedItem()
	require.True(t, ok)
	assert.Equal(t, []string{"work", "travel"}, item.Tags)
}

func TestModel_DuplicateModalDiscardsCard(t *testing.T) {
	items := append(queueItems(), testutil.NewItem(4, "-12.50", testutil.WithRawMerchant("TESCO STORES 3297")))
	api := testutil.NewFakeAPI(items...)
	api.DuplicateSets[1] = testutil.MustSet(t, items[0], items[3])
	m, ctrl := start(t, api, nil)

	m = press(t, m, "D")
	require.Equal(t, queue.ModalDuplicate, ctrl.Modal())
	assert.Contains(t, tuitest.StripANSI(m.View()), "X discard")

	press(t, m, "j", "X")

	assert.Contains(t, api.CallStrings(), "DELETE /api/queue/4")
	assert.Equal(t, 3, ctrl.Len())
	assert.False(t, ctrl.HasDuplicates(1))
}
