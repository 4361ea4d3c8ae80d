package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/mirror"
)

// View is the derived state handed to presentation after every command.
type View struct {
	Filter         core.Filter          `json:"filter"`
	Transactions   []core.Transaction   `json:"transactions"` // filtered, newest first
	Totals         core.Totals          `json:"totals"`
	CategoryTotals []core.CategoryAmount `json:"category_totals"`
	DailyExpenses  []core.DateAmount    `json:"daily_expenses"`
	Comparison     []core.ComparisonBar `json:"comparison"`
	Budget         core.BudgetStatus    `json:"budget"`
	Savings        core.SavingsStatus   `json:"savings"`
	Theme          core.Theme           `json:"theme"`
	StoredCount    int                  `json:"stored_count"`
}

type TrackerOptions struct {
	Now    func() time.Time
	NewID  func() string
	Logger *log.Logger
}

// Tracker owns the application state and runs every command against it.
// Commands are serialized; each one mutates, writes through to the mirror
// and leaves the state ready for View.
//
// A mutation whose write-through fails is kept in memory and the
// *core.PersistenceError is returned next to the normal result.
type Tracker struct {
	mu      sync.Mutex
	store   *TransactionStore
	mirror  *mirror.Mirror
	gate    *ConfirmationGate
	budget  core.Money
	savings core.Money
	filter  core.Filter
	theme   core.Theme
	now     func() time.Time
	logger  *log.Logger
}

func NewTracker(m *mirror.Mirror, opts TrackerOptions) *Tracker {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	return &Tracker{
		store:  NewTransactionStore(opts.Now, opts.NewID),
		mirror: m,
		gate:   NewConfirmationGate(),
		theme:  core.ThemeLight,
		now:    opts.Now,
		logger: opts.Logger.WithComponent(log.ComponentTracker),
	}
}

// Load replaces the in-memory state with what the mirror holds.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.mirror.Load(ctx)
	if err != nil {
		t.logger.ErrorContext(ctx, "Failed to load stored state",
			log.NewFields().WithOperation(log.OpLoad).WithError(err).ToSlice()...)
		return err
	}
	t.store.Replace(st.Transactions)
	t.budget = st.Budget
	t.savings = st.Savings
	t.theme = st.Theme
	t.logger.InfoContext(ctx, "State loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldCount, t.store.Len())
	return nil
}

func (t *Tracker) AddTransaction(ctx context.Context, d core.Draft) (core.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tx, err := t.store.Add(d)
	if err != nil {
		return core.Transaction{}, err
	}
	t.logger.InfoContext(ctx, "Transaction added",
		log.NewFields().WithOperation(log.OpCreate).WithTransaction(tx).ToSlice()...)
	return tx, t.persistTransactions(ctx)
}

func (t *Tracker) EditTransaction(ctx context.Context, id string, d core.Draft) (core.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tx, err := t.store.Update(id, d)
	if err != nil {
		return core.Transaction{}, err
	}
	t.logger.InfoContext(ctx, "Transaction updated",
		log.NewFields().WithOperation(log.OpUpdate).WithTransaction(tx).ToSlice()...)
	return tx, t.persistTransactions(ctx)
}

// Transaction returns the stored transaction id.
func (t *Tracker) Transaction(id string) (core.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tx, ok := t.store.Get(id)
	if !ok {
		return core.Transaction{}, &core.NotFoundError{ID: id}
	}
	return tx, nil
}

// RequestDelete arms deletion of transaction id.
func (t *Tracker) RequestDelete(id string) (Token, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.store.Get(id); !ok {
		return "", &core.NotFoundError{ID: id}
	}
	return t.gate.Request(Action{Kind: ActionDelete, TransactionID: id}), nil
}

// RequestReset arms a reset of transactions, budget, savings goal and filter.
func (t *Tracker) RequestReset() Token {
	return t.gate.Request(Action{Kind: ActionReset})
}

// Confirm runs the action guarded by tok.
func (t *Tracker) Confirm(ctx context.Context, tok Token) (Action, error) {
	a, err := t.gate.Confirm(tok)
	if err != nil {
		return Action{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch a.Kind {
	case ActionDelete:
		if !t.store.Delete(a.TransactionID) {
			return a, nil
		}
		t.logger.InfoContext(ctx, "Transaction deleted",
			log.FieldOperation, log.OpDelete,
			log.FieldTransactionID, a.TransactionID)
		return a, t.persistTransactions(ctx)
	case ActionReset:
		t.store.Clear()
		t.budget = core.Money{}
		t.savings = core.Money{}
		t.filter = core.Filter{}
		t.logger.InfoContext(ctx, "All data reset", log.FieldOperation, log.OpReset)
		return a, t.warn(ctx, t.mirror.Clear(ctx, mirror.KeyTransactions, mirror.KeyBudget, mirror.KeySavings))
	default:
		return a, fmt.Errorf("unsupported action %q", a.Kind)
	}
}

// Cancel drops the pending action guarded by tok.
func (t *Tracker) Cancel(tok Token) bool {
	return t.gate.Cancel(tok)
}

// SetBudget stores the monthly budget; "0" clears it.
func (t *Tracker) SetBudget(ctx context.Context, raw string) (core.Money, error) {
	v, err := core.ParseSetting("budget", raw)
	if err != nil {
		return core.Money{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.budget = v
	t.logger.InfoContext(ctx, "Monthly budget set", log.FieldOperation, log.OpSetting, log.FieldAmountCents, v.Cents)
	return v, t.warn(ctx, t.mirror.SaveBudget(ctx, v))
}

// SetSavingsGoal stores the savings goal; "0" clears it.
func (t *Tracker) SetSavingsGoal(ctx context.Context, raw string) (core.Money, error) {
	v, err := core.ParseSetting("savings", raw)
	if err != nil {
		return core.Money{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.savings = v
	t.logger.InfoContext(ctx, "Savings goal set", log.FieldOperation, log.OpSetting, log.FieldAmountCents, v.Cents)
	return v, t.warn(ctx, t.mirror.SaveSavings(ctx, v))
}

// SetFilter narrows the view. Filters are not persisted.
func (t *Tracker) SetFilter(f core.Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter = f
	return nil
}

func (t *Tracker) ClearFilter() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter = core.Filter{}
}

// ToggleTheme flips the theme and returns the new one.
func (t *Tracker) ToggleTheme(ctx context.Context) (core.Theme, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.theme = t.theme.Toggle()
	return t.theme, t.warn(ctx, t.mirror.SaveTheme(ctx, t.theme))
}

func (t *Tracker) Theme() core.Theme {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.theme
}

// Selection returns the current filter together with the transactions it
// admits, in stored order, read under one lock.
func (t *Tracker) Selection() (core.Filter, []core.Transaction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filter, core.ApplyFilter(t.store.List(), t.filter)
}

// Export writes the filtered transactions as CSV to w and returns the
// download filename and the row count.
func (t *Tracker) Export(w io.Writer) (string, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := export.WriteCSV(w, core.ApplyFilter(t.store.List(), t.filter))
	if err != nil {
		return "", 0, err
	}
	name := export.Filename(t.now())
	t.logger.Info("CSV exported", log.FieldOperation, log.OpExport, log.FieldCount, n)
	return name, n, nil
}

// View recomputes every derived value from the current state.
func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()

	all := t.store.List()
	filtered := core.ApplyFilter(all, t.filter)
	totals := core.ComputeTotals(filtered)

	return View{
		Filter:         t.filter,
		Transactions:   core.SortByDateDesc(filtered),
		Totals:         totals,
		CategoryTotals: core.CategoryTotals(filtered),
		DailyExpenses:  core.DailyExpenseSeries(filtered),
		Comparison:     core.ComparisonSeries(totals),
		Budget:         core.EvaluateBudget(t.budget, core.CurrentMonthExpenseTotal(all, t.now())),
		Savings:        core.EvaluateSavings(t.savings, core.ComputeTotals(all).Balance),
		Theme:          t.theme,
		StoredCount:    len(all),
	}
}

func (t *Tracker) persistTransactions(ctx context.Context) error {
	return t.warn(ctx, t.mirror.SaveTransactions(ctx, t.store.List()))
}

// warn logs a failed write-through and hands the error back unchanged.
func (t *Tracker) warn(ctx context.Context, err error) error {
	if err != nil {
		t.logger.WarnContext(ctx, "Change kept in memory but not persisted",
			log.NewFields().WithOperation(log.OpPersist).WithError(err).ToSlice()...)
	}
	return err
}
