package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// State is everything the tracker persists.
type State struct {
	Transactions []core.Transaction
	Budget       core.Money
	Savings      core.Money
	Theme        core.Theme
}

// DefaultState is what a first run starts from.
func DefaultState() State {
	return State{Transactions: []core.Transaction{}, Theme: core.ThemeLight}
}

// Mirror encodes tracker state to the logical keys of a KeyValueStore.
type Mirror struct {
	store  KeyValueStore
	logger *log.Logger
}

func New(store KeyValueStore, logger *log.Logger) *Mirror {
	if logger == nil {
		logger = log.Discard()
	}
	return &Mirror{store: store, logger: logger.WithComponent(log.ComponentMirror)}
}

// Load reads all four keys. Missing keys yield defaults. A value that cannot
// be decoded is logged and replaced by its default; only store failures are
// returned.
func (m *Mirror) Load(ctx context.Context) (State, error) {
	st := DefaultState()

	raw, ok, err := m.store.Get(ctx, KeyTransactions)
	if err != nil {
		return st, &core.PersistenceError{Key: KeyTransactions, Err: err}
	}
	if ok {
		txns, err := DecodeTransactions(raw)
		if err != nil {
			m.warnDecode(ctx, KeyTransactions, err)
		} else {
			st.Transactions = txns
		}
	}

	for _, k := range []struct {
		key string
		dst *core.Money
	}{{KeyBudget, &st.Budget}, {KeySavings, &st.Savings}} {
		raw, ok, err := m.store.Get(ctx, k.key)
		if err != nil {
			return st, &core.PersistenceError{Key: k.key, Err: err}
		}
		if !ok {
			continue
		}
		v, err := core.ParseSetting(k.key, raw)
		if err != nil {
			m.warnDecode(ctx, k.key, err)
			continue
		}
		*k.dst = v
	}

	raw, ok, err = m.store.Get(ctx, KeyTheme)
	if err != nil {
		return st, &core.PersistenceError{Key: KeyTheme, Err: err}
	}
	if ok {
		theme, err := core.ParseTheme(raw)
		if err != nil {
			m.warnDecode(ctx, KeyTheme, err)
		} else {
			st.Theme = theme
		}
	}

	m.logger.DebugContext(ctx, "State loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldCount, len(st.Transactions))
	return st, nil
}

func (m *Mirror) warnDecode(ctx context.Context, key string, err error) {
	m.logger.WarnContext(ctx, "Discarding undecodable stored value",
		log.NewFields().WithOperation(log.OpLoad).WithKey(key).WithError(err).ToSlice()...)
}

// SaveTransactions writes the full collection as one JSON array.
func (m *Mirror) SaveTransactions(ctx context.Context, txns []core.Transaction) error {
	raw, err := EncodeTransactions(txns)
	if err != nil {
		return &core.PersistenceError{Key: KeyTransactions, Err: err}
	}
	return m.set(ctx, KeyTransactions, raw)
}

func (m *Mirror) SaveBudget(ctx context.Context, v core.Money) error {
	return m.set(ctx, KeyBudget, v.String())
}

func (m *Mirror) SaveSavings(ctx context.Context, v core.Money) error {
	return m.set(ctx, KeySavings, v.String())
}

func (m *Mirror) SaveTheme(ctx context.Context, t core.Theme) error {
	return m.set(ctx, KeyTheme, string(t))
}

// Clear removes the given keys.
func (m *Mirror) Clear(ctx context.Context, keys ...string) error {
	if err := m.store.Delete(ctx, keys...); err != nil {
		return &core.PersistenceError{Key: fmt.Sprint(keys), Err: err}
	}
	return nil
}

func (m *Mirror) set(ctx context.Context, key, value string) error {
	if err := m.store.Set(ctx, key, value); err != nil {
		return &core.PersistenceError{Key: key, Err: err}
	}
	return nil
}

// EncodeTransactions renders the stored JSON array. A nil slice encodes as [].
func EncodeTransactions(txns []core.Transaction) (string, error) {
	if txns == nil {
		txns = []core.Transaction{}
	}
	b, err := json.Marshal(txns)
	if err != nil {
		return "", fmt.Errorf("encode transactions: %w", err)
	}
	return string(b), nil
}

// DecodeTransactions parses a stored JSON array. Categories are not
// re-validated; a record with an unknown type or a non-positive amount fails
// the whole decode.
func DecodeTransactions(raw string) ([]core.Transaction, error) {
	var txns []core.Transaction
	if err := json.Unmarshal([]byte(raw), &txns); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	for i, t := range txns {
		if _, err := core.ParseType(string(t.Type)); err != nil {
			return nil, fmt.Errorf("decode transactions: record %d: %w", i, err)
		}
		if !t.Amount.IsPositive() {
			return nil, fmt.Errorf("decode transactions: record %d: %w", i, core.ErrInvalidAmount)
		}
	}
	if txns == nil {
		txns = []core.Transaction{}
	}
	return txns, nil
}
