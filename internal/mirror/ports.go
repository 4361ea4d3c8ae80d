package mirror

import "context"

// Logical keys of the persisted state.
const (
	KeyTransactions = "financeTracker_transactions"
	KeyBudget       = "financeTracker_budget"
	KeySavings      = "financeTracker_savings"
	KeyTheme        = "financeTracker_theme"
)

// Keys lists every logical key in a stable order.
var Keys = []string{KeyTransactions, KeyBudget, KeySavings, KeyTheme}

// Ports for persistence adapters.
type (
	// KeyValueStore is a durable string-to-string map. Get reports whether the
	// key exists; Delete of an absent key is not an error.
	KeyValueStore interface {
		Get(ctx context.Context, key string) (value string, ok bool, err error)
		Set(ctx context.Context, key, value string) error
		Delete(ctx context.Context, keys ...string) error
	}
)
