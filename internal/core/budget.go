package core

import "github.com/shopspring/decimal"

const (
	AlertNone    AlertLevel = "none"
	AlertWarning AlertLevel = "warning"
	AlertDanger  AlertLevel = "danger"
)

// AlertLevel is the budget state. It is recomputed from the current inputs
// on every call and carries no memory of earlier states.
type AlertLevel string

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(80)
)

// BudgetStatus is the derived view of the monthly budget.
type BudgetStatus struct {
	Set                bool            `json:"set"`
	Budget             Money           `json:"budget"`
	Spent              Money           `json:"spent"`
	Remaining          Money           `json:"remaining"`
	UtilizationPercent decimal.Decimal `json:"utilization_percent"`
	Alert              AlertLevel      `json:"alert"`
}

// SavingsStatus is the derived view of the savings goal.
type SavingsStatus struct {
	Set       bool            `json:"set"`
	Goal      Money           `json:"goal"`
	Balance   Money           `json:"balance"`
	Saved     Money           `json:"saved"`
	Remaining Money           `json:"remaining"`
	Percent   decimal.Decimal `json:"percent"`
}

// EvaluateBudget compares the current month's expenses with the budget.
// A budget of zero or less is "unset": no remaining amount, no alert.
func EvaluateBudget(budget, spent Money) BudgetStatus {
	st := BudgetStatus{Budget: budget, Spent: spent, Alert: AlertNone}
	if budget.Cents <= 0 {
		return st
	}
	st.Set = true
	st.Remaining = budget.Sub(spent)
	st.UtilizationPercent = decimal.NewFromInt(spent.Cents).Mul(hundred).Div(decimal.NewFromInt(budget.Cents))
	switch {
	case st.UtilizationPercent.GreaterThanOrEqual(hundred):
		st.Alert = AlertDanger
	case st.UtilizationPercent.GreaterThanOrEqual(warningThreshold):
		st.Alert = AlertWarning
	}
	return st
}

// RemainingText is "-" while no budget is set.
func (b BudgetStatus) RemainingText() string {
	if !b.Set {
		return "-"
	}
	return b.Remaining.Display()
}

// Message is the human alert line shown under the budget, empty when none.
func (b BudgetStatus) Message() string {
	switch b.Alert {
	case AlertDanger:
		return "Budget exceeded! You have overspent this month."
	case AlertWarning:
		return "Warning: You have used 80% or more of your budget."
	default:
		return ""
	}
}

// EvaluateSavings measures balance against the savings goal.
//
// Percent is capped at 100 but deliberately not floored: a negative balance
// gives a negative percent. Use FillPercent for a bar width.
func EvaluateSavings(goal, balance Money) SavingsStatus {
	st := SavingsStatus{Goal: goal, Balance: balance}
	if goal.Cents <= 0 {
		return st
	}
	st.Set = true
	st.Saved = balance.Max(Money{})
	st.Remaining = goal.Sub(st.Saved).Max(Money{})
	st.Percent = decimal.Min(
		decimal.NewFromInt(balance.Cents).Mul(hundred).Div(decimal.NewFromInt(goal.Cents)),
		hundred,
	)
	return st
}

// FillPercent is Percent clamped to [0, 100].
func (s SavingsStatus) FillPercent() decimal.Decimal {
	if !s.Set || s.Percent.IsNegative() {
		return decimal.Zero
	}
	return s.Percent
}

// PercentText renders the percent with one decimal, or "No Goal Set".
func (s SavingsStatus) PercentText() string {
	if !s.Set {
		return "No Goal Set"
	}
	return s.Percent.StringFixed(1) + "%"
}
