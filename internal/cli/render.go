package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// printMarkdown renders md for the terminal in the stored theme. Plain
// output writes the markdown source untouched.
func (a *App) printMarkdown(md string) error {
	if a.Plain {
		_, err := io.WriteString(a.Out, md)
		return err
	}
	style := "light"
	if a.Tracker.Theme() == core.ThemeDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.Out, out)
	return err
}

func filterTitle(f core.Filter) string {
	switch {
	case f.IsEmpty():
		return "All time"
	case f.Year == "":
		return "Month " + f.Month + ", every year"
	case f.Month == "":
		return "Year " + f.Year
	default:
		return f.Year + "-" + f.Month
	}
}

// escapeCell keeps user text from breaking a markdown table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func signedAmount(t core.Transaction) string {
	if t.Type == core.Expense {
		return "-" + t.Amount.Display()
	}
	return "+" + t.Amount.Display()
}

// TransactionsMarkdown lists txns as a table, newest first.
func TransactionsMarkdown(v services.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions (%s)\n\n", filterTitle(v.Filter))
	if len(v.Transactions) == 0 {
		if v.StoredCount == 0 {
			b.WriteString("No transactions yet. Add your first one with `fintrack add`.\n")
		} else {
			b.WriteString("No transactions match the current filter.\n")
		}
		return b.String()
	}
	b.WriteString("| Date | ID | Category | Description | Amount |\n")
	b.WriteString("|:-----|:---|:---------|:------------|-------:|\n")
	for _, t := range v.Transactions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			t.Date.String(), t.ID, escapeCell(t.Category), escapeCell(t.Description), signedAmount(t))
	}
	return b.String()
}

// SummaryMarkdown renders totals, budget, savings and the chart series.
func SummaryMarkdown(v services.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Summary (%s)\n\n", filterTitle(v.Filter))

	b.WriteString("| | Amount |\n|:--|--:|\n")
	fmt.Fprintf(&b, "| Total Income | %s |\n", v.Totals.Income.Display())
	fmt.Fprintf(&b, "| Total Expenses | %s |\n", v.Totals.Expense.Display())
	fmt.Fprintf(&b, "| Net Balance | %s |\n\n", v.Totals.Balance.Display())

	b.WriteString("## Monthly Budget\n\n")
	if v.Budget.Set {
		fmt.Fprintf(&b, "Budget %s, spent %s, remaining %s (%s%%)\n\n",
			v.Budget.Budget.Display(), v.Budget.Spent.Display(), v.Budget.RemainingText(),
			v.Budget.UtilizationPercent.StringFixed(1))
		if msg := v.Budget.Message(); msg != "" {
			fmt.Fprintf(&b, "> **%s**\n\n", msg)
		}
	} else {
		b.WriteString("No budget set. Use `fintrack budget <amount>`.\n\n")
	}

	b.WriteString("## Savings Goal\n\n")
	if v.Savings.Set {
		fmt.Fprintf(&b, "Goal %s, saved %s, remaining %s: %s\n\n",
			v.Savings.Goal.Display(), v.Savings.Saved.Display(), v.Savings.Remaining.Display(), v.Savings.PercentText())
	} else {
		b.WriteString(v.Savings.PercentText() + "\n\n")
	}

	if len(v.CategoryTotals) > 0 {
		b.WriteString("## Expenses by Category\n\n| Category | Amount |\n|:--|--:|\n")
		for _, c := range v.CategoryTotals {
			fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(c.Name), c.Amount.Display())
		}
		b.WriteString("\n")
	}

	if len(v.DailyExpenses) > 0 {
		b.WriteString("## Daily Expenses\n\n| Date | Amount |\n|:--|--:|\n")
		for _, d := range v.DailyExpenses {
			fmt.Fprintf(&b, "| %s | %s |\n", d.Date, d.Amount.Display())
		}
		b.WriteString("\n")
	}
	return b.String()
}

// CategoriesMarkdown lists the allowed categories for each type in ts.
func CategoriesMarkdown(ts ...core.Type) string {
	var b strings.Builder
	for _, t := range ts {
		fmt.Fprintf(&b, "## %s\n\n", strings.ToUpper(string(t[:1]))+string(t[1:]))
		for _, c := range core.CategoriesFor(t) {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}
	return b.String()
}
