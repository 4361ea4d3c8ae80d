package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/services"
)

// App is what every subcommand runs against.
type App struct {
	Tracker *services.Tracker
	Out     io.Writer
	Err     io.Writer
	In      io.Reader
	// Publisher queues spreadsheet exports; nil disables export -sheet.
	Publisher export.JobPublisher
	Now       func() time.Time
	// Plain prints markdown source instead of rendering it.
	Plain bool
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// fail reports err on the error stream and maps it to an exit status.
func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(a.Err, "Error:", err)
	if core.IsValidation(err) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// report prints a write-through warning and passes any other error on.
func (a *App) report(err error) error {
	if err != nil && core.IsPersistence(err) {
		fmt.Fprintln(a.Err, "Warning: change saved for this session only:", err)
		return nil
	}
	return err
}

// confirm asks question on Out and reads a yes/no answer from In.
func (a *App) confirm(question string) bool {
	fmt.Fprintf(a.Out, "%s [y/N] ", question)
	sc := bufio.NewScanner(a.In)
	if !sc.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(sc.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// runGated requests tok's action, asks for confirmation unless yes is set,
// then confirms or cancels it.
func (a *App) runGated(ctx context.Context, tok services.Token, question string, yes bool) (bool, error) {
	if !yes && !a.confirm(question) {
		a.Tracker.Cancel(tok)
		return false, nil
	}
	_, err := a.Tracker.Confirm(ctx, tok)
	return true, a.report(err)
}

// Register adds every fintrack subcommand to c.
func Register(c *subcommands.Commander, app *App) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&addCmd{app: app}, "transactions")
	c.Register(&editCmd{app: app}, "transactions")
	c.Register(&deleteCmd{app: app}, "transactions")
	c.Register(&listCmd{app: app}, "transactions")
	c.Register(&categoriesCmd{app: app}, "transactions")

	c.Register(&summaryCmd{app: app}, "reports")
	c.Register(&exportCmd{app: app}, "reports")

	c.Register(&settingCmd{app: app, name: "budget"}, "settings")
	c.Register(&settingCmd{app: app, name: "savings"}, "settings")
	c.Register(&themeCmd{app: app}, "settings")
	c.Register(&resetCmd{app: app}, "settings")
}

type filterFlags struct {
	month string
	year  string
}

func (p *filterFlags) set(f *flag.FlagSet) {
	f.StringVar(&p.month, "month", "", "Only show this month (1-12).")
	f.StringVar(&p.year, "year", "", "Only show this year (YYYY).")
}

func (p *filterFlags) apply(t *services.Tracker) error {
	flt, err := core.ParseFilter(p.month, p.year)
	if err != nil {
		return err
	}
	return t.SetFilter(flt)
}

type draftFlags struct {
	typ         string
	amount      string
	category    string
	description string
	date        string
}

func (p *draftFlags) set(f *flag.FlagSet) {
	f.StringVar(&p.typ, "type", "", "income or expense.")
	f.StringVar(&p.amount, "amount", "", "Positive amount, e.g. 12.50.")
	f.StringVar(&p.category, "category", "", "Category for the type, see `fintrack categories`.")
	f.StringVar(&p.description, "description", "", "What the transaction was for.")
	f.StringVar(&p.date, "date", "", "Date as YYYY-MM-DD.")
}

// overlay fills d with every flag that was given.
func (p *draftFlags) overlay(d core.Draft) core.Draft {
	if p.typ != "" {
		d.Type = p.typ
	}
	if p.amount != "" {
		d.Amount = p.amount
	}
	if p.category != "" {
		d.Category = p.category
	}
	if p.description != "" {
		d.Description = p.description
	}
	if p.date != "" {
		d.Date = p.date
	}
	return d
}

func draftOf(t core.Transaction) core.Draft {
	return core.Draft{
		Type:        string(t.Type),
		Amount:      t.Amount.String(),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.String(),
	}
}

type addCmd struct {
	app *App
	draftFlags
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an income or an expense" }
func (*addCmd) Usage() string {
	return `fintrack add -type <income|expense> -amount <n> -category <name> -description <text> [-date YYYY-MM-DD]

  Adds a transaction. The date defaults to today.
`
}

func (p *addCmd) SetFlags(f *flag.FlagSet) { p.draftFlags.set(f) }

func (p *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d := p.overlay(core.Draft{Date: core.Today(p.app.now()).String()})
	tx, err := p.app.Tracker.AddTransaction(ctx, d)
	if err := p.app.report(err); err != nil {
		return p.app.fail(err)
	}
	fmt.Fprintf(p.app.Out, "Added %s: %s %s on %s\n", tx.ID, signedAmount(tx), tx.Category, tx.Date)
	return subcommands.ExitSuccess
}

type editCmd struct {
	app *App
	draftFlags
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change an existing transaction" }
func (*editCmd) Usage() string {
	return `fintrack edit [-type ..] [-amount ..] [-category ..] [-description ..] [-date ..] <id>

  Replaces the given fields of transaction <id>. Fields left out keep their value.
`
}

func (p *editCmd) SetFlags(f *flag.FlagSet) { p.draftFlags.set(f) }

func (p *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(p.app.Err, p.Usage())
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	cur, err := p.app.Tracker.Transaction(id)
	if err != nil {
		return p.app.fail(err)
	}
	tx, err := p.app.Tracker.EditTransaction(ctx, id, p.overlay(draftOf(cur)))
	if err := p.app.report(err); err != nil {
		return p.app.fail(err)
	}
	fmt.Fprintf(p.app.Out, "Updated %s: %s %s on %s\n", tx.ID, signedAmount(tx), tx.Category, tx.Date)
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	app *App
	yes bool
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a transaction after confirmation" }
func (*deleteCmd) Usage() string {
	return `fintrack delete [-y] <id>
`
}

func (p *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.yes, "y", false, "Do not ask for confirmation.")
}

func (p *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(p.app.Err, p.Usage())
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	tok, err := p.app.Tracker.RequestDelete(id)
	if err != nil {
		return p.app.fail(err)
	}
	done, err := p.app.runGated(ctx, tok, "Are you sure you want to delete this transaction?", p.yes)
	if err != nil {
		return p.app.fail(err)
	}
	if !done {
		fmt.Fprintln(p.app.Out, "Cancelled.")
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(p.app.Out, "Deleted %s\n", id)
	return subcommands.ExitSuccess
}

type listCmd struct {
	app *App
	filterFlags
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list transactions, newest first" }
func (*listCmd) Usage() string {
	return `fintrack list [-month <m>] [-year <yyyy>]
`
}

func (p *listCmd) SetFlags(f *flag.FlagSet) { p.filterFlags.set(f) }

func (p *listCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := p.apply(p.app.Tracker); err != nil {
		return p.app.fail(err)
	}
	if err := p.app.printMarkdown(TransactionsMarkdown(p.app.Tracker.View())); err != nil {
		return p.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	app *App
	filterFlags
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show totals, budget, savings and breakdowns" }
func (*summaryCmd) Usage() string {
	return `fintrack summary [-month <m>] [-year <yyyy>]

  Totals and breakdowns follow the filter. The budget always measures the
  current calendar month and the savings goal always measures the overall
  balance.
`
}

func (p *summaryCmd) SetFlags(f *flag.FlagSet) { p.filterFlags.set(f) }

func (p *summaryCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := p.apply(p.app.Tracker); err != nil {
		return p.app.fail(err)
	}
	if err := p.app.printMarkdown(SummaryMarkdown(p.app.Tracker.View())); err != nil {
		return p.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type categoriesCmd struct {
	app *App
	typ string
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list the allowed categories" }
func (*categoriesCmd) Usage() string {
	return `fintrack categories [-type <income|expense>]
`
}

func (p *categoriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.typ, "type", "", "Only list categories for this type.")
}

func (p *categoriesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	types := []core.Type{core.Income, core.Expense}
	if p.typ != "" {
		t, err := core.ParseType(p.typ)
		if err != nil {
			return p.app.fail(err)
		}
		types = []core.Type{t}
	}
	if err := p.app.printMarkdown(CategoriesMarkdown(types...)); err != nil {
		return p.app.fail(err)
	}
	return subcommands.ExitSuccess
}

// settingCmd sets the budget or the savings goal, depending on name.
type settingCmd struct {
	app  *App
	name string
}

func (p *settingCmd) Name() string { return p.name }
func (p *settingCmd) Synopsis() string {
	if p.name == "budget" {
		return "set the monthly budget (0 clears it)"
	}
	return "set the savings goal (0 clears it)"
}
func (p *settingCmd) Usage() string {
	return fmt.Sprintf("fintrack %s <amount>\n", p.name)
}

func (*settingCmd) SetFlags(*flag.FlagSet) {}

func (p *settingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(p.app.Err, p.Usage())
		return subcommands.ExitUsageError
	}
	set := p.app.Tracker.SetSavingsGoal
	if p.name == "budget" {
		set = p.app.Tracker.SetBudget
	}
	v, err := set(ctx, f.Arg(0))
	if err := p.app.report(err); err != nil {
		return p.app.fail(err)
	}
	if v.IsZero() {
		fmt.Fprintf(p.app.Out, "Cleared %s\n", p.name)
	} else {
		fmt.Fprintf(p.app.Out, "Set %s to %s\n", p.name, v.Display())
	}
	return subcommands.ExitSuccess
}

type themeCmd struct {
	app *App
}

func (*themeCmd) Name() string     { return "theme" }
func (*themeCmd) Synopsis() string { return "toggle between the light and dark theme" }
func (*themeCmd) Usage() string    { return "fintrack theme\n" }

func (*themeCmd) SetFlags(*flag.FlagSet) {}

func (p *themeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	th, err := p.app.Tracker.ToggleTheme(ctx)
	if err := p.app.report(err); err != nil {
		return p.app.fail(err)
	}
	fmt.Fprintf(p.app.Out, "Theme is now %s\n", th)
	return subcommands.ExitSuccess
}

type resetCmd struct {
	app *App
	yes bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "delete every transaction, the budget and the savings goal" }
func (*resetCmd) Usage() string {
	return `fintrack reset [-y]

  The theme is kept.
`
}

func (p *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.yes, "y", false, "Do not ask for confirmation.")
}

func (p *resetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tok := p.app.Tracker.RequestReset()
	done, err := p.app.runGated(ctx, tok, "This will permanently delete all your data. Continue?", p.yes)
	if err != nil {
		return p.app.fail(err)
	}
	if !done {
		fmt.Fprintln(p.app.Out, "Cancelled.")
		return subcommands.ExitSuccess
	}
	fmt.Fprintln(p.app.Out, "All data has been reset.")
	return subcommands.ExitSuccess
}

type exportCmd struct {
	app    *App
	output string
	sheet  bool
	filterFlags
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the filtered transactions as CSV" }
func (*exportCmd) Usage() string {
	return `fintrack export [-month <m>] [-year <yyyy>] [-o <file>|-o -] [-sheet]

  Writes finance-tracker-export-<date>.csv in the current directory unless
  -o names another file; "-o -" writes to standard output. With -sheet the
  rows are queued for the spreadsheet export worker instead.
`
}

func (p *exportCmd) SetFlags(f *flag.FlagSet) {
	p.filterFlags.set(f)
	f.StringVar(&p.output, "o", "", "Output file, - for stdout.")
	f.BoolVar(&p.sheet, "sheet", false, "Queue a spreadsheet export instead of writing CSV.")
}

func (p *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := p.apply(p.app.Tracker); err != nil {
		return p.app.fail(err)
	}
	if p.sheet {
		return p.queueSheet(ctx)
	}

	if p.output == "-" {
		if _, _, err := p.app.Tracker.Export(p.app.Out); err != nil {
			return p.app.fail(err)
		}
		return subcommands.ExitSuccess
	}

	var buf strings.Builder
	name, n, err := p.app.Tracker.Export(&buf)
	if err != nil {
		return p.app.fail(err)
	}
	if p.output != "" {
		name = p.output
	}
	if err := os.WriteFile(name, []byte(buf.String()), 0o644); err != nil {
		return p.app.fail(err)
	}
	fmt.Fprintf(p.app.Out, "Exported %d transactions to %s\n", n, name)
	return subcommands.ExitSuccess
}

func (p *exportCmd) queueSheet(ctx context.Context) subcommands.ExitStatus {
	if p.app.Publisher == nil {
		return p.app.fail(errors.New("spreadsheet export is not configured (set AMQP_URL)"))
	}
	filter, rows := p.app.Tracker.Selection()
	jobID, err := export.QueueSheetExport(ctx, p.app.Publisher, filter, rows, p.app.now())
	if err != nil {
		return p.app.fail(err)
	}
	fmt.Fprintf(p.app.Out, "Queued spreadsheet export %s\n", jobID)
	return subcommands.ExitSuccess
}
