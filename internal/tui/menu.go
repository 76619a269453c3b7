package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/config"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/storage"
)

// App is the interactive dashboard. It is thin glue over the services:
// every menu action prompts with huh, calls one service operation, and
// renders the result with lipgloss.
type App struct {
	cfg        *config.Config
	storage    *storage.SQLiteRepository
	ledger     *services.LedgerService
	goals      *services.GoalService
	templates  *services.TemplateService
	categories *services.CategoryService
	autoApply  *services.AutoApplyController

	summaries *cache.LRUCache[services.PeriodSummary]
	out       io.Writer
}

func NewApp(cfg *config.Config, repo *storage.SQLiteRepository, ledger *services.LedgerService, goals *services.GoalService, templates *services.TemplateService, categories *services.CategoryService, autoApply *services.AutoApplyController, out io.Writer) *App {
	return &App{
		cfg:        cfg,
		storage:    repo,
		ledger:     ledger,
		goals:      goals,
		templates:  templates,
		categories: categories,
		autoApply:  autoApply,
		summaries:  cache.NewLRUCache[services.PeriodSummary](16, 5*time.Minute),
		out:        out,
	}
}

// Caches returns the app's caches for registration with a cache manager.
func (a *App) Caches() []cache.Cleaner {
	return []cache.Cleaner{a.summaries}
}

// Run performs the startup auto-apply pass, renders the dashboard, and
// enters the menu loop until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	today := core.DateOf(time.Now())

	result, err := a.autoApply.RunOnce(ctx, today)
	if err != nil {
		// The dashboard is still usable without the pass; warn and go on.
		slog.ErrorContext(ctx, "Auto-apply pass failed", "error", err)
		fmt.Fprintln(a.out, expenseStyle.Render(fmt.Sprintf("Auto-apply failed: %v", err)))
	} else {
		fmt.Fprintln(a.out, RenderStartupBanner(result))
	}

	if err := a.renderDashboard(ctx, today); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		action, err := a.pickAction()
		if err != nil {
			return fmt.Errorf("read menu choice: %w", err)
		}

		if action == actionQuit {
			return nil
		}
		if err := a.dispatch(ctx, action); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintln(a.out, expenseStyle.Render(err.Error()))
		}
	}
}

const (
	actionAddTransaction    = "add"
	actionRecent            = "recent"
	actionFilterCategory    = "filter"
	actionWeeklySummary     = "weekly"
	actionMonthlySummary    = "monthly"
	actionCalendar          = "calendar"
	actionDeleteTransaction = "delete"
	actionSetGoal           = "goal"
	actionAddToSavings      = "savings"
	actionTemplates         = "templates"
	actionCategories        = "categories"
	actionQuit              = "quit"
)

func (a *App) pickAction() (string, error) {
	var action string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("What would you like to do?").
			Options(
				huh.NewOption("Add transaction", actionAddTransaction),
				huh.NewOption("Recent transactions", actionRecent),
				huh.NewOption("Filter by category", actionFilterCategory),
				huh.NewOption("Weekly summary", actionWeeklySummary),
				huh.NewOption("Monthly summary", actionMonthlySummary),
				huh.NewOption(fmt.Sprintf("Payment calendar (%d weeks)", a.cfg.CalendarWeeks), actionCalendar),
				huh.NewOption("Delete transaction", actionDeleteTransaction),
				huh.NewOption("Set savings goal", actionSetGoal),
				huh.NewOption("Add to savings", actionAddToSavings),
				huh.NewOption("Manage recurring templates", actionTemplates),
				huh.NewOption("Manage categories", actionCategories),
				huh.NewOption("Quit", actionQuit),
			).
			Value(&action),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	return action, nil
}

func (a *App) dispatch(ctx context.Context, action string) error {
	today := core.DateOf(time.Now())

	switch action {
	case actionAddTransaction:
		return a.addTransaction(ctx, today)
	case actionRecent:
		return a.showRecent(ctx)
	case actionFilterCategory:
		return a.filterByCategory(ctx)
	case actionWeeklySummary:
		start := services.StartOfWeek(today)
		return a.showSummary(ctx, "week", start, start.AddDays(6))
	case actionMonthlySummary:
		from := core.NewDate(today.Year(), today.Month(), 1)
		to := core.NewDate(today.Year(), today.Month()+1, 0)
		return a.showSummary(ctx, "month", from, to)
	case actionCalendar:
		return a.showCalendar(ctx, today)
	case actionDeleteTransaction:
		return a.deleteTransaction(ctx)
	case actionSetGoal:
		return a.setGoal(ctx)
	case actionAddToSavings:
		return a.addToSavings(ctx, today)
	case actionTemplates:
		return a.manageTemplates(ctx, today)
	case actionCategories:
		return a.manageCategories(ctx)
	}
	return fmt.Errorf("unknown action %q", action)
}

func (a *App) renderDashboard(ctx context.Context, today core.Date) error {
	income, expense, err := a.ledger.Totals(ctx)
	if err != nil {
		return fmt.Errorf("load totals: %w", err)
	}
	balance, err := a.ledger.Balance(ctx)
	if err != nil {
		return fmt.Errorf("load balance: %w", err)
	}
	goal, err := a.goals.Goal(ctx)
	if err != nil {
		return fmt.Errorf("load savings goal: %w", err)
	}

	fmt.Fprintln(a.out, RenderOverview(income, expense, balance))
	fmt.Fprintln(a.out, RenderGoal(goal))

	events, err := a.dueThisMonth(ctx, today)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, RenderDueTemplates(events))

	weeks, err := a.projectWeeks(ctx, services.StartOfWeek(today), 1)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, RenderCalendar(weeks))
	return nil
}

func (a *App) addTransaction(ctx context.Context, today core.Date) error {
	var (
		kind     = string(core.Expense)
		amount   string
		category string
		desc     string
		dateStr  = today.String()
	)

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Kind").
			Options(
				huh.NewOption("Expense", string(core.Expense)),
				huh.NewOption("Income", string(core.Income)),
			).
			Value(&kind),
		huh.NewInput().
			Title("Amount").
			Placeholder("15.50").
			Validate(validateAmount).
			Value(&amount),
		huh.NewInput().
			Title("Category").
			Placeholder("Food").
			Validate(notEmpty("category")).
			Value(&category),
		huh.NewInput().
			Title("Description (optional)").
			Value(&desc),
		huh.NewInput().
			Title("Date").
			Validate(validateDate).
			Value(&dateStr),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("read transaction: %w", err)
	}

	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return err
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return err
	}

	tx := core.Transaction{
		Date:        date,
		Amount:      core.Money{Cents: cents},
		Kind:        core.TxKind(kind),
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(desc),
	}
	id, err := a.ledger.PostTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("post transaction: %w", err)
	}
	a.summaries.Clear()

	fmt.Fprintln(a.out, paidStyle.Render(fmt.Sprintf("Added %s under %s (id %d)", FormatMoney(tx.Amount), tx.Category, id)))
	return nil
}

func (a *App) showRecent(ctx context.Context) error {
	txs, err := a.ledger.RecentTransactions(ctx, 20)
	if err != nil {
		return fmt.Errorf("list recent transactions: %w", err)
	}
	fmt.Fprintln(a.out, RenderTransactions(txs))
	return nil
}

func (a *App) filterByCategory(ctx context.Context) error {
	var filter string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Category to filter by").
			Validate(notEmpty("category")).
			Value(&filter),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("read filter: %w", err)
	}

	txs, err := a.ledger.TransactionsByCategory(ctx, strings.TrimSpace(filter))
	if err != nil {
		return fmt.Errorf("filter transactions: %w", err)
	}
	fmt.Fprintln(a.out, RenderTransactions(txs))
	return nil
}

func (a *App) showSummary(ctx context.Context, kind string, from, to core.Date) error {
	key := fmt.Sprintf("%s:%s", kind, from.String())
	summary, ok := a.summaries.Get(key)
	if !ok {
		var err error
		summary, err = a.ledger.Summarize(ctx, from, to)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		a.summaries.Set(key, summary)
	}
	fmt.Fprintln(a.out, RenderSummary(summary))
	return nil
}

func (a *App) showCalendar(ctx context.Context, today core.Date) error {
	weeks, err := a.projectWeeks(ctx, services.StartOfWeek(today), a.cfg.CalendarWeeks)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, RenderCalendar(weeks))
	return nil
}

// dueThisMonth classifies every template for today's month. Only
// recurring-prefix postings count towards the paid check.
func (a *App) dueThisMonth(ctx context.Context, today core.Date) ([]services.ScheduledEvent, error) {
	templates, err := a.templates.Templates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	txs, err := a.storage.ListByDescriptionPrefix(ctx, services.RecurringPrefix, today.Year(), today.Month())
	if err != nil {
		return nil, fmt.Errorf("list recurring postings: %w", err)
	}

	return services.ComputeDueTemplates(today, templates, services.NewPostedIndex(txs)), nil
}

// projectWeeks loads everything the projector needs and runs it. The
// transaction window spans whole months so satisfied-checks see every
// posting in each month the grid touches.
func (a *App) projectWeeks(ctx context.Context, start core.Date, weeks int) ([]services.WeekProjection, error) {
	templates, err := a.templates.Templates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	end := start.AddDays(weeks*7 - 1)
	from := core.NewDate(start.Year(), start.Month(), 1)
	to := core.NewDate(end.Year(), end.Month()+1, 0)

	txs, err := a.storage.ListTransactionsInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}

	posted := services.NewPostedIndex(txs)
	threshold := core.Money{Cents: a.cfg.LargeExpenseThresholdCents}
	return services.ProjectWeeks(start, weeks, templates, posted, txs, threshold), nil
}

func (a *App) deleteTransaction(ctx context.Context) error {
	if err := a.showRecent(ctx); err != nil {
		return err
	}

	var idStr string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Transaction ID to delete").
			Validate(validateID).
			Value(&idStr),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("read transaction ID: %w", err)
	}
	id, _ := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)

	var confirm bool
	confirmForm := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete transaction %d?", id)).
			Value(&confirm),
	))
	if err := confirmForm.Run(); err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if !confirm {
		fmt.Fprintln(a.out, faintStyle.Render("Deletion cancelled"))
		return nil
	}

	if err := a.ledger.DeleteTransaction(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("transaction %d not found", id)
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	a.summaries.Clear()

	fmt.Fprintln(a.out, paidStyle.Render(fmt.Sprintf("Deleted transaction %d", id)))
	return nil
}

func (a *App) setGoal(ctx context.Context) error {
	var target string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Savings target").
			Placeholder("1000.00").
			Validate(validateAmount).
			Value(&target),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("read target: %w", err)
	}

	cents, err := core.ParseDecimalToCents(target)
	if err != nil {
		return err
	}
	if err := a.goals.SetTarget(ctx, core.Money{Cents: cents}); err != nil {
		return fmt.Errorf("set savings target: %w", err)
	}

	fmt.Fprintln(a.out, paidStyle.Render(fmt.Sprintf("Savings goal set to %s", FormatCents(cents))))
	return nil
}

func (a *App) addToSavings(ctx context.Context, today core.Date) error {
	var amount string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Amount to add to savings").
			Placeholder("50.00").
			Validate(validateAmount).
			Value(&amount),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("read amount: %w", err)
	}

	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return err
	}

	goal, err := a.goals.AddToSavings(ctx, core.Money{Cents: cents}, today)
	if err != nil {
		if errors.Is(err, services.ErrGoalNotSet) {
			return errors.New("no savings goal set, set one first")
		}
		return fmt.Errorf("add to savings: %w", err)
	}
	a.summaries.Clear()

	fmt.Fprintln(a.out, paidStyle.Render(fmt.Sprintf("Added %s to savings, now %s of %s",
		FormatCents(cents), FormatMoney(goal.Saved), FormatMoney(goal.Target))))
	return nil
}

func (a *App) manageTemplates(ctx context.Context, today core.Date) error {
	var action string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Recurring templates").
			Options(
				huh.NewOption("List templates", "list"),
				huh.NewOption("Add template", "add"),
				huh.NewOption("Apply template now", "apply"),
				huh.NewOption("Delete template", "delete"),
				huh.NewOption("Back", "back"),
			).
			Value(&action),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("read template action: %w", err)
	}

	switch action {
	case "list":
		return a.listTemplates(ctx)
	case "add":
		return a.addTemplate(ctx)
	case "apply":
		return a.applyTemplate(ctx, today)
	case "delete":
		return a.removeTemplate(ctx)
	}
	return nil
}

func (a *App) listTemplates(ctx context.Context) error {
	templates, err := a.templates.Templates(ctx)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	fmt.Fprintln(a.out, RenderTemplates(templates))
	return nil
}

func (a *App) addTemplate(ctx context.Context) error {
	var (
		name     string
		amount   string
		category string
		desc     string
		dueDay   string
	)
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Template name").
			Placeholder("Rent").
			Validate(notEmpty("name")).
			Value(&name),
		huh.NewInput().
			Title("Amount").
			Placeholder("800.00").
			Validate(validateAmount).
			Value(&amount),
		huh.NewInput().
			Title("Category").
			Placeholder("Housing").
			Validate(notEmpty("category")).
			Value(&category),
		huh.NewInput().
			Title("Description (optional)").
			Value(&desc),
		huh.NewInput().
			Title("Due day of month (1-31)").
			Validate(validateDueDay).
			Value(&dueDay),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return err
	}
	day, _ := strconv.Atoi(strings.TrimSpace(dueDay))

	rt := core.RecurringTemplate{
		Name:        strings.TrimSpace(name),
		Amount:      core.Money{Cents: cents},
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(desc),
		DueDay:      day,
	}
	id, err := a.templates.CreateTemplate(ctx, rt)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}

	fmt.Fprintln(a.out, paidStyle.Render(fmt.Sprintf("Template %q added (id %d), due day %d", rt.Name, id, rt.DueDay)))
	return nil
}

func (a *App) applyTemplate(ctx context.Context, today core.Date) error {
	templates, err := a.templates.Templates(ctx)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	if len(templates) == 0 {
		fmt.Fprintln(a.out, faintStyle.Render("No recurring templates found"))
		return nil
	}

	options := make([]huh.Option[int64], 0, len(templates))
	byID := make(map[int64]core.RecurringTemplate, len(templates))
	for _, rt := range templates {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s, day %d)", rt.Name, FormatMoney(rt.Amount), rt.DueDay), rt.ID))
		byID[rt.ID] = rt
	}

	var id int64
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int64]().
			Title("Template to apply").
			Options(options...).
			Value(&id),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("read template choice: %w", err)
	}

	rt := byID[id]
	txID, err := a.ledger.ApplyTemplate(ctx, rt, today)
	if err != nil {
		return fmt.Errorf("apply template: %w", err)
	}
	a.summaries.Clear()

	fmt.Fprintln(a.out, paidStyle.Render(fmt.Sprintf("Applied %q as expense (transaction %d)", rt.Name, txID)))
	return nil
}

func (a *App) removeTemplate(ctx context.Context) error {
	if err := a.listTemplates(ctx); err != nil {
		return err
	}

	var idStr string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Template ID to delete").
			Validate(validateID).
			Value(&idStr),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("read template ID: %w", err)
	}
	id, _ := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)

	if err := a.templates.DeleteTemplate(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("template %d not found", id)
		}
		return fmt.Errorf("delete template: %w", err)
	}

	fmt.Fprintln(a.out, paidStyle.Render(fmt.Sprintf("Deleted template %d", id)))
	return nil
}

func (a *App) manageCategories(ctx context.Context) error {
	var action string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Categories").
			Options(
				huh.NewOption("List categories", "list"),
				huh.NewOption("Add category", "add"),
				huh.NewOption("Delete category", "delete"),
				huh.NewOption("Back", "back"),
			).
			Value(&action),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("read category action: %w", err)
	}

	switch action {
	case "list":
		cats, err := a.categories.Categories(ctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		fmt.Fprintln(a.out, RenderCategories(cats))
	case "add":
		var name string
		addForm := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Category name").
				Validate(notEmpty("name")).
				Value(&name),
		))
		if err := addForm.Run(); err != nil {
			return fmt.Errorf("read category name: %w", err)
		}
		if err := a.categories.CreateCategory(ctx, strings.TrimSpace(name)); err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		fmt.Fprintln(a.out, paidStyle.Render(fmt.Sprintf("Category %q added", strings.TrimSpace(name))))
	case "delete":
		var name string
		delForm := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Category name to delete").
				Validate(notEmpty("name")).
				Value(&name),
		))
		if err := delForm.Run(); err != nil {
			return fmt.Errorf("read category name: %w", err)
		}
		if err := a.categories.DeleteCategory(ctx, strings.TrimSpace(name)); err != nil {
			if errors.Is(err, core.ErrProtectedCategory) {
				return fmt.Errorf("category %q is protected and cannot be deleted", strings.TrimSpace(name))
			}
			return fmt.Errorf("delete category: %w", err)
		}
		fmt.Fprintln(a.out, paidStyle.Render(fmt.Sprintf("Category %q deleted", strings.TrimSpace(name))))
	}
	return nil
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func validateAmount(s string) error {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return errors.New("enter a valid positive amount, e.g. 15.50")
	}
	if cents <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}

func validateDueDay(s string) error {
	day, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || day < 1 || day > 31 {
		return errors.New("due day must be between 1 and 31")
	}
	return nil
}

func validateID(s string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
		return errors.New("enter a numeric ID")
	}
	return nil
}

func validateDate(s string) error {
	if _, err := parseDate(s); err != nil {
		return errors.New("enter a date as YYYY-MM-DD")
	}
	return nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.DateOf(t), nil
}
