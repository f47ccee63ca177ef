package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"kitty/internal/core"
	"kitty/internal/store"
)

// periodExpr places a contribution by its label, or by its creation month.
const periodExpr = `COALESCE(NULLIF(month, ''), substr(created_at, 1, 7))`

// where renders the filter as a WHERE clause. monthExpr is the SQL
// expression yielding the record's YYYY-MM month.
func where(f store.Filter, monthExpr string, withCategory bool) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.GroupID != 0 {
		clauses = append(clauses, "group_id = ?")
		args = append(args, f.GroupID)
	}
	if f.MemberID != 0 {
		clauses = append(clauses, "member_id = ?")
		args = append(args, f.MemberID)
	}
	if !f.From.IsZero() {
		clauses = append(clauses, monthExpr+" >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		clauses = append(clauses, monthExpr+" <= ?")
		args = append(args, f.To.String())
	}
	if withCategory && f.Category != "" {
		clauses = append(clauses, "category = ? COLLATE NOCASE")
		args = append(args, f.Category)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *SQLiteRepository) requireMember(ctx context.Context, groupID, memberID int64) error {
	_, err := r.GetMember(ctx, groupID, memberID)
	if err != nil {
		return fmt.Errorf("member %d of group %d: %w", memberID, groupID, store.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) AddContribution(ctx context.Context, c core.Contribution) (core.Contribution, error) {
	if err := r.requireMember(ctx, c.GroupID, c.MemberID); err != nil {
		return core.Contribution{}, err
	}

	created := r.stamp(c.CreatedAt)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contributions (group_id, member_id, amount_cents, month, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.GroupID, c.MemberID, c.Amount.Cents, c.Month.String(), c.Note, created)
	if err != nil {
		return core.Contribution{}, fmt.Errorf("create contribution: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.Contribution{}, fmt.Errorf("contribution id: %w", err)
	}
	c.CreatedAt = parseTime(created)

	slog.InfoContext(ctx, "Contribution saved to SQLite",
		"id", c.ID,
		"group_id", c.GroupID,
		"member_id", c.MemberID,
		"amount_cents", c.Amount.Cents,
		"month", c.Month.String())
	return c, nil
}

const contributionColumns = `id, group_id, member_id, amount_cents, month, note, created_at`

func scanContribution(row interface{ Scan(...any) error }) (core.Contribution, error) {
	var (
		c       core.Contribution
		month   string
		created string
	)
	if err := row.Scan(&c.ID, &c.GroupID, &c.MemberID, &c.Amount.Cents, &month, &c.Note, &created); err != nil {
		return core.Contribution{}, err
	}
	if month != "" {
		m, err := core.ParseMonth(month)
		if err != nil {
			return core.Contribution{}, err
		}
		c.Month = m
	}
	c.CreatedAt = parseTime(created)
	return c, nil
}

func (r *SQLiteRepository) GetContribution(ctx context.Context, groupID, id int64) (core.Contribution, error) {
	c, err := scanContribution(r.db.QueryRowContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions WHERE group_id = ? AND id = ?`, groupID, id))
	if err != nil {
		return core.Contribution{}, notFound(err, "contribution", id)
	}
	return c, nil
}

func (r *SQLiteRepository) DeleteContribution(ctx context.Context, groupID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contributions WHERE group_id = ? AND id = ?`, groupID, id)
	if err != nil {
		return fmt.Errorf("delete contribution: %w", err)
	}
	return expectOne(res, "contribution", id)
}

func (r *SQLiteRepository) ListContributions(ctx context.Context, f store.Filter) ([]core.Contribution, error) {
	clause, args := where(f, periodExpr, false)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions`+clause+` ORDER BY `+periodExpr+`, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var out []core.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := r.requireMember(ctx, e.GroupID, e.MemberID); err != nil {
		return core.Expense{}, err
	}

	created := r.stamp(e.CreatedAt)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (group_id, member_id, title, amount_cents, category, date, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.GroupID, e.MemberID, e.Title, e.Amount.Cents, e.Category, e.Date.String(), string(e.Source), created)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}
	e.CreatedAt = parseTime(created)

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"group_id", e.GroupID,
		"title", e.Title,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String(),
		"source", string(e.Source))
	return e, nil
}

const expenseColumns = `id, group_id, member_id, title, amount_cents, category, date, source, created_at`

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var (
		e       core.Expense
		date    string
		source  string
		created string
	)
	if err := row.Scan(&e.ID, &e.GroupID, &e.MemberID, &e.Title, &e.Amount.Cents, &e.Category, &date, &source, &created); err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, err
	}
	e.Date = d
	e.Source = core.PaymentSource(source)
	e.CreatedAt = parseTime(created)
	return e, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, groupID, id int64) (core.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE group_id = ? AND id = ?`, groupID, id))
	if err != nil {
		return core.Expense{}, notFound(err, "expense", id)
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, groupID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE group_id = ? AND id = ?`, groupID, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if err := expectOne(res, "expense", id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted from SQLite", "id", id, "group_id", groupID)
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, f store.Filter) ([]core.Expense, error) {
	clause, args := where(f, "substr(date, 1, 7)", true)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses`+clause+` ORDER BY date, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return core.Category{}, core.ErrEmptyCategory
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Category{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var clashes int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE group_id IN (0, ?) AND name = ? COLLATE NOCASE`,
		c.GroupID, c.Name).Scan(&clashes)
	if err != nil {
		return core.Category{}, fmt.Errorf("check category: %w", err)
	}
	if clashes > 0 {
		return core.Category{}, fmt.Errorf("category %q: %w", c.Name, store.ErrConflict)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO categories (group_id, name) VALUES (?, ?)`, c.GroupID, c.Name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Category{}, fmt.Errorf("commit category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, groupID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id, name FROM categories WHERE group_id IN (0, ?) ORDER BY name COLLATE BINARY`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.GroupID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
