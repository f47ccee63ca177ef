package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"kitty/internal/core"
	"kitty/internal/store"
)

var _ store.Store = (*SQLiteRepository)(nil)

// Timestamps are stored in UTC with a fixed width so that they sort as text.
const timeLayout = "2006-01-02 15:04:05.000000000"

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// dsn enables foreign keys on every pooled connection.
func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) stamp(t time.Time) string {
	if t.IsZero() {
		t = r.now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, store.ErrNotFound)
	}
	return fmt.Errorf("get %s %d: %w", what, id, err)
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	created := r.stamp(u.CreatedAt)
	email := sql.NullString{String: u.Email, Valid: u.Email != ""}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, created_at) VALUES (?, ?, ?)`,
		u.Name, email, created)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("user %q: %w", u.Email, store.ErrConflict)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}
	u.CreatedAt = parseTime(created)

	slog.DebugContext(ctx, "User saved to SQLite", "id", u.ID)
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var (
		u       core.User
		email   sql.NullString
		created string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &email, &created)
	if err != nil {
		return core.User{}, notFound(err, "user", id)
	}
	u.Email = email.String
	u.CreatedAt = parseTime(created)
	return u, nil
}

func (r *SQLiteRepository) CreateGroup(ctx context.Context, g core.Group) (core.Group, error) {
	created := r.stamp(g.CreatedAt)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_groups (name, monthly_target_cents, created_at) VALUES (?, ?, ?)`,
		g.Name, g.MonthlyTarget.Cents, created)
	if err != nil {
		return core.Group{}, fmt.Errorf("create group: %w", err)
	}
	if g.ID, err = res.LastInsertId(); err != nil {
		return core.Group{}, fmt.Errorf("group id: %w", err)
	}
	g.CreatedAt = parseTime(created)

	slog.DebugContext(ctx, "Group saved to SQLite", "id", g.ID, "name", g.Name)
	return g, nil
}

const groupColumns = `id, name, monthly_target_cents, created_at`

func scanGroup(row interface{ Scan(...any) error }) (core.Group, error) {
	var (
		g       core.Group
		created string
	)
	if err := row.Scan(&g.ID, &g.Name, &g.MonthlyTarget.Cents, &created); err != nil {
		return core.Group{}, err
	}
	g.CreatedAt = parseTime(created)
	return g, nil
}

func (r *SQLiteRepository) GetGroup(ctx context.Context, id int64) (core.Group, error) {
	g, err := scanGroup(r.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM ledger_groups WHERE id = ?`, id))
	if err != nil {
		return core.Group{}, notFound(err, "group", id)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGroups(ctx context.Context) ([]core.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+groupColumns+` FROM ledger_groups ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []core.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SetMonthlyTarget(ctx context.Context, groupID int64, target core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ledger_groups SET monthly_target_cents = ? WHERE id = ?`, target.Cents, groupID)
	if err != nil {
		return fmt.Errorf("set monthly target: %w", err)
	}
	return expectOne(res, "group", groupID)
}

func expectOne(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, store.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) AddMember(ctx context.Context, m core.Member) (core.Member, error) {
	if _, err := r.GetGroup(ctx, m.GroupID); err != nil {
		return core.Member{}, err
	}
	u, err := r.GetUser(ctx, m.ID)
	if err != nil {
		return core.Member{}, err
	}

	joined := r.stamp(m.JoinedAt)
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO members (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		m.GroupID, m.ID, string(m.Role), joined)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Member{}, fmt.Errorf("member %d of group %d: %w", m.ID, m.GroupID, store.ErrConflict)
		}
		return core.Member{}, fmt.Errorf("add member: %w", err)
	}

	m.Name = u.Name
	m.JoinedAt = parseTime(joined)
	return m, nil
}

func (r *SQLiteRepository) SetRole(ctx context.Context, groupID, userID int64, role core.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE members SET role = ? WHERE group_id = ? AND user_id = ?`, string(role), groupID, userID)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return expectOne(res, "member", userID)
}

const memberQuery = `
SELECT m.user_id, m.group_id, u.name, m.role, m.joined_at
FROM members m JOIN users u ON u.id = m.user_id`

func scanMember(row interface{ Scan(...any) error }) (core.Member, error) {
	var (
		m      core.Member
		role   string
		joined string
	)
	if err := row.Scan(&m.ID, &m.GroupID, &m.Name, &role, &joined); err != nil {
		return core.Member{}, err
	}
	m.Role = core.Role(role)
	m.JoinedAt = parseTime(joined)
	return m, nil
}

func (r *SQLiteRepository) GetMember(ctx context.Context, groupID, userID int64) (core.Member, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx,
		memberQuery+` WHERE m.group_id = ? AND m.user_id = ?`, groupID, userID))
	if err != nil {
		return core.Member{}, notFound(err, "member", userID)
	}
	return m, nil
}

func (r *SQLiteRepository) ListMembers(ctx context.Context, groupID int64) ([]core.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		memberQuery+` WHERE m.group_id = ? ORDER BY m.joined_at, m.user_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []core.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
