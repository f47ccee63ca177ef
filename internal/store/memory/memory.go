package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"kitty/internal/core"
	"kitty/internal/store"
)

var _ store.Store = (*Store)(nil)

type membership struct {
	group, user int64
}

// Store is a mutex-guarded in-memory Ledger Store. Ids are assigned
// sequentially per entity starting at 1.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users         map[int64]core.User
	groups        map[int64]core.Group
	members       map[membership]core.Member
	contributions map[int64]core.Contribution
	expenses      map[int64]core.Expense
	categories    []core.Category

	lastUser, lastGroup, lastContribution, lastExpense, lastCategory int64
}

// New returns an empty store whose global category registry holds cats.
func New(cats []string) *Store {
	s := &Store{
		now:           time.Now,
		users:         make(map[int64]core.User),
		groups:        make(map[int64]core.Group),
		members:       make(map[membership]core.Member),
		contributions: make(map[int64]core.Contribution),
		expenses:      make(map[int64]core.Expense),
	}
	for _, name := range dedupe(cats) {
		s.lastCategory++
		s.categories = append(s.categories, core.Category{ID: s.lastCategory, Name: name})
	}
	return s
}

// NewFromFiles seeds the category registry from base/seed_categories.txt,
// falling back to core.DefaultCategories when the file is missing or empty.
func NewFromFiles(base string) *Store {
	cats := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = core.DefaultCategories
	}
	return New(cats)
}

func (s *Store) Close() error { return nil }

func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now().UTC()
	}
	return t
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Email != "" {
		for _, existing := range s.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return core.User{}, fmt.Errorf("user %q: %w", u.Email, store.ErrConflict)
			}
		}
	}
	s.lastUser++
	u.ID = s.lastUser
	u.CreatedAt = s.stamp(u.CreatedAt)
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	return u, nil
}

func (s *Store) CreateGroup(_ context.Context, g core.Group) (core.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGroup++
	g.ID = s.lastGroup
	g.CreatedAt = s.stamp(g.CreatedAt)
	s.groups[g.ID] = g
	return g, nil
}

func (s *Store) GetGroup(_ context.Context, id int64) (core.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return core.Group{}, fmt.Errorf("group %d: %w", id, store.ErrNotFound)
	}
	return g, nil
}

func (s *Store) ListGroups(_ context.Context) ([]core.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SetMonthlyTarget(_ context.Context, groupID int64, target core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group %d: %w", groupID, store.ErrNotFound)
	}
	g.MonthlyTarget = target
	s.groups[groupID] = g
	return nil
}

func (s *Store) AddMember(_ context.Context, m core.Member) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[m.GroupID]; !ok {
		return core.Member{}, fmt.Errorf("group %d: %w", m.GroupID, store.ErrNotFound)
	}
	u, ok := s.users[m.ID]
	if !ok {
		return core.Member{}, fmt.Errorf("user %d: %w", m.ID, store.ErrNotFound)
	}
	key := membership{m.GroupID, m.ID}
	if _, ok := s.members[key]; ok {
		return core.Member{}, fmt.Errorf("member %d of group %d: %w", m.ID, m.GroupID, store.ErrConflict)
	}
	m.Name = u.Name
	m.JoinedAt = s.stamp(m.JoinedAt)
	s.members[key] = m
	return m, nil
}

func (s *Store) SetRole(_ context.Context, groupID, userID int64, role core.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membership{groupID, userID}
	m, ok := s.members[key]
	if !ok {
		return fmt.Errorf("member %d of group %d: %w", userID, groupID, store.ErrNotFound)
	}
	m.Role = role
	s.members[key] = m
	return nil
}

func (s *Store) GetMember(_ context.Context, groupID, userID int64) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[membership{groupID, userID}]
	if !ok {
		return core.Member{}, fmt.Errorf("member %d of group %d: %w", userID, groupID, store.ErrNotFound)
	}
	return m, nil
}

func (s *Store) ListMembers(_ context.Context, groupID int64) ([]core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Member
	for key, m := range s.members {
		if key.group == groupID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) AddContribution(_ context.Context, c core.Contribution) (core.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[membership{c.GroupID, c.MemberID}]; !ok {
		return core.Contribution{}, fmt.Errorf("member %d of group %d: %w", c.MemberID, c.GroupID, store.ErrNotFound)
	}
	s.lastContribution++
	c.ID = s.lastContribution
	c.CreatedAt = s.stamp(c.CreatedAt)
	s.contributions[c.ID] = c
	return c, nil
}

func (s *Store) GetContribution(_ context.Context, groupID, id int64) (core.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contributions[id]
	if !ok || c.GroupID != groupID {
		return core.Contribution{}, fmt.Errorf("contribution %d: %w", id, store.ErrNotFound)
	}
	return c, nil
}

func (s *Store) DeleteContribution(_ context.Context, groupID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contributions[id]
	if !ok || c.GroupID != groupID {
		return fmt.Errorf("contribution %d: %w", id, store.ErrNotFound)
	}
	delete(s.contributions, id)
	return nil
}

func (s *Store) ListContributions(_ context.Context, f store.Filter) ([]core.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Contribution
	for _, c := range s.contributions {
		if f.MatchContribution(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		mi, mj := out[i].Period(), out[j].Period()
		if mi != mj {
			return mi.Before(mj)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[membership{e.GroupID, e.MemberID}]; !ok {
		return core.Expense{}, fmt.Errorf("member %d of group %d: %w", e.MemberID, e.GroupID, store.ErrNotFound)
	}
	s.lastExpense++
	e.ID = s.lastExpense
	e.CreatedAt = s.stamp(e.CreatedAt)
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) GetExpense(_ context.Context, groupID, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.GroupID != groupID {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, store.ErrNotFound)
	}
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, groupID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.GroupID != groupID {
		return fmt.Errorf("expense %d: %w", id, store.ErrNotFound)
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, f store.Filter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if f.MatchExpense(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) AddCategory(_ context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return core.Category{}, core.ErrEmptyCategory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if (existing.GroupID == 0 || existing.GroupID == c.GroupID) && strings.EqualFold(existing.Name, c.Name) {
			return core.Category{}, fmt.Errorf("category %q: %w", c.Name, store.ErrConflict)
		}
	}
	s.lastCategory++
	c.ID = s.lastCategory
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, groupID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.GroupID == 0 || c.GroupID == groupID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe trims, drops blanks and keeps the first occurrence of each name.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
