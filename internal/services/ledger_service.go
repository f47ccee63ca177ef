package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kitty/internal/amqp"
	"kitty/internal/core"
	"kitty/internal/log"
	"kitty/internal/store"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrLastAdmin       = errors.New("group must keep at least one admin")
	ErrUnknownCategory = errors.New("unknown category")
)

// Publisher announces ledger changes to other processes.
type Publisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// LedgerService validates and authorises ledger writes, persists them through
// the store and announces them to the publisher.
type LedgerService struct {
	store     store.Store
	publisher Publisher
	now       func() time.Time
}

// NewLedgerService wires a service. publisher may be nil, in which case no
// change events are sent.
func NewLedgerService(s store.Store, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     s,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *LedgerService) CreateUser(ctx context.Context, name, email string) (core.User, error) {
	u := core.User{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := u.Validate(); err != nil {
		return core.User{}, fmt.Errorf("validate user: %w", err)
	}
	created, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// CreateGroup creates a group and makes its creator the first admin.
func (s *LedgerService) CreateGroup(ctx context.Context, creatorID int64, name string, target core.Money) (core.Group, error) {
	g := core.Group{Name: strings.TrimSpace(name), MonthlyTarget: target}
	if err := g.Validate(); err != nil {
		return core.Group{}, fmt.Errorf("validate group: %w", err)
	}
	if _, err := s.store.GetUser(ctx, creatorID); err != nil {
		return core.Group{}, fmt.Errorf("group creator: %w", err)
	}

	created, err := s.store.CreateGroup(ctx, g)
	if err != nil {
		return core.Group{}, fmt.Errorf("create group: %w", err)
	}
	if _, err := s.store.AddMember(ctx, core.Member{ID: creatorID, GroupID: created.ID, Role: core.RoleAdmin}); err != nil {
		return core.Group{}, fmt.Errorf("add group creator: %w", err)
	}

	slog.InfoContext(ctx, "Group created", "group_id", created.ID, "actor_id", creatorID)
	return created, nil
}

func (s *LedgerService) AddMember(ctx context.Context, actorID, groupID, userID int64, role core.Role) (core.Member, error) {
	if !role.IsValid() {
		return core.Member{}, core.ErrInvalidRole
	}
	actor, err := s.actor(ctx, groupID, actorID)
	if err != nil {
		return core.Member{}, err
	}
	if !actor.Role.CanManageMembers() {
		return core.Member{}, fmt.Errorf("add member to group %d: %w", groupID, ErrForbidden)
	}

	m, err := s.store.AddMember(ctx, core.Member{ID: userID, GroupID: groupID, Role: role})
	if err != nil {
		return core.Member{}, fmt.Errorf("add member: %w", err)
	}
	s.publish(ctx, groupID, core.Month{}, amqp.MemberAdded)
	return m, nil
}

// SetRole changes a member's role. Demoting the last admin fails with
// ErrLastAdmin.
func (s *LedgerService) SetRole(ctx context.Context, actorID, groupID, userID int64, role core.Role) error {
	if !role.IsValid() {
		return core.ErrInvalidRole
	}
	actor, err := s.actor(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !actor.Role.CanManageMembers() {
		return fmt.Errorf("change role in group %d: %w", groupID, ErrForbidden)
	}

	target, err := s.store.GetMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("change role: %w", err)
	}
	if target.Role == role {
		return nil
	}
	if target.Role == core.RoleAdmin {
		members, err := s.store.ListMembers(ctx, groupID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		admins := 0
		for _, m := range members {
			if m.Role == core.RoleAdmin {
				admins++
			}
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	if err := s.store.SetRole(ctx, groupID, userID, role); err != nil {
		return fmt.Errorf("change role: %w", err)
	}
	s.publish(ctx, groupID, core.Month{}, amqp.MemberRoleChanged)
	return nil
}

func (s *LedgerService) SetMonthlyTarget(ctx context.Context, actorID, groupID int64, target core.Money) error {
	if err := target.Validate(); err != nil {
		return err
	}
	actor, err := s.actor(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !actor.Role.CanManageGroup() {
		return fmt.Errorf("set target of group %d: %w", groupID, ErrForbidden)
	}

	if err := s.store.SetMonthlyTarget(ctx, groupID, target); err != nil {
		return fmt.Errorf("set monthly target: %w", err)
	}
	s.publish(ctx, groupID, core.Month{}, amqp.TargetChanged)
	return nil
}

// RecordContribution stores a contribution made by actorID or, for admins,
// on behalf of c.MemberID. A zero MemberID means the actor; a zero Month
// means the current month.
func (s *LedgerService) RecordContribution(ctx context.Context, actorID int64, c core.Contribution) (core.Contribution, error) {
	if c.MemberID == 0 {
		c.MemberID = actorID
	}
	if c.Month.IsZero() {
		c.Month = core.MonthOf(s.now())
	}
	c.Note = strings.TrimSpace(c.Note)
	if err := c.Validate(); err != nil {
		return core.Contribution{}, fmt.Errorf("validate contribution: %w", err)
	}
	if err := s.authorizeRecord(ctx, c.GroupID, actorID, c.MemberID); err != nil {
		return core.Contribution{}, err
	}

	created, err := s.store.AddContribution(ctx, c)
	if err != nil {
		return core.Contribution{}, fmt.Errorf("save contribution: %w", err)
	}
	log.NewStructuredLogger(log.FromContext(ctx)).
		LogRecordCreated(ctx, "Contribution", created.GroupID, created.ID, created.MemberID, created.Amount.Cents)
	s.publish(ctx, c.GroupID, created.Period(), amqp.ContributionAdded)
	return created, nil
}

func (s *LedgerService) DeleteContribution(ctx context.Context, actorID, groupID, id int64) error {
	c, err := s.store.GetContribution(ctx, groupID, id)
	if err != nil {
		return fmt.Errorf("get contribution: %w", err)
	}
	if err := s.authorizeDelete(ctx, groupID, actorID, c.MemberID); err != nil {
		return err
	}
	if err := s.store.DeleteContribution(ctx, groupID, id); err != nil {
		return fmt.Errorf("delete contribution: %w", err)
	}
	s.publish(ctx, groupID, c.Period(), amqp.ContributionDeleted)
	return nil
}

// RecordExpense stores an expense. The category must exist in the group's
// registry and is stored with the registry's spelling. A zero MemberID means
// the actor; a zero Date means today.
func (s *LedgerService) RecordExpense(ctx context.Context, actorID int64, e core.Expense) (core.Expense, error) {
	if e.MemberID == 0 {
		e.MemberID = actorID
	}
	if e.Date.IsZero() {
		now := s.now()
		e.Date = core.NewDate(now.Year(), now.Month(), now.Day())
	}
	if e.Source == "" {
		e.Source = core.SourceCollected
	}
	e.Title = strings.TrimSpace(e.Title)
	e.Category = strings.TrimSpace(e.Category)
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}
	if err := s.authorizeRecord(ctx, e.GroupID, actorID, e.MemberID); err != nil {
		return core.Expense{}, err
	}

	name, err := s.resolveCategory(ctx, e.GroupID, e.Category)
	if err != nil {
		return core.Expense{}, err
	}
	e.Category = name

	created, err := s.store.AddExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	log.NewStructuredLogger(log.FromContext(ctx)).
		LogRecordCreated(ctx, "Expense", created.GroupID, created.ID, created.MemberID, created.Amount.Cents)
	s.publish(ctx, e.GroupID, core.MonthOf(created.Date.Time), amqp.ExpenseAdded)
	return created, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, actorID, groupID, id int64) error {
	e, err := s.store.GetExpense(ctx, groupID, id)
	if err != nil {
		return fmt.Errorf("get expense: %w", err)
	}
	if err := s.authorizeDelete(ctx, groupID, actorID, e.MemberID); err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, groupID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	var month core.Month
	if !e.Date.IsZero() {
		month = core.MonthOf(e.Date.Time)
	}
	s.publish(ctx, groupID, month, amqp.ExpenseDeleted)
	return nil
}

func (s *LedgerService) AddCategory(ctx context.Context, actorID, groupID int64, name string) (core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Category{}, core.ErrEmptyCategory
	}
	actor, err := s.actor(ctx, groupID, actorID)
	if err != nil {
		return core.Category{}, err
	}
	if !actor.Role.CanManageGroup() {
		return core.Category{}, fmt.Errorf("add category to group %d: %w", groupID, ErrForbidden)
	}

	c, err := s.store.AddCategory(ctx, core.Category{GroupID: groupID, Name: name})
	if err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	s.publish(ctx, groupID, core.Month{}, amqp.CategoryAdded)
	return c, nil
}

// actor resolves the acting user's membership. Non-members are forbidden.
func (s *LedgerService) actor(ctx context.Context, groupID, actorID int64) (core.Member, error) {
	if groupID == 0 {
		return core.Member{}, core.ErrMissingGroup
	}
	m, err := s.store.GetMember(ctx, groupID, actorID)
	if errors.Is(err, store.ErrNotFound) {
		return core.Member{}, fmt.Errorf("user %d is not a member of group %d: %w", actorID, groupID, ErrForbidden)
	}
	if err != nil {
		return core.Member{}, fmt.Errorf("resolve actor: %w", err)
	}
	return m, nil
}

func (s *LedgerService) authorizeRecord(ctx context.Context, groupID, actorID, memberID int64) error {
	actor, err := s.actor(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !actor.Role.CanRecordFor(actorID, memberID) {
		return fmt.Errorf("record for member %d: %w", memberID, ErrForbidden)
	}
	if memberID != actorID {
		if _, err := s.store.GetMember(ctx, groupID, memberID); err != nil {
			return fmt.Errorf("member %d: %w", memberID, core.ErrUnknownMember)
		}
	}
	return nil
}

func (s *LedgerService) authorizeDelete(ctx context.Context, groupID, actorID, ownerID int64) error {
	actor, err := s.actor(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !actor.Role.CanDeleteRecord(actorID, ownerID) {
		return fmt.Errorf("delete record of member %d: %w", ownerID, ErrForbidden)
	}
	return nil
}

func (s *LedgerService) resolveCategory(ctx context.Context, groupID int64, name string) (string, error) {
	cats, err := s.store.ListCategories(ctx, groupID)
	if err != nil {
		return "", fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, name) {
			return c.Name, nil
		}
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnknownCategory)
}

// publish sends a change event. Failures are logged; the write already
// succeeded locally.
func (s *LedgerService) publish(ctx context.Context, groupID int64, month core.Month, kind amqp.ChangeKind) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping ledger event", "group_id", groupID, "event_kind", kind)
		return
	}
	msg := amqp.NewLedgerChangedMessage(groupID, month, kind)
	if err := s.publisher.PublishLedgerChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"group_id", groupID,
			"event_id", msg.ID,
			"event_kind", kind,
			"error", err)
	}
}
