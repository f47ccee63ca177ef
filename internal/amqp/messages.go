package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kitty/internal/core"
)

// ChangeKind names the ledger mutation behind a message.
type ChangeKind string

const (
	ContributionAdded   ChangeKind = "contribution.added"
	ContributionDeleted ChangeKind = "contribution.deleted"
	ExpenseAdded        ChangeKind = "expense.added"
	ExpenseDeleted      ChangeKind = "expense.deleted"
	MemberAdded         ChangeKind = "member.added"
	MemberRoleChanged   ChangeKind = "member.role_changed"
	TargetChanged       ChangeKind = "group.target_changed"
	CategoryAdded       ChangeKind = "category.added"
)

// LedgerChangedMessage tells consumers that the ledger of a group changed.
// It carries no record data; consumers re-read the store. An empty Month
// means the change affects every month of the group.
type LedgerChangedMessage struct {
	ID        string     `json:"id"`
	GroupID   int64      `json:"group_id"`
	Month     core.Month `json:"month"`
	Kind      ChangeKind `json:"kind"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewLedgerChangedMessage creates a message with a fresh id.
func NewLedgerChangedMessage(groupID int64, month core.Month, kind ChangeKind) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Month:     month,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
	}
}

// GroupWide reports whether the change affects every month of the group.
func (m *LedgerChangedMessage) GroupWide() bool {
	return m.Month.IsZero()
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes and checks a message body.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return nil, fmt.Errorf("message id: %w", err)
	}
	if msg.GroupID <= 0 {
		return nil, fmt.Errorf("message for group %d: %w", msg.GroupID, core.ErrMissingGroup)
	}
	return &msg, nil
}
