// Package audit is a best-effort, append-only log of ACL grant/revoke and
// access-request approve/deny decisions, written to a SQL table
// (audit_records) independent of the core NM/SS/client protocol's state.
// A slow or unreachable audit database degrades observability only: no
// audit write ever gates or fails the RPC that produced it.
package audit

import "time"

// Action is the kind of decision an audit Record describes.
type Action string

const (
	ActionGrant   Action = "grant"
	ActionRevoke  Action = "revoke"
	ActionApprove Action = "approve"
	ActionDeny    Action = "deny"
)

// Record is one append-only audit_records row. Actor is the owner who made
// the decision; Target is the user it was made about (the grantee/revokee
// or the original requester of an access request).
type Record struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	Actor     string    `gorm:"size:255;index" json:"actor"`
	Action    string    `gorm:"size:32;index" json:"action"`
	File      string    `gorm:"size:255;index" json:"file"`
	Target    string    `gorm:"size:255" json:"target"`
	Access    string    `gorm:"size:32" json:"access"`
	Outcome   string    `gorm:"size:32" json:"outcome"`
}

// TableName returns the table name for Record.
func (Record) TableName() string {
	return "audit_records"
}

// NewRecord returns a Record stamped with the current time.
func NewRecord(actor string, action Action, file, target, access, outcome string) *Record {
	return &Record{
		Timestamp: time.Now(),
		Actor:     actor,
		Action:    string(action),
		File:      file,
		Target:    target,
		Access:    access,
		Outcome:   outcome,
	}
}
