// audit/model.go
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionGrantCreated       = "grant.created"
	ActionGrantStatusChanged = "grant.status_changed"
	ActionRequestCreated     = "request.created"
	ActionRequestApproved    = "request.approved"
	ActionRequestRejected    = "request.rejected"
	ActionItemApproved       = "item.approved"
	ActionItemRejected       = "item.rejected"
	ActionItemProvisioned    = "item.provisioned"
	ActionOwnerAdded         = "owner.added"
	ActionOwnerRemoved       = "owner.removed"
	ActionManagerAssigned    = "user.manager_assigned"
	ActionCSVImported        = "grant.csv_imported"
)

const (
	ResourceGrant   = "access_grant"
	ResourceRequest = "access_request"
	ResourceItem    = "access_request_item"
	ResourceOwner   = "system_owner"
	ResourceUser    = "user"
)

// AuditLog is append-only. It never gates workflow behaviour.
type AuditLog struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Action       string         `gorm:"size:64;not null;index" json:"action"`
	ActorID      string         `gorm:"size:36;index" json:"actorId"`
	TargetUserID *string        `gorm:"size:36;index" json:"targetUserId,omitempty"`
	ResourceType string         `gorm:"size:64;not null;index" json:"resourceType"`
	ResourceID   string         `gorm:"size:36;index" json:"resourceId"`
	Details      datatypes.JSON `json:"details,omitempty"`
	Reason       *string        `gorm:"size:2000" json:"reason,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"createdAt"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// NewEntry builds a log entry; details that fail to marshal are dropped.
func NewEntry(action, actorID, resourceType, resourceID string, details map[string]interface{}) AuditLog {
	entry := AuditLog{
		Action:       action,
		ActorID:      actorID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
	if len(details) > 0 {
		if data, err := json.Marshal(details); err == nil {
			entry.Details = datatypes.JSON(data)
		}
	}
	return entry
}

func (l AuditLog) WithTarget(userID string) AuditLog {
	if userID != "" {
		l.TargetUserID = &userID
	}
	return l
}

func (l AuditLog) WithReason(reason *string) AuditLog {
	if reason != nil && *reason != "" {
		l.Reason = reason
	}
	return l
}

// Query filters QueryLogs. Zero values match everything.
type Query struct {
	ActorID      string     `form:"actorId"`
	TargetUserID string     `form:"targetUserId"`
	ResourceType string     `form:"resourceType"`
	ResourceID   string     `form:"resourceId"`
	Action       string     `form:"action"`
	From         *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To           *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page         int        `form:"page"`
	Limit        int        `form:"limit"`
}

func (q *Query) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
}

type Page struct {
	Data  []AuditLog `json:"data"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}
