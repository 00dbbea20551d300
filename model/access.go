// model/access.go
package model

import "time"

type GrantStatus string

const (
	GrantActive   GrantStatus = "active"
	GrantToRemove GrantStatus = "to_remove"
	GrantRemoved  GrantStatus = "removed"
)

func (s GrantStatus) Valid() bool {
	switch s {
	case GrantActive, GrantToRemove, GrantRemoved:
		return true
	}
	return false
}

// SystemOwner authorises a user to provision and remove grants for a system.
type SystemOwner struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_owner_user_system" json:"userId"`
	SystemID  string    `gorm:"size:36;not null;uniqueIndex:idx_owner_user_system;index" json:"systemId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	System    *System   `gorm:"foreignKey:SystemID" json:"system,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AccessGrant is a ledger row. At most one active row may exist per
// (user, instance, tier); the partial unique index idx_active_grant enforces it.
type AccessGrant struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	UserID           string          `gorm:"size:36;not null;index;uniqueIndex:idx_active_grant,where:status = 'active'" json:"userId"`
	SystemInstanceID string          `gorm:"size:36;not null;index;uniqueIndex:idx_active_grant,where:status = 'active'" json:"systemInstanceId"`
	AccessTierID     string          `gorm:"size:36;not null;index;uniqueIndex:idx_active_grant,where:status = 'active'" json:"accessTierId"`
	Status           GrantStatus     `gorm:"size:16;not null;default:active;index" json:"status"`
	GrantedByID      *string         `gorm:"size:36" json:"grantedById"`
	GrantedAt        time.Time       `gorm:"not null" json:"grantedAt"`
	RemovedAt        *time.Time      `json:"removedAt"`
	User             *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SystemInstance   *SystemInstance `gorm:"foreignKey:SystemInstanceID" json:"systemInstance,omitempty"`
	AccessTier       *AccessTier     `gorm:"foreignKey:AccessTierID" json:"accessTier,omitempty"`
	GrantedBy        *User           `gorm:"foreignKey:GrantedByID" json:"grantedBy,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// SystemID is only available when SystemInstance was loaded.
func (g *AccessGrant) SystemID() string {
	if g.SystemInstance == nil {
		return ""
	}
	return g.SystemInstance.SystemID
}

type CreateGrantInput struct {
	UserID           string      `json:"userId" binding:"required"`
	SystemInstanceID string      `json:"systemInstanceId" binding:"required"`
	AccessTierID     string      `json:"accessTierId" binding:"required"`
	GrantedByID      *string     `json:"grantedById"`
	GrantedAt        *time.Time  `json:"grantedAt"`
	Status           GrantStatus `json:"status"`
}

type UpdateGrantStatusInput struct {
	Status GrantStatus `json:"status" binding:"required"`
}

type GrantIDsInput struct {
	GrantIDs []string `json:"grantIds" binding:"required,min=1"`
}

type OwnerInput struct {
	UserID string `json:"userId" binding:"required"`
}

// GrantFilter drives FindAll. Limit is capped at MaxPageLimit.
type GrantFilter struct {
	UserID           string      `form:"userId"`
	SystemID         string      `form:"systemId"`
	SystemInstanceID string      `form:"systemInstanceId"`
	AccessTierID     string      `form:"accessTierId"`
	Status           GrantStatus `form:"status"`
	UserSearch       string      `form:"userSearch"`
	Page             int         `form:"page"`
	Limit            int         `form:"limit"`
	SortBy           string      `form:"sortBy"`
	SortOrder        string      `form:"sortOrder"`
}

const (
	SortByUserName   = "userName"
	SortBySystemName = "systemName"
	SortByGrantedAt  = "grantedAt"

	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize fills defaults and clamps paging.
func (f *GrantFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	switch f.SortBy {
	case SortByUserName, SortBySystemName, SortByGrantedAt:
	default:
		f.SortBy = SortByGrantedAt
	}
	if f.SortOrder != "asc" && f.SortOrder != "ASC" {
		f.SortOrder = "desc"
	} else {
		f.SortOrder = "asc"
	}
}

type PageResult[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
