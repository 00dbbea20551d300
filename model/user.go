package model

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "admin"
)

// User is soft-deleted so historical grants and requests keep their references.
type User struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	ManagerID *string        `gorm:"size:36;index" json:"managerId"`
	SlackID   string         `gorm:"size:64" json:"slackId,omitempty"`
	Manager   *User          `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Roles     []UserRole     `gorm:"foreignKey:UserID" json:"roles,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserRole is an explicit role claim keyed by user id.
type UserRole struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_user_role" json:"userId"`
	Role      Role      `gorm:"size:32;not null;uniqueIndex:idx_user_role" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// IsManagedBy reports whether managerID is the user's direct manager.
func (u *User) IsManagedBy(managerID string) bool {
	return u.ManagerID != nil && *u.ManagerID == managerID
}

type UserSearchCriteria struct {
	Search    string `form:"search"`
	ManagerID string `form:"managerId"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

type CreateUserInput struct {
	Email     string  `json:"email" binding:"required,email"`
	Name      string  `json:"name" binding:"required"`
	ManagerID *string `json:"managerId"`
	SlackID   string  `json:"slackId"`
}

type UpdateUserInput struct {
	Name    *string `json:"name"`
	SlackID *string `json:"slackId"`
}

type AssignManagerInput struct {
	ManagerID *string `json:"managerId"`
}

// Profile is the authenticated user's view of themselves.
type Profile struct {
	User         *User    `json:"user"`
	Roles        []Role   `json:"roles"`
	OwnedSystems []System `json:"ownedSystems"`
	IsManager    bool     `json:"isManager"`
}
