package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}

func (r *UserRole) BeforeCreate(tx *gorm.DB) error {
	newID(&r.ID)
	return nil
}

func (s *System) BeforeCreate(tx *gorm.DB) error {
	newID(&s.ID)
	return nil
}

func (i *SystemInstance) BeforeCreate(tx *gorm.DB) error {
	newID(&i.ID)
	return nil
}

func (t *AccessTier) BeforeCreate(tx *gorm.DB) error {
	newID(&t.ID)
	return nil
}

func (o *SystemOwner) BeforeCreate(tx *gorm.DB) error {
	newID(&o.ID)
	return nil
}

func (g *AccessGrant) BeforeCreate(tx *gorm.DB) error {
	newID(&g.ID)
	return nil
}

func (r *AccessRequest) BeforeCreate(tx *gorm.DB) error {
	newID(&r.ID)
	return nil
}

func (i *AccessRequestItem) BeforeCreate(tx *gorm.DB) error {
	newID(&i.ID)
	return nil
}
