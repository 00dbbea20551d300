package model

import "time"

// System is the top of the catalog: systems own instances and tiers.
type System struct {
	ID          string           `gorm:"primaryKey;size:36" json:"id"`
	Name        string           `gorm:"uniqueIndex;size:200;not null" json:"name"`
	Description string           `gorm:"size:1000" json:"description"`
	Instances   []SystemInstance `gorm:"foreignKey:SystemID" json:"instances,omitempty"`
	AccessTiers []AccessTier     `gorm:"foreignKey:SystemID" json:"accessTiers,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// SystemInstance is a deployable target of a system, e.g. "UCOOK Production".
type SystemInstance struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	SystemID    string    `gorm:"size:36;not null;uniqueIndex:idx_instance_system_name" json:"systemId"`
	Name        string    `gorm:"size:200;not null;uniqueIndex:idx_instance_system_name" json:"name"`
	Region      string    `gorm:"size:100" json:"region"`
	Environment string    `gorm:"size:100" json:"environment"`
	System      *System   `gorm:"foreignKey:SystemID" json:"system,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AccessTier is a permission level scoped to a system, valid on all its instances.
type AccessTier struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	SystemID    string    `gorm:"size:36;not null;uniqueIndex:idx_tier_system_name" json:"systemId"`
	Name        string    `gorm:"size:200;not null;uniqueIndex:idx_tier_system_name" json:"name"`
	Description string    `gorm:"size:1000" json:"description"`
	System      *System   `gorm:"foreignKey:SystemID" json:"system,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SystemInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type InstanceInput struct {
	Name        string `json:"name" binding:"required"`
	Region      string `json:"region"`
	Environment string `json:"environment"`
}

type TierInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}
