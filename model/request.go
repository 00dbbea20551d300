package model

import "time"

type RequestStatus string

const (
	RequestRequested RequestStatus = "requested"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestRequested, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// AccessRequest asks for one or more grants on behalf of TargetUser.
// Note doubles as the rejection reason once the request is rejected.
// ManagerDecision stays nil until the target's manager approves or rejects;
// a manager rejection blocks provisioning of items owners already approved.
type AccessRequest struct {
	ID              string              `gorm:"primaryKey;size:36" json:"id"`
	TargetUserID    string              `gorm:"size:36;not null;index" json:"targetUserId"`
	RequesterID     string              `gorm:"size:36;not null;index" json:"requesterId"`
	Status          RequestStatus       `gorm:"size:16;not null;default:requested;index" json:"status"`
	ManagerDecision *RequestStatus      `gorm:"size:16" json:"managerDecision,omitempty"`
	Note            *string             `gorm:"size:2000" json:"note"`
	TargetUser      *User               `gorm:"foreignKey:TargetUserID" json:"targetUser,omitempty"`
	Requester       *User               `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Items           []AccessRequestItem `gorm:"foreignKey:AccessRequestID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func (r *AccessRequest) RejectedByManager() bool {
	return r != nil && r.ManagerDecision != nil && *r.ManagerDecision == RequestRejected
}

// AccessRequestItem tracks one (instance, tier) ask; items are decided independently.
type AccessRequestItem struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	AccessRequestID  string          `gorm:"size:36;not null;index" json:"accessRequestId"`
	SystemInstanceID string          `gorm:"size:36;not null;index" json:"systemInstanceId"`
	AccessTierID     string          `gorm:"size:36;not null;index" json:"accessTierId"`
	Status           RequestStatus   `gorm:"size:16;not null;default:requested;index" json:"status"`
	RejectionReason  *string         `gorm:"size:2000" json:"rejectionReason,omitempty"`
	AccessGrantID    *string         `gorm:"size:36;index" json:"accessGrantId"`
	AccessRequest    *AccessRequest  `gorm:"foreignKey:AccessRequestID" json:"accessRequest,omitempty"`
	SystemInstance   *SystemInstance `gorm:"foreignKey:SystemInstanceID" json:"systemInstance,omitempty"`
	AccessTier       *AccessTier     `gorm:"foreignKey:AccessTierID" json:"accessTier,omitempty"`
	AccessGrant      *AccessGrant    `gorm:"foreignKey:AccessGrantID" json:"accessGrant,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (i *AccessRequestItem) SystemID() string {
	if i.SystemInstance == nil {
		return ""
	}
	return i.SystemInstance.SystemID
}

type RequestItemInput struct {
	SystemInstanceID string `json:"systemInstanceId" binding:"required"`
	AccessTierID     string `json:"accessTierId" binding:"required"`
}

type CreateRequestInput struct {
	TargetUserID string             `json:"targetUserId" binding:"required"`
	Items        []RequestItemInput `json:"items" binding:"required,dive"`
	Note         *string            `json:"note"`
}

type RejectInput struct {
	Reason *string `json:"reason"`
}

type ItemIDsInput struct {
	ItemIDs []string `json:"itemIds" binding:"required,min=1"`
}

type CopyGrantsInput struct {
	SourceUserID     string   `json:"sourceUserId" binding:"required"`
	TargetUserID     string   `json:"targetUserId" binding:"required"`
	SystemIDs        []string `json:"systemIds"`
	ExcludeSystemIDs []string `json:"excludeSystemIds"`
}

type RequestFilter struct {
	Status       RequestStatus `form:"status"`
	TargetUserID string        `form:"targetUserId"`
	RequesterID  string        `form:"requesterId"`
	Page         int           `form:"page"`
	Limit        int           `form:"limit"`
}

func (f *RequestFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
}

type CopyOutcome string

const (
	CopyCreated CopyOutcome = "created"
	CopySkipped CopyOutcome = "skipped"
	CopyFailed  CopyOutcome = "failed"
)

type CopyGrantResult struct {
	GrantID      string      `json:"grantId"`
	SystemName   string      `json:"systemName"`
	InstanceName string      `json:"instanceName"`
	TierName     string      `json:"tierName"`
	Outcome      CopyOutcome `json:"outcome"`
	RequestID    *string     `json:"requestId,omitempty"`
	Reason       string      `json:"reason,omitempty"`
}

type CopyGrantsReport struct {
	Created int               `json:"created"`
	Skipped int               `json:"skipped"`
	Failed  int               `json:"failed"`
	Results []CopyGrantResult `json:"results"`
}
