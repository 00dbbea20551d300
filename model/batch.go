package model

import "time"

// BulkFailure is one failed id of a best-effort batch.
type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type BulkOperationResult struct {
	Successful []string      `json:"successful"`
	Failed     []BulkFailure `json:"failed"`
}

func NewBulkOperationResult() *BulkOperationResult {
	return &BulkOperationResult{Successful: []string{}, Failed: []BulkFailure{}}
}

// GrantImportRow is one CSV line after header normalisation.
type GrantImportRow struct {
	Line         int    `json:"row"`
	UserEmail    string `json:"userEmail"`
	SystemName   string `json:"systemName"`
	InstanceName string `json:"instanceName"`
	TierName     string `json:"tierName"`
	Status       string `json:"status"`
	GrantedAt    string `json:"grantedAt"`
}

// BulkGrantInput is one resolved row of a bulk grant creation.
type BulkGrantInput struct {
	UserID           string      `json:"userId" binding:"required"`
	SystemInstanceID string      `json:"systemInstanceId" binding:"required"`
	AccessTierID     string      `json:"accessTierId" binding:"required"`
	Status           GrantStatus `json:"status"`
	GrantedAt        *time.Time  `json:"grantedAt"`
}

type BulkGrantsInput struct {
	Grants []BulkGrantInput `json:"grants" binding:"required,min=1,dive"`
}

type BulkOutcome string

const (
	OutcomeCreated BulkOutcome = "created"
	OutcomeSkipped BulkOutcome = "skipped"
	OutcomeFailed  BulkOutcome = "failed"
)

type BulkGrantRowResult struct {
	Row     int          `json:"row"`
	Success bool         `json:"success"`
	Outcome BulkOutcome  `json:"outcome"`
	Error   string       `json:"error,omitempty"`
	Grant   *AccessGrant `json:"grant,omitempty"`
}

type BulkGrantReport struct {
	Total   int                  `json:"total"`
	Success int                  `json:"success"`
	Failed  int                  `json:"failed"`
	Skipped int                  `json:"skipped"`
	Results []BulkGrantRowResult `json:"results"`
}

func (r *BulkGrantReport) Add(result BulkGrantRowResult) {
	r.Total++
	switch result.Outcome {
	case OutcomeCreated:
		r.Success++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
	r.Results = append(r.Results, result)
}
