// service/grant_service.go
package service

//go:generate mockgen -source=grant_service.go -destination=../test/service_mock/grant_service_mock.go -package=mock_service IGrantService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ucook/accessflow/audit"
	"github.com/ucook/accessflow/dao"
	af_errors "github.com/ucook/accessflow/errors"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/util"
)

// IGrantService is the grant ledger.
type IGrantService interface {
	CreateGrant(ctx context.Context, input model.CreateGrantInput, actorID string) (*model.AccessGrant, error)
	GetGrant(ctx context.Context, grantID string) (*model.AccessGrant, error)
	FindAll(ctx context.Context, filter model.GrantFilter) (*model.PageResult[model.AccessGrant], error)
	UpdateStatus(ctx context.Context, grantID string, status model.GrantStatus, actorID string) (*model.AccessGrant, error)
	MarkToRemove(ctx context.Context, grantID, actorID string) (*model.AccessGrant, error)
	MarkRemoved(ctx context.Context, grantID, actorID string) (*model.AccessGrant, error)
	CancelRemoval(ctx context.Context, grantID, actorID string) (*model.AccessGrant, error)
	FindPendingRemoval(ctx context.Context, ownerID string) ([]model.AccessGrant, error)
	BulkMarkToRemove(ctx context.Context, grantIDs []string, actorID string) *model.BulkOperationResult
	BulkMarkRemoved(ctx context.Context, grantIDs []string, actorID string) *model.BulkOperationResult
	BulkCreate(ctx context.Context, rows []model.BulkGrantInput, actorID string) *model.BulkGrantReport
	ImportCSV(ctx context.Context, r io.Reader, actorID string) (*model.BulkGrantReport, error)
	CSVTemplate() ([]byte, error)
}

// CSVLimits caps an import; anything above either limit is rejected whole.
type CSVLimits struct {
	MaxBytes int64
	MaxRows  int
}

type GrantService struct {
	grantDAO        *dao.GrantDAO
	userDAO         *dao.UserDAO
	resourceDAO     *dao.ResourceDAO
	resourceService IResourceService
	ownerService    IOwnerService
	userService     IUserService
	validationUtil  *util.ValidationUtil
	notifier        util.Notifier
	auditService    audit.Service
	eventBus        *util.EventBus
	baseURL         string
	csvLimits       CSVLimits
}

var _ IGrantService = &GrantService{}

type GrantServiceDeps struct {
	GrantDAO        *dao.GrantDAO
	UserDAO         *dao.UserDAO
	ResourceDAO     *dao.ResourceDAO
	ResourceService IResourceService
	OwnerService    IOwnerService
	UserService     IUserService
	ValidationUtil  *util.ValidationUtil
	Notifier        util.Notifier
	AuditService    audit.Service
	EventBus        *util.EventBus
	BaseURL         string
	CSVLimits       CSVLimits
}

func NewGrantService(deps GrantServiceDeps) *GrantService {
	return &GrantService{
		grantDAO:        deps.GrantDAO,
		userDAO:         deps.UserDAO,
		resourceDAO:     deps.ResourceDAO,
		resourceService: deps.ResourceService,
		ownerService:    deps.OwnerService,
		userService:     deps.UserService,
		validationUtil:  deps.ValidationUtil,
		notifier:        deps.Notifier,
		auditService:    deps.AuditService,
		eventBus:        deps.EventBus,
		baseURL:         deps.BaseURL,
		csvLimits:       deps.CSVLimits,
	}
}

func (s *GrantService) grantLink(grantID string) string {
	if s.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/grants/%s", s.baseURL, grantID)
}

// createGrant is the single write path for new grants. It validates every
// reference and the same-system rule, and fails with ErrActiveGrantExists when
// an active grant already holds the triple, whether found by the pre-check or
// by the partial unique index.
func (s *GrantService) createGrant(ctx context.Context, input model.CreateGrantInput, actorID string) (*model.AccessGrant, error) {
	status := input.Status
	if status == "" {
		status = model.GrantActive
	}
	if err := s.validationUtil.ValidateGrantStatus(status); err != nil {
		return nil, err
	}

	if _, err := s.userDAO.GetUser(ctx, input.UserID); err != nil {
		return nil, err
	}
	if _, _, err := s.resourceService.ResolvePair(ctx, input.SystemInstanceID, input.AccessTierID); err != nil {
		return nil, err
	}
	if input.GrantedByID != nil {
		if _, err := s.userDAO.GetUser(ctx, *input.GrantedByID); err != nil {
			if af_errors.IsNotFound(err) {
				return nil, af_errors.NotFound("Granting user not found")
			}
			return nil, err
		}
	}

	if status == model.GrantActive {
		existing, err := s.grantDAO.FindActiveGrant(ctx, input.UserID, input.SystemInstanceID, input.AccessTierID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, af_errors.ErrActiveGrantExists
		}
	}

	now := time.Now().UTC()
	grant := &model.AccessGrant{
		UserID:           input.UserID,
		SystemInstanceID: input.SystemInstanceID,
		AccessTierID:     input.AccessTierID,
		Status:           status,
		GrantedByID:      input.GrantedByID,
		GrantedAt:        now,
	}
	if input.GrantedAt != nil {
		grant.GrantedAt = input.GrantedAt.UTC()
	}
	if status == model.GrantRemoved {
		grant.RemovedAt = &now
	}

	if err := s.grantDAO.CreateGrant(ctx, grant); err != nil {
		return nil, err
	}
	created, err := s.grantDAO.GetGrant(ctx, grant.ID)
	if err != nil {
		return nil, err
	}

	s.auditService.LogAccess(ctx, audit.NewEntry(audit.ActionGrantCreated, actorID, audit.ResourceGrant, created.ID,
		map[string]interface{}{
			"systemInstanceId": created.SystemInstanceID,
			"accessTierId":     created.AccessTierID,
			"status":           created.Status,
		}).WithTarget(created.UserID))
	s.eventBus.Publish(ctx, util.EventGrantCreated, *created)
	return created, nil
}

func (s *GrantService) CreateGrant(ctx context.Context, input model.CreateGrantInput, actorID string) (*model.AccessGrant, error) {
	if input.GrantedByID == nil && actorID != "" {
		input.GrantedByID = &actorID
	}
	grant, err := s.createGrant(ctx, input, actorID)
	if err != nil {
		logger.Warn("Grant creation failed",
			zap.String("userID", input.UserID),
			zap.Error(err))
		return nil, err
	}
	if grant.Status == model.GrantActive {
		s.notifier.NotifyRequester(ctx, util.NotificationContext{
			Grant:  grant,
			Action: util.ActionActivate,
			Link:   s.grantLink(grant.ID),
		})
	}
	return grant, nil
}

func (s *GrantService) GetGrant(ctx context.Context, grantID string) (*model.AccessGrant, error) {
	return s.grantDAO.GetGrant(ctx, grantID)
}

func (s *GrantService) FindAll(ctx context.Context, filter model.GrantFilter) (*model.PageResult[model.AccessGrant], error) {
	if filter.Status != "" {
		if err := s.validationUtil.ValidateGrantStatus(filter.Status); err != nil {
			return nil, err
		}
	}
	filter.Normalize()
	grants, total, err := s.grantDAO.FindGrants(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.PageResult[model.AccessGrant]{Data: grants, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// UpdateStatus is the generic status endpoint. Callers gate who may use it;
// the transition table still applies.
func (s *GrantService) UpdateStatus(ctx context.Context, grantID string, status model.GrantStatus, actorID string) (*model.AccessGrant, error) {
	if err := s.validationUtil.ValidateGrantStatus(status); err != nil {
		return nil, err
	}
	grant, err := s.grantDAO.GetGrant(ctx, grantID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, grant, status, actorID, nil)
}

func (s *GrantService) MarkToRemove(ctx context.Context, grantID, actorID string) (*model.AccessGrant, error) {
	grant, err := s.ownedGrant(ctx, grantID, actorID)
	if err != nil {
		return nil, err
	}
	if grant.Status != model.GrantActive {
		return nil, af_errors.RequiredStatus("Grant", string(model.GrantActive))
	}
	return s.transition(ctx, grant, model.GrantToRemove, actorID, nil)
}

func (s *GrantService) MarkRemoved(ctx context.Context, grantID, actorID string) (*model.AccessGrant, error) {
	grant, err := s.ownedGrant(ctx, grantID, actorID)
	if err != nil {
		return nil, err
	}
	// owners may skip the to_remove step and revoke an active grant directly
	if grant.Status != model.GrantActive && grant.Status != model.GrantToRemove {
		return nil, af_errors.BadRequest("Grant must be in '%s' or '%s' status", model.GrantActive, model.GrantToRemove)
	}
	return s.transition(ctx, grant, model.GrantRemoved, actorID, nil)
}

func (s *GrantService) CancelRemoval(ctx context.Context, grantID, actorID string) (*model.AccessGrant, error) {
	grant, err := s.ownedGrant(ctx, grantID, actorID)
	if err != nil {
		return nil, err
	}
	if grant.Status != model.GrantToRemove {
		return nil, af_errors.RequiredStatus("Grant", string(model.GrantToRemove))
	}
	return s.transition(ctx, grant, model.GrantActive, actorID, nil)
}

// ownedGrant loads grantID and requires actorID to own its system.
func (s *GrantService) ownedGrant(ctx context.Context, grantID, actorID string) (*model.AccessGrant, error) {
	grant, err := s.grantDAO.GetGrant(ctx, grantID)
	if err != nil {
		return nil, err
	}
	if err := s.ownerService.RequireOwner(ctx, actorID, grant.SystemID()); err != nil {
		return nil, err
	}
	return grant, nil
}

var grantTransitionEvents = map[model.GrantStatus]struct {
	event  string
	action util.NotificationAction
}{
	model.GrantActive:   {util.EventGrantReactivated, util.ActionActivate},
	model.GrantToRemove: {util.EventGrantToRemove, util.ActionToRemove},
	model.GrantRemoved:  {util.EventGrantRemoved, util.ActionRemove},
}

// transition applies one legal status change. removedAt is set exactly when
// the grant becomes removed.
func (s *GrantService) transition(ctx context.Context, grant *model.AccessGrant, to model.GrantStatus, actorID string, reason *string) (*model.AccessGrant, error) {
	from := grant.Status
	if !model.CanTransitionGrant(from, to) {
		return nil, af_errors.InvalidTransition("Grant", string(from), string(to))
	}

	var removedAt *time.Time
	if to == model.GrantRemoved {
		now := time.Now().UTC()
		removedAt = &now
	}
	if err := s.grantDAO.UpdateStatus(ctx, grant.ID, from, to, removedAt); err != nil {
		return nil, err
	}
	updated, err := s.grantDAO.GetGrant(ctx, grant.ID)
	if err != nil {
		return nil, err
	}

	s.auditService.LogAccess(ctx, audit.NewEntry(audit.ActionGrantStatusChanged, actorID, audit.ResourceGrant, updated.ID,
		map[string]interface{}{"from": from, "to": to}).WithTarget(updated.UserID).WithReason(reason))

	meta := grantTransitionEvents[to]
	s.eventBus.Publish(ctx, meta.event, *updated)
	nc := util.NotificationContext{Grant: updated, Action: meta.action, Link: s.grantLink(updated.ID), Reason: reason}
	if to == model.GrantToRemove {
		s.notifier.NotifySystemOwners(ctx, nc)
	} else {
		s.notifier.NotifyRequester(ctx, nc)
	}

	logger.Info("Grant status changed",
		zap.String("grantID", updated.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actorID", actorID))
	return updated, nil
}

func (s *GrantService) FindPendingRemoval(ctx context.Context, ownerID string) ([]model.AccessGrant, error) {
	systemIDs, err := s.ownerService.OwnedSystemIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.grantDAO.FindByStatusInSystems(ctx, model.GrantToRemove, systemIDs)
}

func (s *GrantService) BulkMarkToRemove(ctx context.Context, grantIDs []string, actorID string) *model.BulkOperationResult {
	return runBulk(grantIDs, func(id string) error {
		_, err := s.MarkToRemove(ctx, id, actorID)
		return err
	})
}

func (s *GrantService) BulkMarkRemoved(ctx context.Context, grantIDs []string, actorID string) *model.BulkOperationResult {
	return runBulk(grantIDs, func(id string) error {
		_, err := s.MarkRemoved(ctx, id, actorID)
		return err
	})
}

// runBulk applies op to each id in order. One failure never stops the rest.
func runBulk(ids []string, op func(id string) error) *model.BulkOperationResult {
	result := model.NewBulkOperationResult()
	for _, id := range ids {
		if err := op(id); err != nil {
			result.Failed = append(result.Failed, model.BulkFailure{ID: id, Reason: af_errors.Message(err)})
			continue
		}
		result.Successful = append(result.Successful, id)
	}
	return result
}

// BulkCreate creates each row independently. A duplicate active grant is
// reported as skipped, any other error as failed.
func (s *GrantService) BulkCreate(ctx context.Context, rows []model.BulkGrantInput, actorID string) *model.BulkGrantReport {
	report := &model.BulkGrantReport{Results: []model.BulkGrantRowResult{}}
	for i, row := range rows {
		report.Add(s.createRow(ctx, i+1, model.CreateGrantInput{
			UserID:           row.UserID,
			SystemInstanceID: row.SystemInstanceID,
			AccessTierID:     row.AccessTierID,
			Status:           row.Status,
			GrantedAt:        row.GrantedAt,
			GrantedByID:      &actorID,
		}, actorID))
	}
	logger.Info("Bulk grant creation finished",
		zap.Int("total", report.Total),
		zap.Int("success", report.Success),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report
}

func (s *GrantService) createRow(ctx context.Context, row int, input model.CreateGrantInput, actorID string) model.BulkGrantRowResult {
	grant, err := s.createGrant(ctx, input, actorID)
	switch {
	case err == nil:
		return model.BulkGrantRowResult{Row: row, Success: true, Outcome: model.OutcomeCreated, Grant: grant}
	case errors.Is(err, af_errors.ErrActiveGrantExists):
		return model.BulkGrantRowResult{Row: row, Outcome: model.OutcomeSkipped, Error: af_errors.Message(err)}
	default:
		return model.BulkGrantRowResult{Row: row, Outcome: model.OutcomeFailed, Error: af_errors.Message(err)}
	}
}
