// service/request_service.go
package service

//go:generate mockgen -source=request_service.go -destination=../test/service_mock/request_service_mock.go -package=mock_service IRequestService

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ucook/accessflow/audit"
	"github.com/ucook/accessflow/dao"
	af_errors "github.com/ucook/accessflow/errors"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/util"
)

// IRequestService drives requests from submission to provisioned grants.
type IRequestService interface {
	CreateRequest(ctx context.Context, input model.CreateRequestInput, requesterID string) (*model.AccessRequest, error)
	GetRequest(ctx context.Context, requestID string) (*model.AccessRequest, error)
	FindAll(ctx context.Context, filter model.RequestFilter) (*model.PageResult[model.AccessRequest], error)
	FindMine(ctx context.Context, requesterID string, filter model.RequestFilter) (*model.PageResult[model.AccessRequest], error)
	ApproveItem(ctx context.Context, itemID, actorID string) (*model.AccessRequestItem, error)
	RejectItem(ctx context.Context, itemID, actorID string, reason *string) (*model.AccessRequestItem, error)
	ProvisionItem(ctx context.Context, itemID, actorID string) (*model.AccessRequestItem, error)
	ApproveRequest(ctx context.Context, requestID, actorID string) (*model.AccessRequest, error)
	RejectRequest(ctx context.Context, requestID, actorID string, reason *string) (*model.AccessRequest, error)
	FindPendingForManager(ctx context.Context, managerID string) ([]model.AccessRequest, error)
	FindPendingProvisioning(ctx context.Context, ownerID string) ([]model.AccessRequestItem, error)
	BulkProvision(ctx context.Context, itemIDs []string, actorID string) *model.BulkOperationResult
	CopyGrantsFromUser(ctx context.Context, input model.CopyGrantsInput, requesterID string) (*model.CopyGrantsReport, error)
}

type RequestService struct {
	requestDAO      *dao.RequestDAO
	userDAO         *dao.UserDAO
	grantDAO        *dao.GrantDAO
	resourceService IResourceService
	ownerService    IOwnerService
	grantService    *GrantService
	validationUtil  *util.ValidationUtil
	notifier        util.Notifier
	auditService    audit.Service
	eventBus        *util.EventBus
	baseURL         string
}

var _ IRequestService = &RequestService{}

type RequestServiceDeps struct {
	RequestDAO      *dao.RequestDAO
	UserDAO         *dao.UserDAO
	GrantDAO        *dao.GrantDAO
	ResourceService IResourceService
	OwnerService    IOwnerService
	GrantService    *GrantService
	ValidationUtil  *util.ValidationUtil
	Notifier        util.Notifier
	AuditService    audit.Service
	EventBus        *util.EventBus
	BaseURL         string
}

func NewRequestService(deps RequestServiceDeps) *RequestService {
	return &RequestService{
		requestDAO:      deps.RequestDAO,
		userDAO:         deps.UserDAO,
		grantDAO:        deps.GrantDAO,
		resourceService: deps.ResourceService,
		ownerService:    deps.OwnerService,
		grantService:    deps.GrantService,
		validationUtil:  deps.ValidationUtil,
		notifier:        deps.Notifier,
		auditService:    deps.AuditService,
		eventBus:        deps.EventBus,
		baseURL:         deps.BaseURL,
	}
}

func (s *RequestService) requestLink(requestID string) string {
	if s.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/requests/%s", s.baseURL, requestID)
}

func (s *RequestService) notification(request *model.AccessRequest, action util.NotificationAction, reason *string) util.NotificationContext {
	return util.NotificationContext{Request: request, Action: action, Link: s.requestLink(request.ID), Reason: reason}
}

// CreateRequest validates every item before anything is written. When the
// requester is the target's direct manager the request is auto-approved and
// each item is provisioned right away.
func (s *RequestService) CreateRequest(ctx context.Context, input model.CreateRequestInput, requesterID string) (*model.AccessRequest, error) {
	if err := s.validationUtil.ValidateCreateRequest(input); err != nil {
		return nil, err
	}
	target, err := s.userDAO.GetUser(ctx, input.TargetUserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userDAO.GetUser(ctx, requesterID); err != nil {
		if af_errors.IsNotFound(err) {
			return nil, af_errors.ErrRequesterNotFound
		}
		return nil, err
	}
	for _, item := range input.Items {
		if _, _, err := s.resourceService.ResolvePair(ctx, item.SystemInstanceID, item.AccessTierID); err != nil {
			return nil, err
		}
	}

	autoApprove := target.IsManagedBy(requesterID)
	status := model.RequestRequested
	if autoApprove {
		status = model.RequestApproved
	}

	request := &model.AccessRequest{
		TargetUserID: target.ID,
		RequesterID:  requesterID,
		Status:       status,
		Note:         input.Note,
	}
	if autoApprove {
		request.ManagerDecision = &status
	}
	for _, item := range input.Items {
		request.Items = append(request.Items, model.AccessRequestItem{
			SystemInstanceID: item.SystemInstanceID,
			AccessTierID:     item.AccessTierID,
			Status:           status,
		})
	}
	if err := s.requestDAO.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	if autoApprove {
		for i := range request.Items {
			s.autoProvision(ctx, request, &request.Items[i], requesterID)
		}
	}

	created, err := s.requestDAO.GetRequest(ctx, request.ID)
	if err != nil {
		return nil, err
	}

	s.auditService.LogAccess(ctx, audit.NewEntry(audit.ActionRequestCreated, requesterID, audit.ResourceRequest, created.ID,
		map[string]interface{}{"items": len(created.Items), "autoApproved": autoApprove}).WithTarget(created.TargetUserID))
	s.eventBus.Publish(ctx, util.EventRequestCreated, *created)
	if autoApprove {
		s.eventBus.Publish(ctx, util.EventRequestApproved, *created)
		s.notifier.NotifyRequester(ctx, s.notification(created, util.ActionApprove, nil))
		s.notifier.NotifySystemOwners(ctx, s.notification(created, util.ActionApprove, nil))
	} else {
		s.notifier.NotifyManager(ctx, s.notification(created, util.ActionRequest, nil))
	}

	logger.Info("Access request created",
		zap.String("requestID", created.ID),
		zap.String("status", string(created.Status)),
		zap.Bool("autoApproved", autoApprove))
	return created, nil
}

// autoProvision creates the grant for an auto-approved item and links it.
// A duplicate active grant is not an error: the item is linked to the grant
// that already satisfies it. Other failures leave the item unlinked so it
// shows up for provisioning.
func (s *RequestService) autoProvision(ctx context.Context, request *model.AccessRequest, item *model.AccessRequestItem, requesterID string) {
	grant, err := s.grantService.createGrant(ctx, model.CreateGrantInput{
		UserID:           request.TargetUserID,
		SystemInstanceID: item.SystemInstanceID,
		AccessTierID:     item.AccessTierID,
		GrantedByID:      &requesterID,
		Status:           model.GrantActive,
	}, requesterID)
	if errors.Is(err, af_errors.ErrActiveGrantExists) {
		grant, err = s.grantDAO.FindActiveGrant(ctx, request.TargetUserID, item.SystemInstanceID, item.AccessTierID)
		if err == nil && grant == nil {
			err = af_errors.ErrGrantNotFound
		}
		logger.Info("Auto-approved item already satisfied by an active grant",
			zap.String("itemID", item.ID))
	}
	if err != nil {
		logger.Error("Auto-provisioning failed; item left for owner provisioning",
			zap.String("itemID", item.ID),
			zap.Error(err))
		return
	}
	if err := s.requestDAO.LinkGrant(ctx, item.ID, grant.ID); err != nil {
		logger.Error("Failed to link auto-provisioned grant",
			zap.String("itemID", item.ID),
			zap.String("grantID", grant.ID),
			zap.Error(err))
	}
}

func (s *RequestService) GetRequest(ctx context.Context, requestID string) (*model.AccessRequest, error) {
	return s.requestDAO.GetRequest(ctx, requestID)
}

func (s *RequestService) FindAll(ctx context.Context, filter model.RequestFilter) (*model.PageResult[model.AccessRequest], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, af_errors.BadRequest("Invalid request status '%s'", filter.Status)
	}
	filter.Normalize()
	requests, total, err := s.requestDAO.FindRequests(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.PageResult[model.AccessRequest]{Data: requests, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// FindMine pages through the requests filed by requesterID; any requester
// in filter is overridden.
func (s *RequestService) FindMine(ctx context.Context, requesterID string, filter model.RequestFilter) (*model.PageResult[model.AccessRequest], error) {
	filter.RequesterID = requesterID
	return s.FindAll(ctx, filter)
}

// ownedItem loads itemID and requires actorID to own the item's system.
func (s *RequestService) ownedItem(ctx context.Context, itemID, actorID string) (*model.AccessRequestItem, error) {
	item, err := s.requestDAO.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.ownerService.RequireOwner(ctx, actorID, item.SystemID()); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *RequestService) ApproveItem(ctx context.Context, itemID, actorID string) (*model.AccessRequestItem, error) {
	return s.decideItem(ctx, itemID, actorID, model.RequestApproved, nil)
}

func (s *RequestService) RejectItem(ctx context.Context, itemID, actorID string, reason *string) (*model.AccessRequestItem, error) {
	return s.decideItem(ctx, itemID, actorID, model.RequestRejected, reason)
}

func (s *RequestService) decideItem(ctx context.Context, itemID, actorID string, to model.RequestStatus, reason *string) (*model.AccessRequestItem, error) {
	item, err := s.ownedItem(ctx, itemID, actorID)
	if err != nil {
		return nil, err
	}
	if item.Status != model.RequestRequested {
		return nil, af_errors.RequiredStatus("Item", string(model.RequestRequested))
	}
	if !model.CanTransitionRequest(item.Status, to) {
		return nil, af_errors.InvalidTransition("Item", string(item.Status), string(to))
	}
	if to != model.RequestRejected {
		reason = nil
	}

	var request *model.AccessRequest
	err = s.requestDAO.Transaction(ctx, func(tx *dao.RequestDAO) error {
		if err := tx.UpdateItemDecision(ctx, item.ID, item.Status, to, reason); err != nil {
			return err
		}
		var err error
		request, err = s.syncAggregate(ctx, tx, item.AccessRequestID)
		return err
	})
	if err != nil {
		return nil, err
	}

	action, event, auditAction := util.ActionApprove, util.EventItemApproved, audit.ActionItemApproved
	if to == model.RequestRejected {
		action, event, auditAction = util.ActionReject, util.EventItemRejected, audit.ActionItemRejected
	}
	s.auditService.LogAccess(ctx, audit.NewEntry(auditAction, actorID, audit.ResourceItem, item.ID,
		map[string]interface{}{"requestId": item.AccessRequestID}).WithTarget(request.TargetUserID).WithReason(reason))

	updated, err := s.requestDAO.GetItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	s.eventBus.Publish(ctx, event, *updated)
	s.notifier.NotifyRequester(ctx, s.notification(request, action, reason))

	logger.Info("Request item decided",
		zap.String("itemID", item.ID),
		zap.String("status", string(to)),
		zap.String("requestStatus", string(request.Status)),
		zap.String("actorID", actorID))
	return updated, nil
}

// syncAggregate recomputes the request status from its items and persists
// it when it changed.
func (s *RequestService) syncAggregate(ctx context.Context, tx *dao.RequestDAO, requestID string) (*model.AccessRequest, error) {
	request, err := tx.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	derived := model.DeriveRequestStatus(request.Items)
	if derived == request.Status {
		return request, nil
	}
	if err := tx.UpdateRequestStatus(ctx, request.ID, request.Status, derived, nil); err != nil {
		return nil, err
	}
	request.Status = derived
	return request, nil
}

// ProvisionItem turns an approved item into an active grant owned by the
// request's target and links the two.
func (s *RequestService) ProvisionItem(ctx context.Context, itemID, actorID string) (*model.AccessRequestItem, error) {
	item, err := s.ownedItem(ctx, itemID, actorID)
	if err != nil {
		return nil, err
	}
	if item.Status != model.RequestApproved {
		return nil, af_errors.BadRequest("Cannot provision item in status %s", item.Status)
	}
	if item.AccessGrantID != nil {
		return nil, af_errors.ErrItemAlreadyLinked
	}
	if item.AccessRequest.RejectedByManager() {
		return nil, af_errors.ErrRejectedByManager
	}

	grant, err := s.grantService.createGrant(ctx, model.CreateGrantInput{
		UserID:           item.AccessRequest.TargetUserID,
		SystemInstanceID: item.SystemInstanceID,
		AccessTierID:     item.AccessTierID,
		GrantedByID:      &actorID,
		Status:           model.GrantActive,
	}, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.requestDAO.LinkGrant(ctx, item.ID, grant.ID); err != nil {
		return nil, err
	}

	updated, err := s.requestDAO.GetItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	s.auditService.LogAccess(ctx, audit.NewEntry(audit.ActionItemProvisioned, actorID, audit.ResourceItem, item.ID,
		map[string]interface{}{"grantId": grant.ID}).WithTarget(grant.UserID))
	s.eventBus.Publish(ctx, util.EventItemProvisioned, *updated)
	if request, err := s.requestDAO.GetRequest(ctx, item.AccessRequestID); err == nil {
		s.notifier.NotifyRequester(ctx, s.notification(request, util.ActionActivate, nil))
	}

	logger.Info("Request item provisioned",
		zap.String("itemID", item.ID),
		zap.String("grantID", grant.ID),
		zap.String("actorID", actorID))
	return updated, nil
}

func (s *RequestService) ApproveRequest(ctx context.Context, requestID, actorID string) (*model.AccessRequest, error) {
	return s.decideRequest(ctx, requestID, actorID, model.RequestApproved, nil)
}

func (s *RequestService) RejectRequest(ctx context.Context, requestID, actorID string, reason *string) (*model.AccessRequest, error) {
	return s.decideRequest(ctx, requestID, actorID, model.RequestRejected, reason)
}

// decideRequest is the manager decision. It cascades to every item that is
// still requested and never creates grants. Items an owner already approved
// keep their status, but a rejection is recorded on the request and keeps
// them out of provisioning.
func (s *RequestService) decideRequest(ctx context.Context, requestID, actorID string, to model.RequestStatus, reason *string) (*model.AccessRequest, error) {
	request, err := s.requestDAO.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	managerID, err := s.userDAO.GetManagerID(ctx, request.TargetUserID)
	if err != nil {
		return nil, err
	}
	if managerID == nil || *managerID != actorID {
		logger.Warn("Actor is not the target's direct manager",
			zap.String("requestID", requestID),
			zap.String("actorID", actorID))
		return nil, af_errors.ErrNotManager
	}
	if !model.CanTransitionRequest(request.Status, to) {
		return nil, af_errors.InvalidTransition("Request", string(request.Status), string(to))
	}

	var note, itemReason *string
	if to == model.RequestRejected && reason != nil && *reason != "" {
		note, itemReason = reason, reason
	}
	err = s.requestDAO.Transaction(ctx, func(tx *dao.RequestDAO) error {
		if err := tx.UpdateRequestStatus(ctx, request.ID, request.Status, to, note); err != nil {
			return err
		}
		if err := tx.RecordManagerDecision(ctx, request.ID, to); err != nil {
			return err
		}
		_, err := tx.CascadeItemStatus(ctx, request.ID, model.RequestRequested, to, itemReason)
		return err
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.requestDAO.GetRequest(ctx, request.ID)
	if err != nil {
		return nil, err
	}

	if to == model.RequestApproved {
		s.auditService.LogAccess(ctx, audit.NewEntry(audit.ActionRequestApproved, actorID, audit.ResourceRequest, updated.ID, nil).
			WithTarget(updated.TargetUserID))
		s.eventBus.Publish(ctx, util.EventRequestApproved, *updated)
		s.notifier.NotifyRequester(ctx, s.notification(updated, util.ActionApprove, nil))
		s.notifier.NotifySystemOwners(ctx, s.notification(updated, util.ActionApprove, nil))
	} else {
		s.auditService.LogAccess(ctx, audit.NewEntry(audit.ActionRequestRejected, actorID, audit.ResourceRequest, updated.ID, nil).
			WithTarget(updated.TargetUserID).WithReason(reason))
		s.eventBus.Publish(ctx, util.EventRequestRejected, *updated)
		s.notifier.NotifyRequester(ctx, s.notification(updated, util.ActionReject, reason))
	}

	logger.Info("Access request decided",
		zap.String("requestID", updated.ID),
		zap.String("status", string(to)),
		zap.String("actorID", actorID))
	return updated, nil
}

func (s *RequestService) FindPendingForManager(ctx context.Context, managerID string) ([]model.AccessRequest, error) {
	return s.requestDAO.FindPendingForManager(ctx, managerID)
}

func (s *RequestService) FindPendingProvisioning(ctx context.Context, ownerID string) ([]model.AccessRequestItem, error) {
	systemIDs, err := s.ownerService.OwnedSystemIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.requestDAO.FindPendingProvisioning(ctx, systemIDs)
}

func (s *RequestService) BulkProvision(ctx context.Context, itemIDs []string, actorID string) *model.BulkOperationResult {
	return runBulk(itemIDs, func(id string) error {
		_, err := s.ProvisionItem(ctx, id, actorID)
		return err
	})
}

// CopyGrantsFromUser files one single-item request per active grant of the
// source user that the target does not already hold or have pending.
func (s *RequestService) CopyGrantsFromUser(ctx context.Context, input model.CopyGrantsInput, requesterID string) (*model.CopyGrantsReport, error) {
	if input.SourceUserID == input.TargetUserID {
		return nil, af_errors.ErrSameSourceAndTarget
	}
	source, err := s.userDAO.GetUser(ctx, input.SourceUserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userDAO.GetUser(ctx, input.TargetUserID); err != nil {
		return nil, err
	}

	grants, err := s.grantDAO.FindActiveByUser(ctx, source.ID, input.SystemIDs, input.ExcludeSystemIDs)
	if err != nil {
		return nil, err
	}

	report := &model.CopyGrantsReport{Results: []model.CopyGrantResult{}}
	note := fmt.Sprintf("Copied from %s", source.Email)
	for _, grant := range grants {
		result := model.CopyGrantResult{GrantID: grant.ID}
		if grant.SystemInstance != nil {
			result.InstanceName = grant.SystemInstance.Name
			if grant.SystemInstance.System != nil {
				result.SystemName = grant.SystemInstance.System.Name
			}
		}
		if grant.AccessTier != nil {
			result.TierName = grant.AccessTier.Name
		}

		reason, err := s.copyBlocker(ctx, input.TargetUserID, grant)
		switch {
		case err != nil:
			result.Outcome, result.Reason = model.CopyFailed, af_errors.Message(err)
			report.Failed++
		case reason != "":
			result.Outcome, result.Reason = model.CopySkipped, reason
			report.Skipped++
		default:
			request, err := s.CreateRequest(ctx, model.CreateRequestInput{
				TargetUserID: input.TargetUserID,
				Items:        []model.RequestItemInput{{SystemInstanceID: grant.SystemInstanceID, AccessTierID: grant.AccessTierID}},
				Note:         &note,
			}, requesterID)
			if err != nil {
				result.Outcome, result.Reason = model.CopyFailed, af_errors.Message(err)
				report.Failed++
			} else {
				result.Outcome, result.RequestID = model.CopyCreated, &request.ID
				report.Created++
			}
		}
		report.Results = append(report.Results, result)
	}

	logger.Info("Grants copied between users",
		zap.String("sourceUserID", input.SourceUserID),
		zap.String("targetUserID", input.TargetUserID),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

// copyBlocker returns a non-empty reason when the target already holds the
// grant or has it pending.
func (s *RequestService) copyBlocker(ctx context.Context, targetUserID string, grant model.AccessGrant) (string, error) {
	existing, err := s.grantDAO.FindActiveGrant(ctx, targetUserID, grant.SystemInstanceID, grant.AccessTierID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "target already has this access", nil
	}
	open, err := s.requestDAO.HasOpenItem(ctx, targetUserID, grant.SystemInstanceID, grant.AccessTierID)
	if err != nil {
		return "", err
	}
	if open {
		return "target already has a pending request for this access", nil
	}
	return "", nil
}
