// dao/request_dao.go
package dao

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	af_errors "github.com/ucook/accessflow/errors"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
)

type RequestDAO struct {
	DB *gorm.DB
}

func NewRequestDAO(db *gorm.DB) *RequestDAO {
	return &RequestDAO{DB: db}
}

// Transaction runs fn against a DAO bound to one database transaction.
func (dao *RequestDAO) Transaction(ctx context.Context, fn func(tx *RequestDAO) error) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RequestDAO{DB: tx})
	})
}

func withRequestDetail(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("TargetUser", unscoped).
		Preload("Requester", unscoped).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at").Order("id") }).
		Preload("Items.SystemInstance.System").
		Preload("Items.AccessTier")
}

// CreateRequest inserts the request and its items atomically.
func (dao *RequestDAO) CreateRequest(ctx context.Context, request *model.AccessRequest) error {
	start := time.Now()
	logger.Info("Creating access request",
		zap.String("targetUserID", request.TargetUserID),
		zap.String("requesterID", request.RequesterID),
		zap.Int("items", len(request.Items)))

	err := dao.DB.WithContext(ctx).
		Omit("TargetUser", "Requester").
		Create(request).Error
	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create access request",
			zap.Error(err),
			zap.Duration("duration", duration))
		return translate("create request", err, nil, nil)
	}

	logger.Info("Access request created successfully",
		zap.String("requestID", request.ID),
		zap.Duration("duration", duration))
	return nil
}

func (dao *RequestDAO) GetRequest(ctx context.Context, requestID string) (*model.AccessRequest, error) {
	var request model.AccessRequest
	if err := withRequestDetail(dao.DB.WithContext(ctx)).First(&request, "id = ?", requestID).Error; err != nil {
		return nil, translate("get request", err, af_errors.ErrRequestNotFound, nil)
	}
	return &request, nil
}

func (dao *RequestDAO) GetItem(ctx context.Context, itemID string) (*model.AccessRequestItem, error) {
	var item model.AccessRequestItem
	err := dao.DB.WithContext(ctx).
		Preload("AccessRequest").
		Preload("SystemInstance.System").
		Preload("AccessTier").
		First(&item, "id = ?", itemID).Error
	if err != nil {
		return nil, translate("get request item", err, af_errors.ErrRequestItemNotFound, nil)
	}
	return &item, nil
}

// UpdateRequestStatus moves a request out of from and, when note is
// non-nil, replaces the note.
func (dao *RequestDAO) UpdateRequestStatus(ctx context.Context, requestID string, from, status model.RequestStatus, note *string) error {
	updates := map[string]interface{}{"status": status}
	if note != nil {
		updates["note"] = *note
	}
	result := dao.DB.WithContext(ctx).Model(&model.AccessRequest{}).
		Where("id = ? AND status = ?", requestID, from).
		Updates(updates)
	if result.Error != nil {
		return translate("update request status", result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrConcurrentUpdate
	}
	logger.Info("Access request status updated",
		zap.String("requestID", requestID),
		zap.String("status", string(status)))
	return nil
}

// UpdateItemDecision records an approve or reject outcome on an item that
// is still in from.
func (dao *RequestDAO) UpdateItemDecision(ctx context.Context, itemID string, from, status model.RequestStatus, reason *string) error {
	result := dao.DB.WithContext(ctx).Model(&model.AccessRequestItem{}).
		Where("id = ? AND status = ?", itemID, from).
		Updates(map[string]interface{}{"status": status, "rejection_reason": reason})
	if result.Error != nil {
		return translate("update item status", result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrConcurrentUpdate
	}
	logger.Info("Access request item decided",
		zap.String("itemID", itemID),
		zap.String("status", string(status)))
	return nil
}

// CascadeItemStatus moves every item of requestID still in from to status.
func (dao *RequestDAO) CascadeItemStatus(ctx context.Context, requestID string, from, to model.RequestStatus, reason *string) (int64, error) {
	updates := map[string]interface{}{"status": to}
	if reason != nil {
		updates["rejection_reason"] = *reason
	}
	result := dao.DB.WithContext(ctx).Model(&model.AccessRequestItem{}).
		Where("access_request_id = ? AND status = ?", requestID, from).
		Updates(updates)
	if result.Error != nil {
		return 0, translate("cascade item status", result.Error, nil, nil)
	}
	return result.RowsAffected, nil
}

// LinkGrant sets the item's grant once; an already linked item is left alone.
func (dao *RequestDAO) LinkGrant(ctx context.Context, itemID, grantID string) error {
	result := dao.DB.WithContext(ctx).Model(&model.AccessRequestItem{}).
		Where("id = ? AND access_grant_id IS NULL", itemID).
		Update("access_grant_id", grantID)
	if result.Error != nil {
		return translate("link grant", result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrItemAlreadyLinked
	}
	logger.Info("Request item linked to grant",
		zap.String("itemID", itemID),
		zap.String("grantID", grantID))
	return nil
}

// RecordManagerDecision stores the manager's verdict once per request.
func (dao *RequestDAO) RecordManagerDecision(ctx context.Context, requestID string, decision model.RequestStatus) error {
	result := dao.DB.WithContext(ctx).Model(&model.AccessRequest{}).
		Where("id = ? AND manager_decision IS NULL", requestID).
		Update("manager_decision", decision)
	if result.Error != nil {
		return translate("record manager decision", result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrConcurrentUpdate
	}
	return nil
}

// FindPendingForManager returns requested requests whose target reports to managerID.
func (dao *RequestDAO) FindPendingForManager(ctx context.Context, managerID string) ([]model.AccessRequest, error) {
	var requests []model.AccessRequest
	err := withRequestDetail(dao.DB.WithContext(ctx)).
		Joins("JOIN users ON users.id = access_requests.target_user_id").
		Where("users.manager_id = ? AND access_requests.status = ?", managerID, model.RequestRequested).
		Order("access_requests.created_at").Order("access_requests.id").
		Find(&requests).Error
	if err != nil {
		return nil, translate("find pending for manager", err, nil, nil)
	}
	return requests, nil
}

// notRejectedByManager keeps items whose request the manager has not rejected.
const notRejectedByManager = "(access_requests.manager_decision IS NULL OR access_requests.manager_decision <> ?)"

// FindPendingProvisioning returns approved, unlinked items in systemIDs.
func (dao *RequestDAO) FindPendingProvisioning(ctx context.Context, systemIDs []string) ([]model.AccessRequestItem, error) {
	var items []model.AccessRequestItem
	if len(systemIDs) == 0 {
		return items, nil
	}
	err := dao.DB.WithContext(ctx).
		Preload("AccessRequest.TargetUser", unscoped).
		Preload("SystemInstance.System").
		Preload("AccessTier").
		Joins("JOIN system_instances ON system_instances.id = access_request_items.system_instance_id").
		Joins("JOIN access_requests ON access_requests.id = access_request_items.access_request_id").
		Where("access_request_items.status = ? AND access_request_items.access_grant_id IS NULL", model.RequestApproved).
		Where(notRejectedByManager, model.RequestRejected).
		Where("system_instances.system_id IN ?", systemIDs).
		Order("access_request_items.created_at").Order("access_request_items.id").
		Find(&items).Error
	if err != nil {
		return nil, translate("find pending provisioning", err, nil, nil)
	}
	return items, nil
}

// HasOpenItem reports whether targetUserID already has a requested or an
// approved-but-unprovisioned item for the same instance and tier. Items under
// a manager-rejected request are never provisioned and do not count.
func (dao *RequestDAO) HasOpenItem(ctx context.Context, targetUserID, instanceID, tierID string) (bool, error) {
	var count int64
	err := dao.DB.WithContext(ctx).Model(&model.AccessRequestItem{}).
		Joins("JOIN access_requests ON access_requests.id = access_request_items.access_request_id").
		Where("access_requests.target_user_id = ?", targetUserID).
		Where("access_request_items.system_instance_id = ? AND access_request_items.access_tier_id = ?", instanceID, tierID).
		Where("(access_request_items.status = ? OR (access_request_items.status = ? AND access_request_items.access_grant_id IS NULL))",
			model.RequestRequested, model.RequestApproved).
		Where(notRejectedByManager, model.RequestRejected).
		Count(&count).Error
	if err != nil {
		return false, translate("check open items", err, nil, nil)
	}
	return count > 0, nil
}

func (dao *RequestDAO) FindRequests(ctx context.Context, filter model.RequestFilter) ([]model.AccessRequest, int64, error) {
	query := dao.DB.WithContext(ctx).Model(&model.AccessRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TargetUserID != "" {
		query = query.Where("target_user_id = ?", filter.TargetUserID)
	}
	if filter.RequesterID != "" {
		query = query.Where("requester_id = ?", filter.RequesterID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count requests", err, nil, nil)
	}
	var requests []model.AccessRequest
	err := withRequestDetail(query).
		Order("created_at DESC").Order("id").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&requests).Error
	if err != nil {
		return nil, 0, translate("find requests", err, nil, nil)
	}
	return requests, total, nil
}
