// dao/grant_dao.go
package dao

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	af_errors "github.com/ucook/accessflow/errors"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
)

type GrantDAO struct {
	DB *gorm.DB
}

func NewGrantDAO(db *gorm.DB) *GrantDAO {
	return &GrantDAO{DB: db}
}

// withDisplay attaches the denormalised context every caller needs.
func withDisplay(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("User", unscoped).
		Preload("GrantedBy", unscoped).
		Preload("SystemInstance.System").
		Preload("AccessTier")
}

// CreateGrant inserts grant. A hit on idx_active_grant is reported as
// ErrActiveGrantExists, the same outcome as the advisory pre-check.
func (dao *GrantDAO) CreateGrant(ctx context.Context, grant *model.AccessGrant) error {
	start := time.Now()
	logger.Info("Creating access grant",
		zap.String("userID", grant.UserID),
		zap.String("instanceID", grant.SystemInstanceID),
		zap.String("tierID", grant.AccessTierID),
		zap.String("status", string(grant.Status)))

	err := dao.DB.WithContext(ctx).
		Omit("User", "SystemInstance", "AccessTier", "GrantedBy").
		Create(grant).Error
	duration := time.Since(start)
	if err != nil {
		logger.Warn("Failed to create access grant",
			zap.Error(err),
			zap.Duration("duration", duration))
		return translate("create grant", err, nil, af_errors.ErrActiveGrantExists)
	}

	logger.Info("Access grant created successfully",
		zap.String("grantID", grant.ID),
		zap.Duration("duration", duration))
	return nil
}

func (dao *GrantDAO) GetGrant(ctx context.Context, grantID string) (*model.AccessGrant, error) {
	var grant model.AccessGrant
	if err := withDisplay(dao.DB.WithContext(ctx)).First(&grant, "id = ?", grantID).Error; err != nil {
		return nil, translate("get grant", err, af_errors.ErrGrantNotFound, nil)
	}
	return &grant, nil
}

// FindActiveGrant returns nil without error when the triple has no active row.
func (dao *GrantDAO) FindActiveGrant(ctx context.Context, userID, instanceID, tierID string) (*model.AccessGrant, error) {
	var grants []model.AccessGrant
	err := dao.DB.WithContext(ctx).
		Where("user_id = ? AND system_instance_id = ? AND access_tier_id = ? AND status = ?",
			userID, instanceID, tierID, model.GrantActive).
		Limit(1).Find(&grants).Error
	if err != nil {
		return nil, translate("find active grant", err, nil, nil)
	}
	if len(grants) == 0 {
		return nil, nil
	}
	return &grants[0], nil
}

// UpdateStatus moves a grant from one status to another, writing removedAt
// in the same statement. A grant no longer in from yields ErrConcurrentUpdate.
func (dao *GrantDAO) UpdateStatus(ctx context.Context, grantID string, from, status model.GrantStatus, removedAt *time.Time) error {
	start := time.Now()
	result := dao.DB.WithContext(ctx).Model(&model.AccessGrant{}).
		Where("id = ? AND status = ?", grantID, from).
		Updates(map[string]interface{}{"status": status, "removed_at": removedAt})
	duration := time.Since(start)
	if result.Error != nil {
		logger.Warn("Failed to update grant status",
			zap.Error(result.Error),
			zap.String("grantID", grantID),
			zap.Duration("duration", duration))
		return translate("update grant status", result.Error, nil, af_errors.ErrActiveGrantExists)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrConcurrentUpdate
	}

	logger.Info("Grant status updated",
		zap.String("grantID", grantID),
		zap.String("status", string(status)),
		zap.Duration("duration", duration))
	return nil
}

var grantSortColumns = map[string]string{
	model.SortByUserName:   "users.name",
	model.SortBySystemName: "systems.name",
	model.SortByGrantedAt:  "access_grants.granted_at",
}

// FindGrants applies filter (already normalised) and orders by the chosen
// column with the id as tie-breaker so pages are stable.
func (dao *GrantDAO) FindGrants(ctx context.Context, filter model.GrantFilter) ([]model.AccessGrant, int64, error) {
	start := time.Now()
	query := dao.DB.WithContext(ctx).Model(&model.AccessGrant{}).
		Joins("JOIN users ON users.id = access_grants.user_id").
		Joins("JOIN system_instances ON system_instances.id = access_grants.system_instance_id").
		Joins("JOIN systems ON systems.id = system_instances.system_id")

	if filter.UserID != "" {
		query = query.Where("access_grants.user_id = ?", filter.UserID)
	}
	if filter.SystemID != "" {
		query = query.Where("system_instances.system_id = ?", filter.SystemID)
	}
	if filter.SystemInstanceID != "" {
		query = query.Where("access_grants.system_instance_id = ?", filter.SystemInstanceID)
	}
	if filter.AccessTierID != "" {
		query = query.Where("access_grants.access_tier_id = ?", filter.AccessTierID)
	}
	if filter.Status != "" {
		query = query.Where("access_grants.status = ?", filter.Status)
	}
	if filter.UserSearch != "" {
		like := "%" + strings.ToLower(filter.UserSearch) + "%"
		query = query.Where("(LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?)", like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count grants", err, nil, nil)
	}

	column, ok := grantSortColumns[filter.SortBy]
	if !ok {
		column = grantSortColumns[model.SortByGrantedAt]
	}
	var grants []model.AccessGrant
	err := withDisplay(query.Select("access_grants.*")).
		Order(column + " " + filter.SortOrder).
		Order("access_grants.id ASC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&grants).Error
	if err != nil {
		return nil, 0, translate("find grants", err, nil, nil)
	}

	logger.Debug("Grants listed",
		zap.Int("count", len(grants)),
		zap.Int64("total", total),
		zap.Duration("duration", time.Since(start)))
	return grants, total, nil
}

// FindByStatusInSystems restricts grants with status to the given systems.
func (dao *GrantDAO) FindByStatusInSystems(ctx context.Context, status model.GrantStatus, systemIDs []string) ([]model.AccessGrant, error) {
	var grants []model.AccessGrant
	if len(systemIDs) == 0 {
		return grants, nil
	}
	err := withDisplay(dao.DB.WithContext(ctx)).
		Joins("JOIN system_instances ON system_instances.id = access_grants.system_instance_id").
		Where("access_grants.status = ? AND system_instances.system_id IN ?", status, systemIDs).
		Order("access_grants.updated_at DESC").Order("access_grants.id").
		Find(&grants).Error
	if err != nil {
		return nil, translate("find grants by status", err, nil, nil)
	}
	return grants, nil
}

// FindActiveByUser lists userID's active grants, optionally limited to
// systemIDs and never in excludeSystemIDs.
func (dao *GrantDAO) FindActiveByUser(ctx context.Context, userID string, systemIDs, excludeSystemIDs []string) ([]model.AccessGrant, error) {
	query := withDisplay(dao.DB.WithContext(ctx)).
		Joins("JOIN system_instances ON system_instances.id = access_grants.system_instance_id").
		Where("access_grants.user_id = ? AND access_grants.status = ?", userID, model.GrantActive)
	if len(systemIDs) > 0 {
		query = query.Where("system_instances.system_id IN ?", systemIDs)
	}
	if len(excludeSystemIDs) > 0 {
		query = query.Where("system_instances.system_id NOT IN ?", excludeSystemIDs)
	}
	var grants []model.AccessGrant
	if err := query.Order("access_grants.granted_at").Order("access_grants.id").Find(&grants).Error; err != nil {
		return nil, translate("find active grants by user", err, nil, nil)
	}
	return grants, nil
}
