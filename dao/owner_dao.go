// dao/owner_dao.go
package dao

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	af_errors "github.com/ucook/accessflow/errors"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
)

type OwnerDAO struct {
	DB *gorm.DB
}

func NewOwnerDAO(db *gorm.DB) *OwnerDAO {
	return &OwnerDAO{DB: db}
}

func (dao *OwnerDAO) AddOwner(ctx context.Context, owner *model.SystemOwner) error {
	logger.Info("Adding system owner",
		zap.String("userID", owner.UserID),
		zap.String("systemID", owner.SystemID))
	if err := dao.DB.WithContext(ctx).Omit("User", "System").Create(owner).Error; err != nil {
		logger.Error("Failed to add system owner", zap.Error(err))
		return translate("add owner", err, nil, af_errors.ErrOwnerConflict)
	}
	return nil
}

func (dao *OwnerDAO) RemoveOwner(ctx context.Context, userID, systemID string) error {
	result := dao.DB.WithContext(ctx).
		Where("user_id = ? AND system_id = ?", userID, systemID).
		Delete(&model.SystemOwner{})
	if result.Error != nil {
		return translate("remove owner", result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrOwnerNotFound
	}
	logger.Info("System owner removed",
		zap.String("userID", userID),
		zap.String("systemID", systemID))
	return nil
}

func (dao *OwnerDAO) IsOwner(ctx context.Context, userID, systemID string) (bool, error) {
	var count int64
	err := dao.DB.WithContext(ctx).Model(&model.SystemOwner{}).
		Where("user_id = ? AND system_id = ?", userID, systemID).
		Count(&count).Error
	if err != nil {
		return false, translate("check owner", err, nil, nil)
	}
	return count > 0, nil
}

func (dao *OwnerDAO) FindBySystem(ctx context.Context, systemID string) ([]model.SystemOwner, error) {
	var owners []model.SystemOwner
	err := dao.DB.WithContext(ctx).Preload("User").
		Where("system_id = ?", systemID).Order("created_at").Find(&owners).Error
	if err != nil {
		return nil, translate("find owners by system", err, nil, nil)
	}
	return owners, nil
}

func (dao *OwnerDAO) FindByUser(ctx context.Context, userID string) ([]model.SystemOwner, error) {
	var owners []model.SystemOwner
	err := dao.DB.WithContext(ctx).Preload("System").
		Where("user_id = ?", userID).Order("created_at").Find(&owners).Error
	if err != nil {
		return nil, translate("find owners by user", err, nil, nil)
	}
	return owners, nil
}

// OwnedSystemIDs returns the ids of every system userID owns.
func (dao *OwnerDAO) OwnedSystemIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := dao.DB.WithContext(ctx).Model(&model.SystemOwner{}).
		Where("user_id = ?", userID).Pluck("system_id", &ids).Error
	if err != nil {
		return nil, translate("owned systems", err, nil, nil)
	}
	return ids, nil
}
