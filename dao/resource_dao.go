// dao/resource_dao.go
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

// ResourceDAO stores the catalog: systems, their instances and their tiers.
type ResourceDAO struct {
	DB *gorm.DB
}

func NewResourceDAO(db *gorm.DB) *ResourceDAO {
	return &ResourceDAO{DB: db}
}

func (dao *ResourceDAO) CreateSystem(ctx context.Context, system *model.System) error {
	start := time.Now()
	logger.Info("Creating new system", zap.String("name", system.Name))

	if err := dao.DB.WithContext(ctx).Omit("Instances", "AccessTiers").Create(system).Error; err != nil {
		logger.Error("Failed to create system", zap.Error(err), zap.String("name", system.Name))
		return translate("create system", err, nil, af_errors.ErrSystemConflict)
	}

	logger.Info("System created successfully",
		zap.String("systemID", system.ID),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (dao *ResourceDAO) GetSystem(ctx context.Context, systemID string) (*model.System, error) {
	var system model.System
	err := dao.DB.WithContext(ctx).
		Preload("Instances", func(tx *gorm.DB) *gorm.DB { return tx.Order("name") }).
		Preload("AccessTiers", func(tx *gorm.DB) *gorm.DB { return tx.Order("name") }).
		First(&system, "id = ?", systemID).Error
	if err != nil {
		return nil, translate("get system", err, af_errors.ErrSystemNotFound, nil)
	}
	return &system, nil
}

// GetSystemByName is an exact, case-sensitive match.
func (dao *ResourceDAO) GetSystemByName(ctx context.Context, name string) (*model.System, error) {
	var system model.System
	if err := dao.DB.WithContext(ctx).First(&system, "name = ?", name).Error; err != nil {
		return nil, translate("get system by name", err, af_errors.ErrSystemNotFound, nil)
	}
	return &system, nil
}

func (dao *ResourceDAO) ListSystems(ctx context.Context) ([]model.System, error) {
	var systems []model.System
	err := dao.DB.WithContext(ctx).
		Preload("Instances", func(tx *gorm.DB) *gorm.DB { return tx.Order("name") }).
		Preload("AccessTiers", func(tx *gorm.DB) *gorm.DB { return tx.Order("name") }).
		Order("name").Find(&systems).Error
	if err != nil {
		return nil, translate("list systems", err, nil, nil)
	}
	return systems, nil
}

func (dao *ResourceDAO) ListSystemsByIDs(ctx context.Context, ids []string) ([]model.System, error) {
	var systems []model.System
	if len(ids) == 0 {
		return systems, nil
	}
	if err := dao.DB.WithContext(ctx).Where("id IN ?", ids).Order("name").Find(&systems).Error; err != nil {
		return nil, translate("list systems by id", err, nil, nil)
	}
	return systems, nil
}

func (dao *ResourceDAO) UpdateSystem(ctx context.Context, system *model.System) error {
	start := time.Now()
	logger.Info("Updating system", zap.String("systemID", system.ID))

	result := dao.DB.WithContext(ctx).Model(&model.System{ID: system.ID}).
		Updates(map[string]interface{}{"name": system.Name, "description": system.Description})
	if result.Error != nil {
		logger.Error("Failed to update system", zap.Error(result.Error), zap.String("systemID", system.ID))
		return translate("update system", result.Error, nil, af_errors.ErrSystemConflict)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrSystemNotFound
	}

	logger.Info("System updated successfully",
		zap.String("systemID", system.ID),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// DeleteSystem fails with Conflict while grants or requests still reference it.
func (dao *ResourceDAO) DeleteSystem(ctx context.Context, systemID string) error {
	start := time.Now()
	logger.Info("Deleting system", zap.String("systemID", systemID))

	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.AccessGrant{}).
			Joins("JOIN system_instances ON system_instances.id = access_grants.system_instance_id").
			Where("system_instances.system_id = ?", systemID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return af_errors.Conflict("System still has %d grant(s)", count)
		}
		for _, m := range []interface{}{&model.SystemOwner{}, &model.AccessTier{}, &model.SystemInstance{}} {
			if err := tx.Where("system_id = ?", systemID).Delete(m).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&model.System{}, "id = ?", systemID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return af_errors.ErrSystemNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete system", zap.Error(err), zap.String("systemID", systemID))
		if _, ok := err.(*af_errors.DomainError); ok {
			return err
		}
		return translate("delete system", err, nil, nil)
	}

	logger.Info("System deleted successfully",
		zap.String("systemID", systemID),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (dao *ResourceDAO) CreateInstance(ctx context.Context, instance *model.SystemInstance) error {
	logger.Info("Creating system instance",
		zap.String("systemID", instance.SystemID),
		zap.String("name", instance.Name))
	if err := dao.DB.WithContext(ctx).Omit("System").Create(instance).Error; err != nil {
		logger.Error("Failed to create system instance", zap.Error(err))
		return translate("create instance", err, nil, af_errors.ErrInstanceConflict)
	}
	return nil
}

func (dao *ResourceDAO) GetInstance(ctx context.Context, instanceID string) (*model.SystemInstance, error) {
	var instance model.SystemInstance
	if err := dao.DB.WithContext(ctx).Preload("System").First(&instance, "id = ?", instanceID).Error; err != nil {
		return nil, translate("get instance", err, af_errors.ErrInstanceNotFound, nil)
	}
	return &instance, nil
}

func (dao *ResourceDAO) GetInstanceByName(ctx context.Context, systemID, name string) (*model.SystemInstance, error) {
	var instance model.SystemInstance
	err := dao.DB.WithContext(ctx).Preload("System").
		First(&instance, "system_id = ? AND name = ?", systemID, name).Error
	if err != nil {
		return nil, translate("get instance by name", err, af_errors.ErrInstanceNotFound, nil)
	}
	return &instance, nil
}

func (dao *ResourceDAO) ListInstances(ctx context.Context, systemID string) ([]model.SystemInstance, error) {
	var instances []model.SystemInstance
	if err := dao.DB.WithContext(ctx).Where("system_id = ?", systemID).Order("name").Find(&instances).Error; err != nil {
		return nil, translate("list instances", err, nil, nil)
	}
	return instances, nil
}

func (dao *ResourceDAO) UpdateInstance(ctx context.Context, instance *model.SystemInstance) error {
	result := dao.DB.WithContext(ctx).Model(&model.SystemInstance{ID: instance.ID}).
		Updates(map[string]interface{}{
			"name":        instance.Name,
			"region":      instance.Region,
			"environment": instance.Environment,
		})
	if result.Error != nil {
		return translate("update instance", result.Error, nil, af_errors.ErrInstanceConflict)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrInstanceNotFound
	}
	logger.Info("System instance updated", zap.String("instanceID", instance.ID))
	return nil
}

func (dao *ResourceDAO) DeleteInstance(ctx context.Context, instanceID string) error {
	result := dao.DB.WithContext(ctx).Delete(&model.SystemInstance{}, "id = ?", instanceID)
	if result.Error != nil {
		return translate("delete instance", result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrInstanceNotFound
	}
	logger.Info("System instance deleted", zap.String("instanceID", instanceID))
	return nil
}

func (dao *ResourceDAO) CreateTier(ctx context.Context, tier *model.AccessTier) error {
	logger.Info("Creating access tier",
		zap.String("systemID", tier.SystemID),
		zap.String("name", tier.Name))
	if err := dao.DB.WithContext(ctx).Omit("System").Create(tier).Error; err != nil {
		logger.Error("Failed to create access tier", zap.Error(err))
		return translate("create tier", err, nil, af_errors.ErrTierConflict)
	}
	return nil
}

func (dao *ResourceDAO) GetTier(ctx context.Context, tierID string) (*model.AccessTier, error) {
	var tier model.AccessTier
	if err := dao.DB.WithContext(ctx).First(&tier, "id = ?", tierID).Error; err != nil {
		return nil, translate("get tier", err, af_errors.ErrTierNotFound, nil)
	}
	return &tier, nil
}

func (dao *ResourceDAO) GetTierByName(ctx context.Context, systemID, name string) (*model.AccessTier, error) {
	var tier model.AccessTier
	err := dao.DB.WithContext(ctx).First(&tier, "system_id = ? AND name = ?", systemID, name).Error
	if err != nil {
		return nil, translate("get tier by name", err, af_errors.ErrTierNotFound, nil)
	}
	return &tier, nil
}

func (dao *ResourceDAO) ListTiers(ctx context.Context, systemID string) ([]model.AccessTier, error) {
	var tiers []model.AccessTier
	if err := dao.DB.WithContext(ctx).Where("system_id = ?", systemID).Order("name").Find(&tiers).Error; err != nil {
		return nil, translate("list tiers", err, nil, nil)
	}
	return tiers, nil
}

func (dao *ResourceDAO) UpdateTier(ctx context.Context, tier *model.AccessTier) error {
	result := dao.DB.WithContext(ctx).Model(&model.AccessTier{ID: tier.ID}).
		Updates(map[string]interface{}{"name": tier.Name, "description": tier.Description})
	if result.Error != nil {
		return translate("update tier", result.Error, nil, af_errors.ErrTierConflict)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrTierNotFound
	}
	logger.Info("Access tier updated", zap.String("tierID", tier.ID))
	return nil
}

func (dao *ResourceDAO) DeleteTier(ctx context.Context, tierID string) error {
	result := dao.DB.WithContext(ctx).Delete(&model.AccessTier{}, "id = ?", tierID)
	if result.Error != nil {
		return translate("delete tier", result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrTierNotFound
	}
	logger.Info("Access tier deleted", zap.String("tierID", tierID))
	return nil
}
