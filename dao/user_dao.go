// dao/user_dao.go
package dao

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	af_errors "github.com/ucook/accessflow/errors"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
)

type UserDAO struct {
	DB *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{DB: db}
}

func (dao *UserDAO) CreateUser(ctx context.Context, user *model.User) error {
	start := time.Now()
	logger.Info("Creating new user", zap.String("email", user.Email))

	err := dao.DB.WithContext(ctx).Create(user).Error
	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
			zap.Duration("duration", duration))
		return translate("create user", err, nil, af_errors.ErrUserConflict)
	}

	logger.Info("User created successfully",
		zap.String("userID", user.ID),
		zap.Duration("duration", duration))
	return nil
}

func (dao *UserDAO) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := dao.DB.WithContext(ctx).Preload("Roles").First(&user, "id = ?", userID).Error
	if err != nil {
		return nil, translate("get user", err, af_errors.ErrUserNotFound, nil)
	}
	return &user, nil
}

// GetUserByEmail matches the canonical (lower-case) form of email.
func (dao *UserDAO) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := dao.DB.WithContext(ctx).Preload("Roles").
		First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, translate("get user by email", err, af_errors.ErrUserNotFound, nil)
	}
	return &user, nil
}

// GetManagerID includes tombstoned users so a cycle check sees the whole chain.
func (dao *UserDAO) GetManagerID(ctx context.Context, userID string) (*string, error) {
	var user model.User
	err := dao.DB.WithContext(ctx).Unscoped().Select("id", "manager_id").First(&user, "id = ?", userID).Error
	if err != nil {
		return nil, translate("get manager", err, af_errors.ErrUserNotFound, nil)
	}
	return user.ManagerID, nil
}

func (dao *UserDAO) ListUsers(ctx context.Context, criteria model.UserSearchCriteria, offset, limit int) ([]model.User, int64, error) {
	start := time.Now()
	query := dao.DB.WithContext(ctx).Model(&model.User{})
	if criteria.Search != "" {
		like := "%" + strings.ToLower(criteria.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if criteria.ManagerID != "" {
		query = query.Where("manager_id = ?", criteria.ManagerID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count users", err, nil, nil)
	}
	var users []model.User
	err := query.Preload("Roles").Order("name").Order("id").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, translate("list users", err, nil, nil)
	}

	logger.Debug("Users listed",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Duration("duration", time.Since(start)))
	return users, total, nil
}

func (dao *UserDAO) UpdateUser(ctx context.Context, user *model.User) error {
	start := time.Now()
	logger.Info("Updating user", zap.String("userID", user.ID))

	result := dao.DB.WithContext(ctx).Model(user).
		Select("name", "slack_id", "manager_id").
		Updates(map[string]interface{}{
			"name":       user.Name,
			"slack_id":   user.SlackID,
			"manager_id": user.ManagerID,
		})
	duration := time.Since(start)
	if result.Error != nil {
		logger.Error("Failed to update user",
			zap.Error(result.Error),
			zap.String("userID", user.ID),
			zap.Duration("duration", duration))
		return translate("update user", result.Error, af_errors.ErrUserNotFound, nil)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrUserNotFound
	}

	logger.Info("User updated successfully",
		zap.String("userID", user.ID),
		zap.Duration("duration", duration))
	return nil
}

// DeleteUser tombstones the user.
func (dao *UserDAO) DeleteUser(ctx context.Context, userID string) error {
	start := time.Now()
	logger.Info("Deleting user", zap.String("userID", userID))

	result := dao.DB.WithContext(ctx).Delete(&model.User{}, "id = ?", userID)
	duration := time.Since(start)
	if result.Error != nil {
		logger.Error("Failed to delete user",
			zap.Error(result.Error),
			zap.String("userID", userID),
			zap.Duration("duration", duration))
		return translate("delete user", result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return af_errors.ErrUserNotFound
	}

	logger.Info("User deleted successfully",
		zap.String("userID", userID),
		zap.Duration("duration", duration))
	return nil
}

func (dao *UserDAO) ListDirectReports(ctx context.Context, managerID string) ([]model.User, error) {
	var users []model.User
	err := dao.DB.WithContext(ctx).Where("manager_id = ?", managerID).Order("name").Find(&users).Error
	if err != nil {
		return nil, translate("list direct reports", err, nil, nil)
	}
	return users, nil
}

func (dao *UserDAO) CountDirectReports(ctx context.Context, managerID string) (int64, error) {
	var count int64
	err := dao.DB.WithContext(ctx).Model(&model.User{}).Where("manager_id = ?", managerID).Count(&count).Error
	if err != nil {
		return 0, translate("count direct reports", err, nil, nil)
	}
	return count, nil
}

func (dao *UserDAO) AddRole(ctx context.Context, userID string, role model.Role) error {
	err := dao.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserRole{UserID: userID, Role: role}).Error
	if err != nil {
		return translate("add role", err, nil, nil)
	}
	logger.Info("Role added", zap.String("userID", userID), zap.String("role", string(role)))
	return nil
}

func (dao *UserDAO) RemoveRole(ctx context.Context, userID string, role model.Role) error {
	err := dao.DB.WithContext(ctx).Where("user_id = ? AND role = ?", userID, role).Delete(&model.UserRole{}).Error
	if err != nil {
		return translate("remove role", err, nil, nil)
	}
	logger.Info("Role removed", zap.String("userID", userID), zap.String("role", string(role)))
	return nil
}
