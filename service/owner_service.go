// service/owner_service.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ucook/accessflow/audit"
	"github.com/ucook/accessflow/dao"
	af_errors "github.com/ucook/accessflow/errors"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/util"
)

// IOwnerService is the ownership registry: who may provision and remove
// grants for which system.
type IOwnerService interface {
	AddOwner(ctx context.Context, systemID, userID, actorID string) (*model.SystemOwner, error)
	RemoveOwner(ctx context.Context, systemID, userID, actorID string) error
	IsOwner(ctx context.Context, userID, systemID string) (bool, error)
	RequireOwner(ctx context.Context, userID, systemID string) error
	FindBySystem(ctx context.Context, systemID string) ([]model.SystemOwner, error)
	FindByUser(ctx context.Context, userID string) ([]model.SystemOwner, error)
	OwnedSystemIDs(ctx context.Context, userID string) ([]string, error)
}

type OwnerService struct {
	ownerDAO     *dao.OwnerDAO
	userDAO      *dao.UserDAO
	resourceDAO  *dao.ResourceDAO
	cacheService *util.CacheService
	auditService audit.Service
	eventBus     *util.EventBus
}

var _ IOwnerService = &OwnerService{}

func NewOwnerService(ownerDAO *dao.OwnerDAO, userDAO *dao.UserDAO, resourceDAO *dao.ResourceDAO, cacheService *util.CacheService, auditService audit.Service, eventBus *util.EventBus) *OwnerService {
	return &OwnerService{
		ownerDAO:     ownerDAO,
		userDAO:      userDAO,
		resourceDAO:  resourceDAO,
		cacheService: cacheService,
		auditService: auditService,
		eventBus:     eventBus,
	}
}

func (s *OwnerService) AddOwner(ctx context.Context, systemID, userID, actorID string) (*model.SystemOwner, error) {
	if _, err := s.resourceDAO.GetSystem(ctx, systemID); err != nil {
		return nil, err
	}
	if _, err := s.userDAO.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	owner := &model.SystemOwner{UserID: userID, SystemID: systemID}
	if err := s.ownerDAO.AddOwner(ctx, owner); err != nil {
		return nil, err
	}
	s.cacheService.DeleteOwnership(ctx, userID, systemID)

	s.auditService.LogAccess(ctx, audit.NewEntry(audit.ActionOwnerAdded, actorID, audit.ResourceOwner, owner.ID,
		map[string]interface{}{"systemId": systemID}).WithTarget(userID))
	s.eventBus.Publish(ctx, util.EventOwnerAdded, *owner)
	return owner, nil
}

func (s *OwnerService) RemoveOwner(ctx context.Context, systemID, userID, actorID string) error {
	if err := s.ownerDAO.RemoveOwner(ctx, userID, systemID); err != nil {
		return err
	}
	s.cacheService.DeleteOwnership(ctx, userID, systemID)

	s.auditService.LogAccess(ctx, audit.NewEntry(audit.ActionOwnerRemoved, actorID, audit.ResourceOwner, systemID,
		map[string]interface{}{"systemId": systemID}).WithTarget(userID))
	s.eventBus.Publish(ctx, util.EventOwnerRemoved, model.SystemOwner{UserID: userID, SystemID: systemID})
	return nil
}

// IsOwner consults the cache first and fills it on a miss.
func (s *OwnerService) IsOwner(ctx context.Context, userID, systemID string) (bool, error) {
	if isOwner, found := s.cacheService.GetOwnership(ctx, userID, systemID); found {
		return isOwner, nil
	}
	isOwner, err := s.ownerDAO.IsOwner(ctx, userID, systemID)
	if err != nil {
		return false, err
	}
	s.cacheService.SetOwnership(ctx, userID, systemID, isOwner)
	return isOwner, nil
}

func (s *OwnerService) RequireOwner(ctx context.Context, userID, systemID string) error {
	isOwner, err := s.IsOwner(ctx, userID, systemID)
	if err != nil {
		return err
	}
	if !isOwner {
		logger.Warn("Actor is not a system owner",
			zap.String("userID", userID),
			zap.String("systemID", systemID))
		return af_errors.ErrNotOwner
	}
	return nil
}

func (s *OwnerService) FindBySystem(ctx context.Context, systemID string) ([]model.SystemOwner, error) {
	if _, err := s.resourceDAO.GetSystem(ctx, systemID); err != nil {
		return nil, err
	}
	return s.ownerDAO.FindBySystem(ctx, systemID)
}

func (s *OwnerService) FindByUser(ctx context.Context, userID string) ([]model.SystemOwner, error) {
	return s.ownerDAO.FindByUser(ctx, userID)
}

func (s *OwnerService) OwnedSystemIDs(ctx context.Context, userID string) ([]string, error) {
	return s.ownerDAO.OwnedSystemIDs(ctx, userID)
}
