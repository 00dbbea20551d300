// service/resource_service.go
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ucook/accessflow/dao"
	af_errors "github.com/ucook/accessflow/errors"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/util"
)

// IResourceService manages the catalog of systems, instances and tiers.
type IResourceService interface {
	CreateSystem(ctx context.Context, input model.SystemInput) (*model.System, error)
	GetSystem(ctx context.Context, systemID string) (*model.System, error)
	ListSystems(ctx context.Context) ([]model.System, error)
	UpdateSystem(ctx context.Context, systemID string, input model.SystemInput) (*model.System, error)
	DeleteSystem(ctx context.Context, systemID string) error

	CreateInstance(ctx context.Context, systemID string, input model.InstanceInput) (*model.SystemInstance, error)
	ListInstances(ctx context.Context, systemID string) ([]model.SystemInstance, error)
	UpdateInstance(ctx context.Context, instanceID string, input model.InstanceInput) (*model.SystemInstance, error)
	DeleteInstance(ctx context.Context, instanceID string) error

	CreateTier(ctx context.Context, systemID string, input model.TierInput) (*model.AccessTier, error)
	ListTiers(ctx context.Context, systemID string) ([]model.AccessTier, error)
	UpdateTier(ctx context.Context, tierID string, input model.TierInput) (*model.AccessTier, error)
	DeleteTier(ctx context.Context, tierID string) error

	ResolvePair(ctx context.Context, instanceID, tierID string) (*model.SystemInstance, *model.AccessTier, error)
}

type ResourceService struct {
	resourceDAO    *dao.ResourceDAO
	validationUtil *util.ValidationUtil
}

var _ IResourceService = &ResourceService{}

func NewResourceService(resourceDAO *dao.ResourceDAO, validationUtil *util.ValidationUtil) *ResourceService {
	return &ResourceService{resourceDAO: resourceDAO, validationUtil: validationUtil}
}

func (s *ResourceService) CreateSystem(ctx context.Context, input model.SystemInput) (*model.System, error) {
	if err := s.validationUtil.ValidateSystem(input); err != nil {
		return nil, err
	}
	system := &model.System{Name: strings.TrimSpace(input.Name), Description: input.Description}
	if err := s.resourceDAO.CreateSystem(ctx, system); err != nil {
		return nil, err
	}
	return system, nil
}

func (s *ResourceService) GetSystem(ctx context.Context, systemID string) (*model.System, error) {
	return s.resourceDAO.GetSystem(ctx, systemID)
}

func (s *ResourceService) ListSystems(ctx context.Context) ([]model.System, error) {
	return s.resourceDAO.ListSystems(ctx)
}

func (s *ResourceService) UpdateSystem(ctx context.Context, systemID string, input model.SystemInput) (*model.System, error) {
	if err := s.validationUtil.ValidateSystem(input); err != nil {
		return nil, err
	}
	system := &model.System{ID: systemID, Name: strings.TrimSpace(input.Name), Description: input.Description}
	if err := s.resourceDAO.UpdateSystem(ctx, system); err != nil {
		return nil, err
	}
	return s.resourceDAO.GetSystem(ctx, systemID)
}

func (s *ResourceService) DeleteSystem(ctx context.Context, systemID string) error {
	return s.resourceDAO.DeleteSystem(ctx, systemID)
}

func (s *ResourceService) CreateInstance(ctx context.Context, systemID string, input model.InstanceInput) (*model.SystemInstance, error) {
	if err := s.validationUtil.ValidateInstance(input); err != nil {
		return nil, err
	}
	if _, err := s.resourceDAO.GetSystem(ctx, systemID); err != nil {
		return nil, err
	}
	instance := &model.SystemInstance{
		SystemID:    systemID,
		Name:        strings.TrimSpace(input.Name),
		Region:      input.Region,
		Environment: input.Environment,
	}
	if err := s.resourceDAO.CreateInstance(ctx, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

func (s *ResourceService) ListInstances(ctx context.Context, systemID string) ([]model.SystemInstance, error) {
	if _, err := s.resourceDAO.GetSystem(ctx, systemID); err != nil {
		return nil, err
	}
	return s.resourceDAO.ListInstances(ctx, systemID)
}

func (s *ResourceService) UpdateInstance(ctx context.Context, instanceID string, input model.InstanceInput) (*model.SystemInstance, error) {
	if err := s.validationUtil.ValidateInstance(input); err != nil {
		return nil, err
	}
	instance := &model.SystemInstance{
		ID:          instanceID,
		Name:        strings.TrimSpace(input.Name),
		Region:      input.Region,
		Environment: input.Environment,
	}
	if err := s.resourceDAO.UpdateInstance(ctx, instance); err != nil {
		return nil, err
	}
	return s.resourceDAO.GetInstance(ctx, instanceID)
}

func (s *ResourceService) DeleteInstance(ctx context.Context, instanceID string) error {
	return s.resourceDAO.DeleteInstance(ctx, instanceID)
}

func (s *ResourceService) CreateTier(ctx context.Context, systemID string, input model.TierInput) (*model.AccessTier, error) {
	if err := s.validationUtil.ValidateTier(input); err != nil {
		return nil, err
	}
	if _, err := s.resourceDAO.GetSystem(ctx, systemID); err != nil {
		return nil, err
	}
	tier := &model.AccessTier{SystemID: systemID, Name: strings.TrimSpace(input.Name), Description: input.Description}
	if err := s.resourceDAO.CreateTier(ctx, tier); err != nil {
		return nil, err
	}
	return tier, nil
}

func (s *ResourceService) ListTiers(ctx context.Context, systemID string) ([]model.AccessTier, error) {
	if _, err := s.resourceDAO.GetSystem(ctx, systemID); err != nil {
		return nil, err
	}
	return s.resourceDAO.ListTiers(ctx, systemID)
}

func (s *ResourceService) UpdateTier(ctx context.Context, tierID string, input model.TierInput) (*model.AccessTier, error) {
	if err := s.validationUtil.ValidateTier(input); err != nil {
		return nil, err
	}
	tier := &model.AccessTier{ID: tierID, Name: strings.TrimSpace(input.Name), Description: input.Description}
	if err := s.resourceDAO.UpdateTier(ctx, tier); err != nil {
		return nil, err
	}
	return s.resourceDAO.GetTier(ctx, tierID)
}

func (s *ResourceService) DeleteTier(ctx context.Context, tierID string) error {
	return s.resourceDAO.DeleteTier(ctx, tierID)
}

// ResolvePair loads an instance and a tier and checks they belong to the
// same system; the schema cannot express that constraint.
func (s *ResourceService) ResolvePair(ctx context.Context, instanceID, tierID string) (*model.SystemInstance, *model.AccessTier, error) {
	instance, err := s.resourceDAO.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, nil, err
	}
	tier, err := s.resourceDAO.GetTier(ctx, tierID)
	if err != nil {
		return nil, nil, err
	}
	if tier.SystemID != instance.SystemID {
		logger.Warn("Tier and instance belong to different systems",
			zap.String("instanceID", instanceID),
			zap.String("instanceSystemID", instance.SystemID),
			zap.String("tierID", tierID),
			zap.String("tierSystemID", tier.SystemID))
		return nil, nil, af_errors.ErrTierSystemMismatch
	}
	return instance, tier, nil
}
