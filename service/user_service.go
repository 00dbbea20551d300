// service/user_service.go
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ucook/accessflow/audit"
	"github.com/ucook/accessflow/dao"
	af_errors "github.com/ucook/accessflow/errors"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/util"
	helper_util "github.com/ucook/accessflow/util/helper"
)

// maxManagerDepth bounds the walk up the manager chain.
const maxManagerDepth = 64

// IUserService defines the interface for identity operations
type IUserService interface {
	CreateUser(ctx context.Context, input model.CreateUserInput, actorID string) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	EnsureUser(ctx context.Context, email string) (*model.User, bool, error)
	ListUsers(ctx context.Context, criteria model.UserSearchCriteria) (*model.PageResult[model.User], error)
	UpdateUser(ctx context.Context, userID string, input model.UpdateUserInput, actorID string) (*model.User, error)
	DeleteUser(ctx context.Context, userID string, actorID string) error
	AssignManager(ctx context.Context, userID string, managerID *string, actorID string) (*model.User, error)
	ListDirectReports(ctx context.Context, managerID string) ([]model.User, error)
	GrantRole(ctx context.Context, userID string, role model.Role) error
	RevokeRole(ctx context.Context, userID string, role model.Role) error
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
}

type UserService struct {
	userDAO        *dao.UserDAO
	ownerDAO       *dao.OwnerDAO
	validationUtil *util.ValidationUtil
	auditService   audit.Service
}

var _ IUserService = &UserService{}

func NewUserService(userDAO *dao.UserDAO, ownerDAO *dao.OwnerDAO, validationUtil *util.ValidationUtil, auditService audit.Service) *UserService {
	return &UserService{
		userDAO:        userDAO,
		ownerDAO:       ownerDAO,
		validationUtil: validationUtil,
		auditService:   auditService,
	}
}

func (s *UserService) CreateUser(ctx context.Context, input model.CreateUserInput, actorID string) (*model.User, error) {
	if err := s.validationUtil.ValidateCreateUser(input); err != nil {
		return nil, err
	}
	user := &model.User{
		Email:   util.CanonicalEmail(input.Email),
		Name:    strings.TrimSpace(input.Name),
		SlackID: strings.TrimSpace(input.SlackID),
	}
	if input.ManagerID != nil && *input.ManagerID != "" {
		if _, err := s.userDAO.GetUser(ctx, *input.ManagerID); err != nil {
			return nil, managerLookupError(err)
		}
		user.ManagerID = input.ManagerID
	}

	if err := s.userDAO.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	logger.Info("User created", zap.String("userID", user.ID), zap.String("actorID", actorID))
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.userDAO.GetUser(ctx, userID)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userDAO.GetUserByEmail(ctx, util.CanonicalEmail(email))
}

// EnsureUser returns the user with email, creating one named after the
// email's local part when none exists. The bool reports creation.
func (s *UserService) EnsureUser(ctx context.Context, email string) (*model.User, bool, error) {
	email = util.CanonicalEmail(email)
	user, err := s.userDAO.GetUserByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !af_errors.IsNotFound(err) {
		return nil, false, err
	}
	if err := s.validationUtil.ValidateEmail(email); err != nil {
		return nil, false, err
	}

	user = &model.User{Email: email, Name: helper_util.NameFromEmail(email)}
	if err := s.userDAO.CreateUser(ctx, user); err != nil {
		// a concurrent import may have created the same user
		if af_errors.IsConflict(err) {
			existing, getErr := s.userDAO.GetUserByEmail(ctx, email)
			if af_errors.IsNotFound(getErr) {
				return nil, false, af_errors.Unprocessable("User %s has been deleted", email)
			}
			return existing, false, getErr
		}
		return nil, false, err
	}
	logger.Info("User auto-provisioned", zap.String("userID", user.ID), zap.String("email", email))
	return user, true, nil
}

func (s *UserService) ListUsers(ctx context.Context, criteria model.UserSearchCriteria) (*model.PageResult[model.User], error) {
	page, limit := normalizePage(criteria.Page, criteria.Limit)
	users, total, err := s.userDAO.ListUsers(ctx, criteria, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &model.PageResult[model.User]{Data: users, Total: total, Page: page, Limit: limit}, nil
}

func (s *UserService) UpdateUser(ctx context.Context, userID string, input model.UpdateUserInput, actorID string) (*model.User, error) {
	user, err := s.userDAO.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, af_errors.BadRequest("User name cannot be empty")
		}
		user.Name = name
	}
	if input.SlackID != nil {
		user.SlackID = strings.TrimSpace(*input.SlackID)
	}
	if err := s.userDAO.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	logger.Info("User updated", zap.String("userID", userID), zap.String("actorID", actorID))
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, userID string, actorID string) error {
	if err := s.userDAO.DeleteUser(ctx, userID); err != nil {
		return err
	}
	logger.Info("User tombstoned", zap.String("userID", userID), zap.String("actorID", actorID))
	return nil
}

// AssignManager sets or clears userID's manager. The new chain must not
// lead back to userID.
func (s *UserService) AssignManager(ctx context.Context, userID string, managerID *string, actorID string) (*model.User, error) {
	user, err := s.userDAO.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if managerID != nil && *managerID == "" {
		managerID = nil
	}
	if managerID != nil {
		if *managerID == userID {
			return nil, af_errors.ErrSelfManager
		}
		if _, err := s.userDAO.GetUser(ctx, *managerID); err != nil {
			return nil, managerLookupError(err)
		}
		if err := s.checkManagerCycle(ctx, userID, *managerID); err != nil {
			return nil, err
		}
	}

	user.ManagerID = managerID
	if err := s.userDAO.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	details := map[string]interface{}{"managerId": managerID}
	s.auditService.LogAccess(ctx, audit.NewEntry(audit.ActionManagerAssigned, actorID, audit.ResourceUser, userID, details).WithTarget(userID))
	logger.Info("Manager assigned",
		zap.String("userID", userID),
		zap.Stringp("managerID", managerID))
	return user, nil
}

// checkManagerCycle walks up from managerID with a visited set. Reaching
// userID, revisiting a node or exceeding maxManagerDepth is rejected.
func (s *UserService) checkManagerCycle(ctx context.Context, userID, managerID string) error {
	visited := map[string]bool{userID: true}
	current := managerID
	for depth := 0; depth < maxManagerDepth; depth++ {
		if visited[current] {
			return af_errors.ErrManagerCycle
		}
		visited[current] = true

		next, err := s.userDAO.GetManagerID(ctx, current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		current = *next
	}
	return af_errors.BadRequest("Manager chain exceeds %d levels", maxManagerDepth)
}

func (s *UserService) ListDirectReports(ctx context.Context, managerID string) ([]model.User, error) {
	if _, err := s.userDAO.GetUser(ctx, managerID); err != nil {
		return nil, err
	}
	return s.userDAO.ListDirectReports(ctx, managerID)
}

func (s *UserService) GrantRole(ctx context.Context, userID string, role model.Role) error {
	if role != model.RoleAdmin {
		return af_errors.BadRequest("Unknown role '%s'", role)
	}
	if _, err := s.userDAO.GetUser(ctx, userID); err != nil {
		return err
	}
	return s.userDAO.AddRole(ctx, userID, role)
}

func (s *UserService) RevokeRole(ctx context.Context, userID string, role model.Role) error {
	return s.userDAO.RemoveRole(ctx, userID, role)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var (
		user    *model.User
		owned   []model.SystemOwner
		reports int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		user, err = s.userDAO.GetUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		owned, err = s.ownerDAO.FindByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		reports, err = s.userDAO.CountDirectReports(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profile := &model.Profile{
		User:         user,
		Roles:        []model.Role{},
		OwnedSystems: []model.System{},
		IsManager:    reports > 0,
	}
	for _, r := range user.Roles {
		profile.Roles = append(profile.Roles, r.Role)
	}
	for _, o := range owned {
		if o.System != nil {
			profile.OwnedSystems = append(profile.OwnedSystems, *o.System)
		}
	}
	return profile, nil
}

func managerLookupError(err error) error {
	if af_errors.IsNotFound(err) {
		return af_errors.ErrManagerNotFound
	}
	return err
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = model.DefaultPageLimit
	}
	if limit > model.MaxPageLimit {
		limit = model.MaxPageLimit
	}
	return page, limit
}
