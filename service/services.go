// service/services.go
package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ucook/accessflow/audit"
	"github.com/ucook/accessflow/dao"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/util"
)

type Services struct {
	User     IUserService
	Resource IResourceService
	Owner    IOwnerService
	Grant    IGrantService
	Request  IRequestService
	Audit    audit.Service
}

// Options carries the non-database collaborators. A nil Notifier falls back
// to the log notifier.
type Options struct {
	AuditService   audit.Service
	ValidationUtil *util.ValidationUtil
	CacheService   *util.CacheService
	Notifier       util.Notifier
	EventBus       *util.EventBus
	BaseURL        string
	CSVLimits      CSVLimits
}

func InitializeServices(gdb *gorm.DB, opts Options) (*Services, error) {
	userDAO := dao.NewUserDAO(gdb)
	resourceDAO := dao.NewResourceDAO(gdb)
	ownerDAO := dao.NewOwnerDAO(gdb)
	grantDAO := dao.NewGrantDAO(gdb)
	requestDAO := dao.NewRequestDAO(gdb)

	if opts.AuditService == nil {
		opts.AuditService = audit.NewService(audit.NewGormRepository(gdb))
	}
	if opts.ValidationUtil == nil {
		opts.ValidationUtil = util.NewValidationUtil()
	}
	if opts.Notifier == nil {
		opts.Notifier = util.NewLogNotifier()
	}
	if opts.CacheService == nil {
		opts.CacheService = util.NewCacheService(nil, time.Minute)
	}

	userService := NewUserService(userDAO, ownerDAO, opts.ValidationUtil, opts.AuditService)
	resourceService := NewResourceService(resourceDAO, opts.ValidationUtil)
	ownerService := NewOwnerService(ownerDAO, userDAO, resourceDAO, opts.CacheService, opts.AuditService, opts.EventBus)
	grantService := NewGrantService(GrantServiceDeps{
		GrantDAO:        grantDAO,
		UserDAO:         userDAO,
		ResourceDAO:     resourceDAO,
		ResourceService: resourceService,
		OwnerService:    ownerService,
		UserService:     userService,
		ValidationUtil:  opts.ValidationUtil,
		Notifier:        opts.Notifier,
		AuditService:    opts.AuditService,
		EventBus:        opts.EventBus,
		BaseURL:         opts.BaseURL,
		CSVLimits:       opts.CSVLimits,
	})
	requestService := NewRequestService(RequestServiceDeps{
		RequestDAO:      requestDAO,
		UserDAO:         userDAO,
		GrantDAO:        grantDAO,
		ResourceService: resourceService,
		OwnerService:    ownerService,
		GrantService:    grantService,
		ValidationUtil:  opts.ValidationUtil,
		Notifier:        opts.Notifier,
		AuditService:    opts.AuditService,
		EventBus:        opts.EventBus,
		BaseURL:         opts.BaseURL,
	})

	return &Services{
		User:     userService,
		Resource: resourceService,
		Owner:    ownerService,
		Grant:    grantService,
		Request:  requestService,
		Audit:    opts.AuditService,
	}, nil
}

// Directory resolves notification recipients from the database.
type Directory struct {
	userDAO  *dao.UserDAO
	ownerDAO *dao.OwnerDAO
}

var _ util.Directory = &Directory{}

func NewDirectory(gdb *gorm.DB) *Directory {
	return &Directory{userDAO: dao.NewUserDAO(gdb), ownerDAO: dao.NewOwnerDAO(gdb)}
}

func (d *Directory) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return d.userDAO.GetUser(ctx, userID)
}

func (d *Directory) OwnersOfSystem(ctx context.Context, systemID string) ([]model.User, error) {
	owners, err := d.ownerDAO.FindBySystem(ctx, systemID)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(owners))
	for _, owner := range owners {
		if owner.User != nil {
			users = append(users, *owner.User)
		}
	}
	return users, nil
}
