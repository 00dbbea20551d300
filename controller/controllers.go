// controller/controllers.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ucook/accessflow/service"
	"github.com/ucook/accessflow/util"
)

type Controllers struct {
	User     *UserController
	Resource *ResourceController
	Owner    *OwnerController
	Grant    *GrantController
	Request  *RequestController
	Audit    *AuditController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		User:     NewUserController(services.User),
		Resource: NewResourceController(services.Resource),
		Owner:    NewOwnerController(services.Owner),
		Grant:    NewGrantController(services.Grant),
		Request:  NewRequestController(services.Request),
		Audit:    NewAuditController(services.Audit),
	}
}

// RegisterRoutes mounts every controller on r. admin guards the
// administrative endpoints.
func (cs *Controllers) RegisterRoutes(r *gin.RouterGroup, admin gin.HandlerFunc) {
	cs.User.RegisterRoutes(r, admin)
	cs.Resource.RegisterRoutes(r, admin)
	cs.Owner.RegisterRoutes(r, admin)
	cs.Grant.RegisterRoutes(r, admin)
	cs.Request.RegisterRoutes(r, admin)
	cs.Audit.RegisterRoutes(r, admin)
}

// actorID returns the authenticated caller or writes a 401.
func actorID(c *gin.Context) (string, bool) {
	id, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return "", false
	}
	return id, true
}

// bindJSON decodes the body into v or writes a 400.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindQuery(v); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err)
		return false
	}
	return true
}
