// controller/audit_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ucook/accessflow/audit"
	"github.com/ucook/accessflow/util"
)

type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{auditService: auditService}
}

func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup, admin gin.HandlerFunc) {
	r.GET("/audit-logs", admin, ac.QueryLogs)
}

// QueryLogs filters by actorId, targetUserId, resourceType, resourceId,
// action and the from/to window.
func (ac *AuditController) QueryLogs(c *gin.Context) {
	var q audit.Query
	if !bindQuery(c, &q) {
		return
	}
	page, err := ac.auditService.QueryLogs(c, q)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
