// controller/owner_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/service"
	"github.com/ucook/accessflow/util"
)

type OwnerController struct {
	ownerService service.IOwnerService
}

func NewOwnerController(ownerService service.IOwnerService) *OwnerController {
	return &OwnerController{ownerService: ownerService}
}

func (oc *OwnerController) RegisterRoutes(r *gin.RouterGroup, admin gin.HandlerFunc) {
	r.GET("/systems/:id/owners", oc.ListOwners)
	r.POST("/systems/:id/owners", admin, oc.AddOwner)
	r.DELETE("/systems/:id/owners/:userId", admin, oc.RemoveOwner)
	r.GET("/users/:id/owned-systems", oc.ListOwnedSystems)
}

func (oc *OwnerController) ListOwners(c *gin.Context) {
	owners, err := oc.ownerService.FindBySystem(c, c.Param("id"))
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, owners)
}

func (oc *OwnerController) AddOwner(c *gin.Context) {
	var input model.OwnerInput
	if !bindJSON(c, &input) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	owner, err := oc.ownerService.AddOwner(c, c.Param("id"), input.UserID, actor)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, owner)
}

func (oc *OwnerController) RemoveOwner(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	if err := oc.ownerService.RemoveOwner(c, c.Param("id"), c.Param("userId"), actor); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (oc *OwnerController) ListOwnedSystems(c *gin.Context) {
	owners, err := oc.ownerService.FindByUser(c, c.Param("id"))
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, owners)
}
