// controller/resource_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/service"
	"github.com/ucook/accessflow/util"
)

// ResourceController serves the catalog: systems with their instances and tiers.
type ResourceController struct {
	resourceService service.IResourceService
}

func NewResourceController(resourceService service.IResourceService) *ResourceController {
	return &ResourceController{
		resourceService: resourceService,
	}
}

// RegisterRoutes registers the API routes for catalog management
func (rc *ResourceController) RegisterRoutes(r *gin.RouterGroup, admin gin.HandlerFunc) {
	systems := r.Group("/systems")
	{
		systems.GET("", rc.ListSystems)
		systems.GET("/:id", rc.GetSystem)
		systems.POST("", admin, rc.CreateSystem)
		systems.PUT("/:id", admin, rc.UpdateSystem)
		systems.DELETE("/:id", admin, rc.DeleteSystem)

		systems.GET("/:id/instances", rc.ListInstances)
		systems.POST("/:id/instances", admin, rc.CreateInstance)
		systems.GET("/:id/tiers", rc.ListTiers)
		systems.POST("/:id/tiers", admin, rc.CreateTier)
	}
	r.PUT("/instances/:id", admin, rc.UpdateInstance)
	r.DELETE("/instances/:id", admin, rc.DeleteInstance)
	r.PUT("/tiers/:id", admin, rc.UpdateTier)
	r.DELETE("/tiers/:id", admin, rc.DeleteTier)
}

func (rc *ResourceController) ListSystems(c *gin.Context) {
	systems, err := rc.resourceService.ListSystems(c)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, systems)
}

func (rc *ResourceController) GetSystem(c *gin.Context) {
	system, err := rc.resourceService.GetSystem(c, c.Param("id"))
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, system)
}

func (rc *ResourceController) CreateSystem(c *gin.Context) {
	var input model.SystemInput
	if !bindJSON(c, &input) {
		return
	}
	system, err := rc.resourceService.CreateSystem(c, input)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, system)
}

func (rc *ResourceController) UpdateSystem(c *gin.Context) {
	var input model.SystemInput
	if !bindJSON(c, &input) {
		return
	}
	system, err := rc.resourceService.UpdateSystem(c, c.Param("id"), input)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, system)
}

func (rc *ResourceController) DeleteSystem(c *gin.Context) {
	if err := rc.resourceService.DeleteSystem(c, c.Param("id")); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rc *ResourceController) ListInstances(c *gin.Context) {
	instances, err := rc.resourceService.ListInstances(c, c.Param("id"))
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, instances)
}

func (rc *ResourceController) CreateInstance(c *gin.Context) {
	var input model.InstanceInput
	if !bindJSON(c, &input) {
		return
	}
	instance, err := rc.resourceService.CreateInstance(c, c.Param("id"), input)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, instance)
}

func (rc *ResourceController) UpdateInstance(c *gin.Context) {
	var input model.InstanceInput
	if !bindJSON(c, &input) {
		return
	}
	instance, err := rc.resourceService.UpdateInstance(c, c.Param("id"), input)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, instance)
}

func (rc *ResourceController) DeleteInstance(c *gin.Context) {
	if err := rc.resourceService.DeleteInstance(c, c.Param("id")); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rc *ResourceController) ListTiers(c *gin.Context) {
	tiers, err := rc.resourceService.ListTiers(c, c.Param("id"))
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, tiers)
}

func (rc *ResourceController) CreateTier(c *gin.Context) {
	var input model.TierInput
	if !bindJSON(c, &input) {
		return
	}
	tier, err := rc.resourceService.CreateTier(c, c.Param("id"), input)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tier)
}

func (rc *ResourceController) UpdateTier(c *gin.Context) {
	var input model.TierInput
	if !bindJSON(c, &input) {
		return
	}
	tier, err := rc.resourceService.UpdateTier(c, c.Param("id"), input)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, tier)
}

func (rc *ResourceController) DeleteTier(c *gin.Context) {
	if err := rc.resourceService.DeleteTier(c, c.Param("id")); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
