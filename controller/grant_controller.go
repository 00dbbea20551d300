// controller/grant_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	af_errors "github.com/ucook/accessflow/errors"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/service"
	"github.com/ucook/accessflow/util"
)

const csvFormField = "file"

type GrantController struct {
	grantService service.IGrantService
}

func NewGrantController(grantService service.IGrantService) *GrantController {
	return &GrantController{grantService: grantService}
}

// RegisterRoutes registers the grant ledger routes. Removal endpoints are
// open to any caller; the service requires system ownership.
func (gc *GrantController) RegisterRoutes(r *gin.RouterGroup, admin gin.HandlerFunc) {
	grants := r.Group("/grants")
	{
		grants.GET("", gc.ListGrants)
		grants.GET("/pending-removal", gc.FindPendingRemoval)
		grants.GET("/import/template", gc.CSVTemplate)
		grants.GET("/:id", gc.GetGrant)

		grants.POST("", admin, gc.CreateGrant)
		grants.POST("/bulk", admin, gc.BulkCreate)
		grants.POST("/import", admin, gc.ImportCSV)
		grants.PATCH("/:id/status", admin, gc.UpdateStatus)

		grants.POST("/:id/mark-to-remove", gc.MarkToRemove)
		grants.POST("/:id/mark-removed", gc.MarkRemoved)
		grants.POST("/:id/cancel-removal", gc.CancelRemoval)
		grants.POST("/bulk/mark-to-remove", gc.BulkMarkToRemove)
		grants.POST("/bulk/mark-removed", gc.BulkMarkRemoved)
	}
}

// ListGrants accepts every GrantFilter field as a query parameter.
func (gc *GrantController) ListGrants(c *gin.Context) {
	var filter model.GrantFilter
	if !bindQuery(c, &filter) {
		return
	}
	page, err := gc.grantService.FindAll(c, filter)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (gc *GrantController) GetGrant(c *gin.Context) {
	grant, err := gc.grantService.GetGrant(c, c.Param("id"))
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}

func (gc *GrantController) CreateGrant(c *gin.Context) {
	var input model.CreateGrantInput
	if !bindJSON(c, &input) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	grant, err := gc.grantService.CreateGrant(c, input, actor)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, grant)
}

func (gc *GrantController) UpdateStatus(c *gin.Context) {
	var input model.UpdateGrantStatusInput
	if !bindJSON(c, &input) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	grant, err := gc.grantService.UpdateStatus(c, c.Param("id"), input.Status, actor)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}

type grantAction func(*gin.Context, string, string) (*model.AccessGrant, error)

func (gc *GrantController) single(c *gin.Context, action grantAction) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	grant, err := action(c, c.Param("id"), actor)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}

func (gc *GrantController) MarkToRemove(c *gin.Context) {
	gc.single(c, func(c *gin.Context, id, actor string) (*model.AccessGrant, error) {
		return gc.grantService.MarkToRemove(c, id, actor)
	})
}

func (gc *GrantController) MarkRemoved(c *gin.Context) {
	gc.single(c, func(c *gin.Context, id, actor string) (*model.AccessGrant, error) {
		return gc.grantService.MarkRemoved(c, id, actor)
	})
}

func (gc *GrantController) CancelRemoval(c *gin.Context) {
	gc.single(c, func(c *gin.Context, id, actor string) (*model.AccessGrant, error) {
		return gc.grantService.CancelRemoval(c, id, actor)
	})
}

func (gc *GrantController) FindPendingRemoval(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	grants, err := gc.grantService.FindPendingRemoval(c, actor)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, grants)
}

// Bulk endpoints always answer 200 with a mixed-outcome report.

func (gc *GrantController) BulkMarkToRemove(c *gin.Context) {
	var input model.GrantIDsInput
	if !bindJSON(c, &input) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gc.grantService.BulkMarkToRemove(c, input.GrantIDs, actor))
}

func (gc *GrantController) BulkMarkRemoved(c *gin.Context) {
	var input model.GrantIDsInput
	if !bindJSON(c, &input) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gc.grantService.BulkMarkRemoved(c, input.GrantIDs, actor))
}

func (gc *GrantController) BulkCreate(c *gin.Context) {
	var input model.BulkGrantsInput
	if !bindJSON(c, &input) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gc.grantService.BulkCreate(c, input.Grants, actor))
}

// ImportCSV takes a multipart upload in the "file" field.
func (gc *GrantController) ImportCSV(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	header, err := c.FormFile(csvFormField)
	if err != nil {
		util.RespondWithDomainError(c, af_errors.BadRequest("A CSV file is required in the '%s' field", csvFormField))
		return
	}
	file, err := header.Open()
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Failed to open uploaded file", err)
		return
	}
	defer file.Close()

	report, err := gc.grantService.ImportCSV(c, file, actor)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (gc *GrantController) CSVTemplate(c *gin.Context) {
	data, err := gc.grantService.CSVTemplate()
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="grants-template.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
