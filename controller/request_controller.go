// controller/request_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/service"
	"github.com/ucook/accessflow/util"
)

type RequestController struct {
	requestService service.IRequestService
}

func NewRequestController(requestService service.IRequestService) *RequestController {
	return &RequestController{requestService: requestService}
}

func (rc *RequestController) RegisterRoutes(r *gin.RouterGroup, admin gin.HandlerFunc) {
	requests := r.Group("/requests")
	{
		requests.POST("", rc.CreateRequest)
		requests.GET("", admin, rc.ListRequests)
		requests.GET("/mine", rc.FindMine)
		requests.GET("/pending-approval", rc.FindPendingForManager)
		requests.POST("/copy", rc.CopyGrants)
		requests.GET("/:id", rc.GetRequest)
		requests.POST("/:id/approve", rc.ApproveRequest)
		requests.POST("/:id/reject", rc.RejectRequest)
	}
	items := r.Group("/request-items")
	{
		items.GET("/pending-provisioning", rc.FindPendingProvisioning)
		items.POST("/bulk-provision", rc.BulkProvision)
		items.POST("/:id/approve", rc.ApproveItem)
		items.POST("/:id/reject", rc.RejectItem)
		items.POST("/:id/provision", rc.ProvisionItem)
	}
}

func (rc *RequestController) CreateRequest(c *gin.Context) {
	var input model.CreateRequestInput
	if !bindJSON(c, &input) {
		return
	}
	requester, ok := actorID(c)
	if !ok {
		return
	}
	request, err := rc.requestService.CreateRequest(c, input, requester)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (rc *RequestController) ListRequests(c *gin.Context) {
	var filter model.RequestFilter
	if !bindQuery(c, &filter) {
		return
	}
	page, err := rc.requestService.FindAll(c, filter)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (rc *RequestController) FindMine(c *gin.Context) {
	var filter model.RequestFilter
	if !bindQuery(c, &filter) {
		return
	}
	requester, ok := actorID(c)
	if !ok {
		return
	}
	page, err := rc.requestService.FindMine(c, requester, filter)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (rc *RequestController) GetRequest(c *gin.Context) {
	request, err := rc.requestService.GetRequest(c, c.Param("id"))
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (rc *RequestController) ApproveRequest(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	request, err := rc.requestService.ApproveRequest(c, c.Param("id"), actor)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// rejectReason reads an optional {"reason": "..."} body.
func rejectReason(c *gin.Context) (*string, bool) {
	var input model.RejectInput
	if c.Request.ContentLength == 0 {
		return nil, true
	}
	if !bindJSON(c, &input) {
		return nil, false
	}
	return input.Reason, true
}

func (rc *RequestController) RejectRequest(c *gin.Context) {
	reason, ok := rejectReason(c)
	if !ok {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	request, err := rc.requestService.RejectRequest(c, c.Param("id"), actor, reason)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (rc *RequestController) FindPendingForManager(c *gin.Context) {
	manager, ok := actorID(c)
	if !ok {
		return
	}
	requests, err := rc.requestService.FindPendingForManager(c, manager)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (rc *RequestController) ApproveItem(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	item, err := rc.requestService.ApproveItem(c, c.Param("id"), actor)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (rc *RequestController) RejectItem(c *gin.Context) {
	reason, ok := rejectReason(c)
	if !ok {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	item, err := rc.requestService.RejectItem(c, c.Param("id"), actor, reason)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (rc *RequestController) ProvisionItem(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	item, err := rc.requestService.ProvisionItem(c, c.Param("id"), actor)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (rc *RequestController) FindPendingProvisioning(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		return
	}
	items, err := rc.requestService.FindPendingProvisioning(c, owner)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (rc *RequestController) BulkProvision(c *gin.Context) {
	var input model.ItemIDsInput
	if !bindJSON(c, &input) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rc.requestService.BulkProvision(c, input.ItemIDs, actor))
}

func (rc *RequestController) CopyGrants(c *gin.Context) {
	var input model.CopyGrantsInput
	if !bindJSON(c, &input) {
		return
	}
	requester, ok := actorID(c)
	if !ok {
		return
	}
	report, err := rc.requestService.CopyGrantsFromUser(c, input, requester)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
