// controller/user_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/service"
	"github.com/ucook/accessflow/util"
)

type UserController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// RegisterRoutes registers the API routes
func (uc *UserController) RegisterRoutes(r *gin.RouterGroup, admin gin.HandlerFunc) {
	r.GET("/me", uc.GetProfile)

	users := r.Group("/users")
	{
		users.GET("", uc.ListUsers)
		users.GET("/:id", uc.GetUser)
		users.GET("/:id/reports", uc.ListDirectReports)
		users.POST("", admin, uc.CreateUser)
		users.PUT("/:id", admin, uc.UpdateUser)
		users.DELETE("/:id", admin, uc.DeleteUser)
		users.PUT("/:id/manager", admin, uc.AssignManager)
		users.PUT("/:id/roles/:role", admin, uc.GrantRole)
		users.DELETE("/:id/roles/:role", admin, uc.RevokeRole)
	}
}

// GetProfile returns the caller, their roles and the systems they own.
func (uc *UserController) GetProfile(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	profile, err := uc.userService.GetProfile(c, userID)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// CreateUser endpoint
func (uc *UserController) CreateUser(c *gin.Context) {
	var input model.CreateUserInput
	if !bindJSON(c, &input) {
		return
	}
	creatorID, ok := actorID(c)
	if !ok {
		return
	}

	user, err := uc.userService.CreateUser(c, input, creatorID)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser endpoint
func (uc *UserController) UpdateUser(c *gin.Context) {
	var input model.UpdateUserInput
	if !bindJSON(c, &input) {
		return
	}
	updaterID, ok := actorID(c)
	if !ok {
		return
	}

	user, err := uc.userService.UpdateUser(c, c.Param("id"), input, updaterID)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser endpoint
func (uc *UserController) DeleteUser(c *gin.Context) {
	deleterID, ok := actorID(c)
	if !ok {
		return
	}
	if err := uc.userService.DeleteUser(c, c.Param("id"), deleterID); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUser endpoint
func (uc *UserController) GetUser(c *gin.Context) {
	user, err := uc.userService.GetUser(c, c.Param("id"))
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers supports ?search=, ?managerId=, ?page= and ?limit=.
func (uc *UserController) ListUsers(c *gin.Context) {
	var criteria model.UserSearchCriteria
	if !bindQuery(c, &criteria) {
		return
	}
	users, err := uc.userService.ListUsers(c, criteria)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (uc *UserController) ListDirectReports(c *gin.Context) {
	reports, err := uc.userService.ListDirectReports(c, c.Param("id"))
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// AssignManager sets the manager; a null or empty managerId clears it.
func (uc *UserController) AssignManager(c *gin.Context) {
	var input model.AssignManagerInput
	if !bindJSON(c, &input) {
		return
	}
	assignerID, ok := actorID(c)
	if !ok {
		return
	}
	user, err := uc.userService.AssignManager(c, c.Param("id"), input.ManagerID, assignerID)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) GrantRole(c *gin.Context) {
	if err := uc.userService.GrantRole(c, c.Param("id"), model.Role(c.Param("role"))); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (uc *UserController) RevokeRole(c *gin.Context) {
	if err := uc.userService.RevokeRole(c, c.Param("id"), model.Role(c.Param("role"))); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
