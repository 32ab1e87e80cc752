package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/services"
	"github.com/cppla/yatube/utils"
)

// AdminController exposes group and user management as a JSON API.
type AdminController struct {
	groups   *services.GroupService
	accounts *services.AccountService
}

func NewAdminController(groups *services.GroupService, accounts *services.AccountService) *AdminController {
	return &AdminController{groups: groups, accounts: accounts}
}

// ListGroups returns every group ordered by slug.
func (a *AdminController) ListGroups(ctx *gin.Context) {
	groups, err := a.groups.List(ctx.Request.Context())
	if err != nil {
		utils.Sugar.Errorf("list groups: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to list groups")
		return
	}
	utils.Success(ctx, gin.H{"items": groups, "total": len(groups)})
}

// CreateGroup adds a group from a JSON body.
func (a *AdminController) CreateGroup(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Slug        string `json:"slug" binding:"required"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	group, err := a.groups.Create(ctx.Request.Context(), services.GroupForm{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	})
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		utils.Respond(ctx, http.StatusBadRequest, 40021, verr.Message, gin.H{"field": verr.Field})
		return
	}
	if err != nil {
		utils.Sugar.Errorf("create group: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to create group")
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", group)
}

// DeleteGroup removes a group; its posts lose their group.
func (a *AdminController) DeleteGroup(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid group id")
		return
	}
	if err := a.groups.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "group not found")
			return
		}
		utils.Sugar.Errorf("delete group %d: %v", id, err)
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to delete group")
		return
	}
	utils.Success(ctx, gin.H{"deleted": id})
}

// DeleteUser removes a user with their posts, comments and follows.
func (a *AdminController) DeleteUser(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid user id")
		return
	}
	if err := a.accounts.DeleteUser(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "user not found")
			return
		}
		utils.Sugar.Errorf("delete user %d: %v", id, err)
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to delete user")
		return
	}
	utils.Success(ctx, gin.H{"deleted": id})
}
