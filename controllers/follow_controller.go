package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/services"
)

// FollowController serves the following feed and the follow/unfollow links.
type FollowController struct {
	feeds   *services.FeedService
	follows *services.FollowService
}

func NewFollowController(feeds *services.FeedService, follows *services.FollowService) *FollowController {
	return &FollowController{feeds: feeds, follows: follows}
}

// Index renders posts of followed authors.
func (f *FollowController) Index(ctx *gin.Context) {
	page, err := f.feeds.FollowingFeed(ctx.Request.Context(), middleware.GetUser(ctx), ctx.Query("page"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "follow.html", gin.H{"page_obj": page})
}

// Follow subscribes the viewer to the author and returns to the profile.
func (f *FollowController) Follow(ctx *gin.Context) {
	username := ctx.Param("username")
	if err := f.follows.Follow(ctx.Request.Context(), middleware.GetUser(ctx), username); err != nil {
		handleError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, "/profile/"+username+"/")
}

// Unfollow removes the subscription and returns to the profile.
func (f *FollowController) Unfollow(ctx *gin.Context) {
	username := ctx.Param("username")
	if err := f.follows.Unfollow(ctx.Request.Context(), middleware.GetUser(ctx), username); err != nil {
		handleError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, "/profile/"+username+"/")
}
