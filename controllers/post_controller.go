package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/services"
)

// maxUploadSize bounds an uploaded post image.
const maxUploadSize = 10 << 20

// PostController serves the feeds and the post create, edit and comment pages.
type PostController struct {
	feeds   *services.FeedService
	posts   *services.PostService
	follows *services.FollowService
	groups  *services.GroupService
}

// NewPostController creates a new PostController instance.
func NewPostController(feeds *services.FeedService, posts *services.PostService, follows *services.FollowService, groups *services.GroupService) *PostController {
	return &PostController{feeds: feeds, posts: posts, follows: follows, groups: groups}
}

// postFormView is what the create/edit template shows.
type postFormView struct {
	Text    string
	GroupID uint
	Image   string
	Errors  map[string]string
}

// Index renders the global feed.
func (p *PostController) Index(ctx *gin.Context) {
	page, err := p.feeds.GlobalFeed(ctx.Request.Context(), ctx.Query("page"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "index.html", gin.H{"page_obj": page})
}

// GroupPosts renders the feed of one group.
func (p *PostController) GroupPosts(ctx *gin.Context) {
	group, page, err := p.feeds.GroupFeed(ctx.Request.Context(), ctx.Param("slug"), ctx.Query("page"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "group_list.html", gin.H{"group": group, "page_obj": page})
}

// Profile renders an author's posts and whether the viewer follows them.
func (p *PostController) Profile(ctx *gin.Context) {
	author, page, err := p.feeds.ProfileFeed(ctx.Request.Context(), ctx.Param("username"), ctx.Query("page"))
	if err != nil {
		handleError(ctx, err)
		return
	}
	following, err := p.follows.IsFollowing(ctx.Request.Context(), middleware.GetUser(ctx), author)
	if err != nil {
		handleError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "profile.html", gin.H{"author": author, "page_obj": page, "following": following})
}

// PostDetail renders one post with its comments.
func (p *PostController) PostDetail(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return
	}
	detail, err := p.posts.GetPost(ctx.Request.Context(), id)
	if err != nil {
		handleError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "post_detail.html", gin.H{
		"post":        detail.Post,
		"comments":    detail.Comments,
		"posts_count": detail.AuthorPosts,
		"views":       detail.Views,
	})
}

// CreateForm renders an empty post form.
func (p *PostController) CreateForm(ctx *gin.Context) {
	p.renderForm(ctx, http.StatusOK, postFormView{}, false, "/create/")
}

// CreatePost validates the form and redirects to the author's profile.
func (p *PostController) CreatePost(ctx *gin.Context) {
	user := middleware.GetUser(ctx)
	form, view, err := readPostForm(ctx)
	if err == nil {
		_, err = p.posts.CreatePost(ctx.Request.Context(), user, form)
	}
	if errs, ok := fieldErrors(err); ok {
		view.Errors = errs
		p.renderForm(ctx, http.StatusOK, view, false, "/create/")
		return
	}
	if err != nil {
		handleError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

// EditForm renders the form prefilled with the post. Non-authors go back to the post.
func (p *PostController) EditForm(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return
	}
	detail, err := p.posts.GetPost(ctx.Request.Context(), id)
	if err != nil {
		handleError(ctx, err)
		return
	}
	post := detail.Post
	if user := middleware.GetUser(ctx); user == nil || user.ID != post.AuthorID {
		ctx.Redirect(http.StatusFound, postURL(post.ID))
		return
	}
	view := postFormView{Text: post.Text, Image: post.Image}
	if post.GroupID != nil {
		view.GroupID = *post.GroupID
	}
	p.renderForm(ctx, http.StatusOK, view, true, postURL(post.ID)+"edit/")
}

// EditPost applies the form when the viewer is the author.
func (p *PostController) EditPost(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return
	}
	form, view, err := readPostForm(ctx)
	if err == nil {
		_, err = p.posts.EditPost(ctx.Request.Context(), middleware.GetUser(ctx), id, form)
	}
	if errs, ok := fieldErrors(err); ok {
		detail, derr := p.posts.GetPost(ctx.Request.Context(), id)
		if derr != nil {
			handleError(ctx, derr)
			return
		}
		// form parsing fails before the ownership check in the service
		if detail.Post.AuthorID != middleware.GetUser(ctx).ID {
			ctx.Redirect(http.StatusFound, postURL(id))
			return
		}
		view.Image = detail.Post.Image
		view.Errors = errs
		p.renderForm(ctx, http.StatusOK, view, true, postURL(id)+"edit/")
		return
	}
	if errors.Is(err, services.ErrForbidden) {
		ctx.Redirect(http.StatusFound, postURL(id))
		return
	}
	if err != nil {
		handleError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, postURL(id))
}

// AddComment stores a comment and always returns to the post.
func (p *PostController) AddComment(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return
	}
	_, err := p.posts.CreateComment(ctx.Request.Context(), middleware.GetUser(ctx), id, ctx.PostForm("text"))
	if _, invalid := fieldErrors(err); err != nil && !invalid {
		handleError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, postURL(id))
}

func (p *PostController) renderForm(ctx *gin.Context, status int, view postFormView, isEdit bool, action string) {
	groups, err := p.groups.List(ctx.Request.Context())
	if err != nil {
		handleError(ctx, err)
		return
	}
	render(ctx, status, "create_post.html", gin.H{
		"form":    view,
		"groups":  groups,
		"is_edit": isEdit,
		"action":  action,
	})
}

// readPostForm parses text, group and image fields. A malformed group id or an oversized
// upload yields a ValidationError so the form is shown again.
func readPostForm(ctx *gin.Context) (services.PostForm, postFormView, error) {
	form := services.PostForm{
		Text:       ctx.PostForm("text"),
		ClearImage: ctx.PostForm("image-clear") != "",
	}
	view := postFormView{Text: form.Text}

	if raw := strings.TrimSpace(ctx.PostForm("group")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return form, view, &services.ValidationError{Field: "group", Message: "Select a valid choice. That choice is not one of the available choices."}
		}
		gid := uint(id)
		form.GroupID = &gid
		view.GroupID = gid
	}

	fh, err := ctx.FormFile("image")
	if err != nil {
		// no file part
		return form, view, nil
	}
	if fh.Size > maxUploadSize {
		return form, view, &services.ValidationError{Field: "image", Message: fmt.Sprintf("The image must be at most %d MB.", maxUploadSize>>20)}
	}
	f, err := fh.Open()
	if err != nil {
		return form, view, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		return form, view, err
	}
	form.Image = &services.ImageUpload{Filename: fh.Filename, Data: data}
	return form, view, nil
}

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}
