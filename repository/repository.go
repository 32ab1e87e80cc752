package repository

import (
	"context"
	"time"

	"github.com/cppla/yatube/models"
)

// Lookups return gorm.ErrRecordNotFound (possibly wrapped) when no row matches.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Delete removes the user together with their posts, comments and follow edges.
	Delete(ctx context.Context, id uint) error
}

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
	// Delete removes the group and detaches its posts.
	Delete(ctx context.Context, id uint) error
}

// PostFilter narrows a feed query. Nil fields do not filter.
type PostFilter struct {
	GroupID    *uint
	AuthorID   *uint
	FollowerID *uint
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// Update writes text, group and image only.
	Update(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	// List returns posts newest first with author and group loaded.
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error)
	Delete(ctx context.Context, id uint) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// ListByPost returns the post's comments newest first with authors loaded.
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
}

type FollowRepository interface {
	// Create inserts the edge; an existing edge is left untouched and is not an error.
	Create(ctx context.Context, userID, authorID uint) error
	// Delete reports whether an edge was removed.
	Delete(ctx context.Context, userID, authorID uint) (bool, error)
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
}

type ViewRepository interface {
	Increment(ctx context.Context, postID uint, day time.Time) error
	Total(ctx context.Context, postID uint) (int64, error)
}
