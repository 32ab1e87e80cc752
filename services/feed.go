package services

import (
	"context"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/repository"
	"github.com/cppla/yatube/utils"
)

// PostPage is one page of a feed.
type PostPage = utils.Page[models.Post]

// FeedService builds the paginated post listings.
type FeedService struct {
	store    *repository.Store
	pageSize int
}

func NewFeedService(store *repository.Store) *FeedService {
	return &FeedService{store: store, pageSize: utils.PageSize}
}

// GlobalFeed lists every post.
func (s *FeedService) GlobalFeed(ctx context.Context, page string) (PostPage, error) {
	return s.feed(ctx, repository.PostFilter{}, page)
}

// GroupFeed lists posts of the group with slug.
func (s *FeedService) GroupFeed(ctx context.Context, slug string, page string) (*models.Group, PostPage, error) {
	group, err := s.store.Groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, PostPage{}, notFound(err)
	}
	posts, err := s.feed(ctx, repository.PostFilter{GroupID: &group.ID}, page)
	return group, posts, err
}

// ProfileFeed lists posts written by username.
func (s *FeedService) ProfileFeed(ctx context.Context, username string, page string) (*models.User, PostPage, error) {
	author, err := s.store.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, PostPage{}, notFound(err)
	}
	posts, err := s.feed(ctx, repository.PostFilter{AuthorID: &author.ID}, page)
	return author, posts, err
}

// FollowingFeed lists posts by the authors user follows.
func (s *FeedService) FollowingFeed(ctx context.Context, user *models.User, page string) (PostPage, error) {
	if user == nil {
		return PostPage{}, ErrUnauthorized
	}
	return s.feed(ctx, repository.PostFilter{FollowerID: &user.ID}, page)
}

func (s *FeedService) feed(ctx context.Context, filter repository.PostFilter, page string) (PostPage, error) {
	total, err := s.store.Posts.Count(ctx, filter)
	if err != nil {
		return PostPage{}, err
	}
	p := utils.Paginator{Total: total, PageSize: s.pageSize}
	n := p.Resolve(page)
	posts, err := s.store.Posts.List(ctx, filter, p.Offset(n), s.pageSize)
	if err != nil {
		return PostPage{}, err
	}
	return utils.NewPage(p, n, posts), nil
}
