package services

import (
	"context"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/repository"
)

// FollowService maintains follow edges between users.
type FollowService struct {
	store *repository.Store
}

func NewFollowService(store *repository.Store) *FollowService {
	return &FollowService{store: store}
}

// Follow makes user follow authorUsername. Following yourself or an author already
// followed changes nothing.
func (s *FollowService) Follow(ctx context.Context, user *models.User, authorUsername string) error {
	if user == nil {
		return ErrUnauthorized
	}
	author, err := s.store.Users.GetByUsername(ctx, authorUsername)
	if err != nil {
		return notFound(err)
	}
	if author.ID == user.ID {
		return nil
	}
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Follows.Create(ctx, user.ID, author.ID)
	})
}

// Unfollow removes the edge; ErrNotFound when the author or the edge does not exist.
func (s *FollowService) Unfollow(ctx context.Context, user *models.User, authorUsername string) error {
	if user == nil {
		return ErrUnauthorized
	}
	author, err := s.store.Users.GetByUsername(ctx, authorUsername)
	if err != nil {
		return notFound(err)
	}
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		removed, err := tx.Follows.Delete(ctx, user.ID, author.ID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrNotFound
		}
		return nil
	})
}

// IsFollowing reports whether user follows author. A nil user follows nobody.
func (s *FollowService) IsFollowing(ctx context.Context, user, author *models.User) (bool, error) {
	if user == nil || author == nil || user.ID == author.ID {
		return false, nil
	}
	return s.store.Follows.Exists(ctx, user.ID, author.ID)
}
