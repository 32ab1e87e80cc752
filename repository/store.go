// Package repository is the entity store: one data-access interface per model
// backed by gorm, plus the transaction boundary the services mutate through.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the per-entity repositories sharing one connection or transaction.
type Store struct {
	db       *gorm.DB
	Users    UserRepository
	Groups   GroupRepository
	Posts    PostRepository
	Comments CommentRepository
	Follows  FollowRepository
	Views    ViewRepository
}

// NewStore builds repositories over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    &gormUserRepository{db: db},
		Groups:   &gormGroupRepository{db: db},
		Posts:    &gormPostRepository{db: db},
		Comments: &gormCommentRepository{db: db},
		Follows:  &gormFollowRepository{db: db},
		Views:    &gormViewRepository{db: db},
	}
}

// Transaction runs fn with a Store bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// DB exposes the underlying handle for health checks and middleware.
func (s *Store) DB() *gorm.DB {
	return s.db
}
