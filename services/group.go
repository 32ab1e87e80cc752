package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/repository"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]{1,50}$`)

// GroupForm carries the administrator supplied group fields.
type GroupForm struct {
	Title       string
	Slug        string
	Description string
}

// GroupService manages groups on behalf of administrators.
type GroupService struct {
	store *repository.Store
}

func NewGroupService(store *repository.Store) *GroupService {
	return &GroupService{store: store}
}

func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	return s.store.Groups.List(ctx)
}

// Create validates and stores a group. Slugs are unique.
func (s *GroupService) Create(ctx context.Context, form GroupForm) (*models.Group, error) {
	slug := strings.TrimSpace(form.Slug)
	if !slugPattern.MatchString(slug) {
		return nil, invalid("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}
	if utf8.RuneCountInString(form.Title) > 200 {
		return nil, invalid("title", "Ensure this value has at most 200 characters.")
	}
	if utf8.RuneCountInString(form.Description) > 200 {
		return nil, invalid("description", "Ensure this value has at most 200 characters.")
	}

	group := &models.Group{Slug: slug, Description: form.Description}
	if title := strings.TrimSpace(form.Title); title != "" {
		group.Title = &title
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Groups.GetBySlug(ctx, slug); err == nil {
			return invalid("slug", "Group with this Slug already exists.")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Groups.Create(ctx, group)
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// Delete removes the group; its posts stay without a group.
func (s *GroupService) Delete(ctx context.Context, id uint) error {
	return notFound(s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Groups.Delete(ctx, id)
	}))
}
