// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/models"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(config.AppConfig{
		DBDriver:    "sqlite",
		DatabaseURI: "file:" + uuid.NewString() + "?mode=memory&cache=shared&_fk=1",
		LogLevel:    "silent",
	}, models.All()...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Context returns a context bounded for a single test.
func Context(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// CreateUser inserts a user with a random username.
func CreateUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{Username: gofakeit.Username() + gofakeit.DigitN(6)}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateGroup inserts a titled group with a random slug.
func CreateGroup(t *testing.T, db *gorm.DB) *models.Group {
	t.Helper()
	title := gofakeit.HipsterWord()
	group := &models.Group{Title: &title, Slug: "g-" + gofakeit.DigitN(8), Description: gofakeit.Sentence(5)}
	require.NoError(t, db.Create(group).Error)
	return group
}

// CreatePost inserts a post by author dated pubDate.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, group *models.Group, pubDate time.Time) *models.Post {
	t.Helper()
	post := &models.Post{Text: gofakeit.Sentence(8), AuthorID: author.ID, PubDate: pubDate.UTC()}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, db.Omit("Author", "Group", "Comments").Create(post).Error)
	return post
}
