package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/repository"
	"github.com/cppla/yatube/storage"
	"github.com/cppla/yatube/utils"
)

const (
	MaxPostLength    = 2500
	MaxCommentLength = 1500
)

// ImageUpload is a raw uploaded file.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// PostForm is the user-editable part of a post.
type PostForm struct {
	Text    string
	GroupID *uint
	Image   *ImageUpload
	// ClearImage drops the current image on edit when no new one is uploaded.
	ClearImage bool
}

// PostDetail is everything the post page shows.
type PostDetail struct {
	Post        *models.Post
	Comments    []models.Comment
	AuthorPosts int64
	Views       int64
}

// PostService creates and edits posts and comments.
type PostService struct {
	store    *repository.Store
	media    storage.Storage
	clock    Clock
	maxWidth uint
}

func NewPostService(store *repository.Store, media storage.Storage, clock Clock, maxImageWidth int) *PostService {
	if maxImageWidth < 0 {
		maxImageWidth = 0
	}
	return &PostService{store: store, media: media, clock: clock, maxWidth: uint(maxImageWidth)}
}

// CreatePost validates form and stores a new post by author dated now.
func (s *PostService) CreatePost(ctx context.Context, author *models.User, form PostForm) (*models.Post, error) {
	if author == nil {
		return nil, ErrUnauthorized
	}
	text, err := cleanText("text", form.Text, MaxPostLength)
	if err != nil {
		return nil, err
	}
	img, err := s.prepareImage(form.Image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     text,
		AuthorID: author.ID,
		GroupID:  form.GroupID,
		PubDate:  s.clock.NowUtc(),
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := checkGroup(ctx, tx, form.GroupID); err != nil {
			return err
		}
		if img != nil {
			if err := s.media.Save(ctx, img.Path, img.Data, img.ContentType); err != nil {
				return err
			}
			post.Image = img.Path
		}
		return tx.Posts.Create(ctx, post)
	})
	if err != nil {
		s.discard(ctx, img)
		return nil, err
	}
	post.Author = *author
	return post, nil
}

// EditPost applies form to the post when requester is its author.
// Publication date and author never change.
func (s *PostService) EditPost(ctx context.Context, requester *models.User, postID uint, form PostForm) (*models.Post, error) {
	if requester == nil {
		return nil, ErrUnauthorized
	}
	post, err := s.store.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, notFound(err)
	}
	if post.AuthorID != requester.ID {
		return nil, ErrForbidden
	}
	text, err := cleanText("text", form.Text, MaxPostLength)
	if err != nil {
		return nil, err
	}
	img, err := s.prepareImage(form.Image)
	if err != nil {
		return nil, err
	}

	previousImage := post.Image
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := checkGroup(ctx, tx, form.GroupID); err != nil {
			return err
		}
		post.Text = text
		post.GroupID = form.GroupID
		switch {
		case img != nil:
			if err := s.media.Save(ctx, img.Path, img.Data, img.ContentType); err != nil {
				return err
			}
			post.Image = img.Path
		case form.ClearImage:
			post.Image = ""
		}
		return tx.Posts.Update(ctx, post)
	})
	if err != nil {
		s.discard(ctx, img)
		return nil, err
	}
	if previousImage != "" && previousImage != post.Image {
		if err := s.media.Delete(ctx, previousImage); err != nil {
			utils.Sugar.Warnf("failed to delete replaced image %s: %v", previousImage, err)
		}
	}
	return s.store.Posts.GetByID(ctx, post.ID)
}

// CreateComment adds a comment by author under the post.
func (s *PostService) CreateComment(ctx context.Context, author *models.User, postID uint, text string) (*models.Comment, error) {
	if author == nil {
		return nil, ErrUnauthorized
	}
	if _, err := s.store.Posts.GetByID(ctx, postID); err != nil {
		return nil, notFound(err)
	}
	text, err := cleanText("text", text, MaxCommentLength)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{
		PostID:   postID,
		AuthorID: author.ID,
		Text:     text,
		Created:  s.clock.NowUtc(),
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Comments.Create(ctx, comment)
	})
	if err != nil {
		return nil, err
	}
	comment.Author = *author
	return comment, nil
}

// GetPost loads a post with its comments, its author's post count and its view count.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*PostDetail, error) {
	post, err := s.store.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, notFound(err)
	}
	comments, err := s.store.Comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Posts.Count(ctx, repository.PostFilter{AuthorID: &post.AuthorID})
	if err != nil {
		return nil, err
	}
	views, err := s.store.Views.Total(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments, AuthorPosts: count, Views: views}, nil
}

// RecordView counts one view of the post for today.
func (s *PostService) RecordView(ctx context.Context, postID uint) error {
	return s.store.Views.Increment(ctx, postID, s.clock.NowUtc())
}

// ImageURL resolves a stored image path for templates.
func (s *PostService) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return s.media.URL(path)
}

func (s *PostService) prepareImage(upload *ImageUpload) (*storage.PreparedImage, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, nil
	}
	img, err := storage.PrepareImage(upload.Data, s.maxWidth)
	if errors.Is(err, storage.ErrNotImage) {
		return nil, invalid("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	return img, err
}

// discard removes an image saved by a transaction that then rolled back.
func (s *PostService) discard(ctx context.Context, img *storage.PreparedImage) {
	if img == nil {
		return
	}
	if err := s.media.Delete(ctx, img.Path); err != nil {
		utils.Sugar.Warnf("failed to delete orphaned image %s: %v", img.Path, err)
	}
}

func checkGroup(ctx context.Context, tx *repository.Store, groupID *uint) error {
	if groupID == nil {
		return nil
	}
	if _, err := tx.Groups.GetByID(ctx, *groupID); err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return invalid("group", "Select a valid choice. That choice is not one of the available choices.")
		}
		return err
	}
	return nil
}

// cleanText strips surrounding whitespace, then rejects empty text or text longer than max runes.
func cleanText(field, text string, max int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", invalid(field, "This field is required.")
	}
	if n := utf8.RuneCountInString(text); n > max {
		return "", invalid(field, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", max, n))
	}
	return text, nil
}
