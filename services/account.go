package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/repository"
	"github.com/cppla/yatube/utils"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

// SignupForm carries the fields of the registration form.
type SignupForm struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AccountService registers and authenticates users and removes accounts.
type AccountService struct {
	store *repository.Store
}

func NewAccountService(store *repository.Store) *AccountService {
	return &AccountService{store: store}
}

// Register creates a user with a bcrypt hashed password.
func (s *AccountService) Register(ctx context.Context, form SignupForm) (*models.User, error) {
	username := strings.TrimSpace(form.Username)
	if !usernamePattern.MatchString(username) {
		return nil, invalid("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	hash, err := utils.HashPassword(form.Password)
	if errors.Is(err, utils.ErrPasswordTooShort) {
		return nil, invalid("password", "This password is too short. It must contain at least 8 characters.")
	}
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		FirstName:    strings.TrimSpace(form.FirstName),
		LastName:     strings.TrimSpace(form.LastName),
		Email:        strings.TrimSpace(form.Email),
		PasswordHash: hash,
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.GetByUsername(ctx, username); err == nil {
			return invalid("username", "A user with that username already exists.")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser loads a user by id.
func (s *AccountService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// DeleteUser removes the account and everything it owns.
func (s *AccountService) DeleteUser(ctx context.Context, id uint) error {
	return notFound(s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Users.Delete(ctx, id)
	}))
}
