package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"task-board/backend/internal/models"
	"task-board/backend/internal/store"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password so a caller cannot probe which accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService interface {
	Signup(ctx context.Context, email, password string) (models.User, string, error)
	Login(ctx context.Context, email, password string) (models.User, string, error)
	CurrentUser(ctx context.Context, userID string) (models.User, error)
}

type AuthServiceImpl struct {
	users      store.UserStore
	tokens     TokenService
	bcryptCost int
}

func NewAuthService(users store.UserStore, tokens TokenService, bcryptCost int) *AuthServiceImpl {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) Signup(ctx context.Context, email, password string) (models.User, string, error) {
	email = normalizeEmail(email)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.User{}, "", err
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Email:    email,
		Password: string(hashed),
	})
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", err
	}

	return user, token, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (models.User, string, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, "", ErrInvalidCredentials
		}
		return models.User{}, "", err
	}

	if !VerifyPassword(user.Password, password) {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", err
	}

	return user, token, nil
}

func (s *AuthServiceImpl) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
