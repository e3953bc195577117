package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-ratchet-tracker/internal/entity"
	"golang-ratchet-tracker/internal/tracker/dto"
	"golang-ratchet-tracker/internal/tracker/repository"
	"golang-ratchet-tracker/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidFrequency   = errors.New("unknown summary frequency")
	ErrUserNotFound       = errors.New("user not found")
)

// UserService handles registration, login and notification preferences.
type UserService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	GetPreferences(ctx context.Context, userID uint) (*dto.PreferencesResponse, error)
	UpdatePreferences(ctx context.Context, userID uint, req dto.PreferencesRequest) (*dto.PreferencesResponse, error)
}

type userService struct {
	users     repository.UsersRepository
	log       *logger.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewUserService(users repository.UsersRepository, log *logger.Logger, jwtSecret string, tokenTTL time.Duration) UserService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &userService{
		users:     users,
		log:       log,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(req.Password) < 8 {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The ledger starts empty: a fresh user has no positions, no alerts and
	// notifications off.
	user := &entity.User{
		Email:            email,
		PasswordHash:     string(hash),
		NotifyEmail:      email,
		SummaryFrequency: entity.SummaryFrequencyNone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.InfoContext(ctx, "User registered", logger.StringField("email", email))

	return s.issueToken(user)
}

func (s *userService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *userService) GetPreferences(ctx context.Context, userID uint) (*dto.PreferencesResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toPreferencesResponse(user), nil
}

func (s *userService) UpdatePreferences(ctx context.Context, userID uint, req dto.PreferencesRequest) (*dto.PreferencesResponse, error) {
	frequency := entity.SummaryFrequency(req.SummaryFrequency)
	if !frequency.Valid() {
		return nil, ErrInvalidFrequency
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.NotifyEmail = strings.TrimSpace(req.NotifyEmail)
	user.SummaryFrequency = frequency
	user.TelegramChatID = req.TelegramChatID

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	return toPreferencesResponse(user), nil
}

func (s *userService) issueToken(user *entity.User) (*dto.AuthResponse, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": fmt.Sprintf("%d", user.ID),
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &dto.AuthResponse{Token: signed}, nil
}

func toPreferencesResponse(user *entity.User) *dto.PreferencesResponse {
	return &dto.PreferencesResponse{
		NotifyEmail:      user.NotifyEmail,
		SummaryFrequency: string(user.SummaryFrequency),
		TelegramChatID:   user.TelegramChatID,
	}
}
