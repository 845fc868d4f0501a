// Package auth содержит логику регистрации, входа и аутентификации по JWT.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/magabrotheeeer/bloom-gym/internal/lib/jwt"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/password"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

const publishTimeout = 5 * time.Second

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUser возвращает пользователя по ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Publisher отправляет уведомления в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Result - токен доступа и данные пользователя.
type Result struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Service отвечает за регистрацию, вход и проверку токенов.
type Service struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	publisher Publisher
	log       *slog.Logger

	wg sync.WaitGroup
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, jwtMaker jwt.Maker, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		users:     users,
		jwtMaker:  jwtMaker,
		publisher: publisher,
		log:       log,
	}
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создаёт пользователя с ролью user и сразу выдаёт токен.
// Письмо-приветствие отправляется асинхронно, его сбой регистрацию не отменяет.
func (s *Service) Register(ctx context.Context, in models.DummyRegister) (*Result, error) {
	const op = "auth.Register"
	email := NormalizeEmail(in.Email)

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%s: email %q: %w", op, email, models.ErrAlreadyExists)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Surname:      strings.TrimSpace(in.Surname),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hashed,
		Role:         models.RoleUser,
	}
	user.ID, err = s.users.RegisterUser(ctx, *user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Role.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("user_id", user.ID))

	s.welcome(ctx, user.ID)
	return &Result{Token: token, User: user}, nil
}

// Login проверяет пароль и выдаёт токен. Неизвестный email и неверный пароль
// неразличимы для вызывающего.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*Result, error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if !errors.Is(err, models.ErrInvalidCredentials) {
			s.log.Error("stored password hash is unusable", slog.String("user_id", user.ID))
		}
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	token, err := s.jwtMaker.GenerateToken(user.ID, user.Role.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Result{Token: token, User: user}, nil
}

// Authenticate проверяет токен и возвращает идентичность пользователя.
// Роль берётся из базы, поэтому токен удалённого пользователя перестаёт работать.
func (s *Service) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	const op = "auth.Authenticate"
	if token == "" {
		return models.Identity{}, fmt.Errorf("%s: %w: empty token", op, models.ErrUnauthenticated)
	}
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%s: %w: %v", op, models.ErrUnauthenticated, err)
	}
	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidArgument) {
			return models.Identity{}, fmt.Errorf("%s: %w: user not found", op, models.ErrUnauthenticated)
		}
		return models.Identity{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.Identity{UserID: user.ID, Role: user.Role}, nil
}

// Wait дожидается отправки поставленных уведомлений.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) welcome(ctx context.Context, userID string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		msg := models.Notification{Type: models.UserRegistered, UserID: userID}
		if err := s.publisher.Publish(pubCtx, models.EventWelcome, msg); err != nil {
			s.log.Error("failed to publish welcome notification", slog.String("user_id", userID), sl.Err(err))
		}
	}()
}
