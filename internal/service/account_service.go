package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/auth"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/notify"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// Enqueuer 事务提交后投递通知，不阻塞
type Enqueuer interface {
	Enqueue(msg notify.Message)
}

type RegisterInput struct {
	Email      string
	Password   string
	RePassword string
}

// RegisterResult Resent 为 true 表示账号已存在且待验证，只重发了验证码
type RegisterResult struct {
	User   *model.User
	Resent bool
}

type LoginResult struct {
	UserID    int64     `json:"user_id"`
	APIKey    string    `json:"api_key"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountService 注册、激活、登录与鉴权
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Activate(ctx context.Context, email, code string) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ResolveAPIKey(ctx context.Context, apiKey string) (*model.User, error)
	ResolveToken(ctx context.Context, token string) (*model.User, error)
	Block(ctx context.Context, email string) error
	DeleteUser(ctx context.Context, id int64) error
}

type accountService struct {
	store    *repository.Store
	hasher   auth.PasswordHasher
	tokens   *auth.TokenManager
	mailer   Enqueuer
	codeFunc func() (string, error)
}

func NewAccountService(store *repository.Store, hasher auth.PasswordHasher, tokens *auth.TokenManager, mailer Enqueuer) AccountService {
	if hasher == nil {
		hasher = auth.BcryptHasher{Cost: 12}
	}
	return &accountService{store: store, hasher: hasher, tokens: tokens, mailer: mailer, codeFunc: newEmailCode}
}

// newEmailCode 8 位数字
func newEmailCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%08d", n.Int64()), nil
}

func newUsername() string {
	return "user-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (s *accountService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if in.Password != in.RePassword {
		return nil, newError(ErrPasswordMismatch, "", nil, "")
	}
	email := normalizeEmail(in.Email)
	code, err := s.codeFunc()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	res := &RegisterResult{}
	err = s.store.InTx(ctx, func(r *repository.Repositories) error {
		u, err := r.Users.GetByEmail(ctx, email)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return fmt.Errorf("get user: %w", err)
		case u.IsVerified && u.IsActive:
			return newError(ErrAlreadyExists, "user", email, "try login")
		case u.Pending():
			u.EmailCode = code
			if err := r.Users.Update(ctx, u); err != nil {
				return fmt.Errorf("update code: %w", err)
			}
			res.User, res.Resent = u, true
			return nil
		default:
			// 被封禁，或既未验证也未激活
			return newError(ErrBlocked, "user", email, "")
		}

		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u = &model.User{
			Username:       newUsername(),
			Email:          email,
			HashedPassword: hash,
			APIKey:         uuid.NewString(),
			EmailCode:      code,
			IsActive:       true,
		}
		if err := r.Users.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return newError(ErrAlreadyExists, "user", email, "")
			}
			return fmt.Errorf("create user: %w", err)
		}
		res.User = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.mailer != nil {
		s.mailer.Enqueue(notify.Activation(email, code))
	}
	logger.Info("registration", zap.Int64("user", res.User.ID), zap.Bool("resent", res.Resent))
	return res, nil
}

func (s *accountService) Activate(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if code == "" || code == model.EmailCodeEmpty {
		return newError(ErrInvalidActivationCode, "user", email, "")
	}
	return s.store.InTx(ctx, func(r *repository.Repositories) error {
		u, err := r.Users.GetByEmail(ctx, email)
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrInvalidActivationCode, "user", email, "")
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if u.EmailCode != code {
			return newError(ErrInvalidActivationCode, "user", email, "request a new code")
		}
		if u.Blocked() {
			return newError(ErrBlocked, "user", email, "")
		}
		u.IsVerified = true
		u.IsActive = true
		u.EmailCode = model.EmailCodeEmpty
		if err := r.Users.Update(ctx, u); err != nil {
			return fmt.Errorf("activate user: %w", err)
		}
		return nil
	})
}

func (s *accountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	var u *model.User
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		var err error
		u, err = r.Users.GetByEmail(ctx, email)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrUnauthenticated, "", nil, "invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !s.hasher.Verify(u.HashedPassword, password) {
		return nil, newError(ErrUnauthenticated, "", nil, "invalid credentials")
	}
	if !u.IsVerified || !u.IsActive {
		return nil, newError(ErrInactive, "user", u.ID, "")
	}

	res := &LoginResult{UserID: u.ID, APIKey: u.APIKey}
	if s.tokens != nil {
		tok, exp, err := s.tokens.Issue(u.ID)
		if err != nil {
			return nil, err
		}
		res.Token, res.ExpiresAt = tok, exp
	}
	return res, nil
}

func (s *accountService) ResolveAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	if apiKey == "" {
		return nil, newError(ErrUnauthenticated, "", nil, "missing api key")
	}
	return s.resolve(ctx, func(r *repository.Repositories) (*model.User, error) {
		return r.Users.GetByAPIKey(ctx, apiKey)
	})
}

func (s *accountService) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	if s.tokens == nil {
		return nil, newError(ErrUnauthenticated, "", nil, "tokens disabled")
	}
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, newError(ErrUnauthenticated, "", nil, err.Error())
	}
	return s.resolve(ctx, func(r *repository.Repositories) (*model.User, error) {
		return r.Users.GetByID(ctx, id)
	})
}

func (s *accountService) resolve(ctx context.Context, load func(r *repository.Repositories) (*model.User, error)) (*model.User, error) {
	var u *model.User
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		var err error
		u, err = load(r)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrUnauthenticated, "", nil, "unknown credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if !u.IsActive {
		return nil, newError(ErrInactive, "user", u.ID, "")
	}
	return u, nil
}

func (s *accountService) Block(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	return s.store.InTx(ctx, func(r *repository.Repositories) error {
		u, err := r.Users.GetByEmail(ctx, email)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("user", email)
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		u.IsActive = false
		return r.Users.Update(ctx, u)
	})
}

func (s *accountService) DeleteUser(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(r *repository.Repositories) error {
		err := r.Users.Delete(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("user", id)
		}
		return err
	})
}
