package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/session"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/queue"
	"github.com/yeisme/filevault/pkg/rule"
	"github.com/yeisme/filevault/pkg/tracing"
)

// AuthService 注册、登录与会话校验.
type AuthService struct {
	dir      *directory.Directory
	sessions *session.Store
	jobs     queue.Enqueuer
	cost     int
	logger   zerolog.Logger
}

// NewAuthService 创建 AuthService.
func NewAuthService(dir *directory.Directory, sessions *session.Store, jobs queue.Enqueuer, cfg configs.AuthConfig) *AuthService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = configs.DefaultBcryptCost
	}

	return &AuthService{
		dir:      dir,
		sessions: sessions,
		jobs:     jobs,
		cost:     cost,
		logger:   log.Component("auth"),
	}
}

// Register 创建用户并提交欢迎任务.
func (s *AuthService) Register(ctx context.Context, req types.RegisterRequest) (*types.UserResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "auth.register")
	defer span.End()

	email := strings.TrimSpace(req.Email)

	switch {
	case email == "":
		return nil, ErrMissingEmail
	case rule.ValidateVar(email, "email") != nil:
		return nil, ErrInvalidEmail
	case req.Password == "":
		return nil, ErrMissingPassword
	}

	_, err := s.dir.FindUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserExists
	}

	if !errors.Is(err, directory.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}

	if err != nil {
		return nil, err
	}

	user := &model.User{ID: model.NewID(), Email: email, Password: string(hash)}
	if err := s.dir.InsertUser(ctx, user); err != nil {
		if errors.Is(err, directory.ErrDuplicate) {
			return nil, ErrUserExists
		}

		return nil, err
	}

	if s.jobs != nil {
		if err := queue.EnqueueWelcomeJob(ctx, s.jobs, queue.WelcomeJobPayload{UserID: user.ID},
			queue.WithProducer(configs.AppName)); err != nil {
			s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("enqueue welcome job failed")
		}
	}

	return &types.UserResponse{ID: user.ID, Email: user.Email}, nil
}

// SignIn 校验邮箱与口令，成功后签发令牌.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "auth.sign_in")
	defer span.End()

	if email == "" || password == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.dir.FindUserByEmail(ctx, email)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, ErrUnauthorized
	}

	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrUnauthorized
	}

	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &types.TokenResponse{Token: token}, nil
}

// SignOut 确认会话存在后撤销令牌.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if _, err := s.Authenticate(ctx, token); err != nil {
		return err
	}

	return s.sessions.Revoke(ctx, token)
}

// Me 返回令牌对应的用户.
func (s *AuthService) Me(ctx context.Context, token string) (*types.UserResponse, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	return &types.UserResponse{ID: user.ID, Email: user.Email}, nil
}

// Authenticate 解析令牌并加载用户.
// 令牌无效或用户不存在返回 ErrUnauthorized；缓存或数据库故障原样返回.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.identify(ctx, token)
	if err != nil {
		return nil, err
	}

	if userID == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.dir.FindUserByID(ctx, userID)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, ErrUnauthorized
	}

	if err != nil {
		return nil, err
	}

	return user, nil
}

// identify 解析令牌，未登录时返回空字符串.
func (s *AuthService) identify(ctx context.Context, token string) (string, error) {
	userID, ok, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return "", err
	}

	if !ok || !model.ValidID(userID) {
		return "", nil
	}

	return userID, nil
}
