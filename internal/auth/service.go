package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"mailhub/backend/internal/auth/jwt"
	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage"
)

var (
	// ErrInvalidCredentials 凭证无效
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserInactive 账号已被禁用
	ErrUserInactive = errors.New("user is inactive")
	// ErrUsernameExists 用户名已存在
	ErrUsernameExists = errors.New("username already exists")
	// ErrTokenRevoked 令牌已被注销
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Blacklist JWT 黑名单接口（Redis 实现，未启用时为 nil）
type Blacklist interface {
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 操作员认证服务
type Service struct {
	staffRepo  storage.StaffRepository
	jwtManager *jwt.Manager
	blacklist  Blacklist
}

// NewService 创建认证服务，blacklist 可以为 nil（不启用注销黑名单）
func NewService(staffRepo storage.StaffRepository, jwtManager *jwt.Manager, blacklist Blacklist) *Service {
	return &Service{
		staffRepo:  staffRepo,
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// LoginResult 登录结果
type LoginResult struct {
	User   *domain.StaffUser `json:"user"`
	Tokens *jwt.TokenPair    `json:"tokens"`
}

// Login 操作员登录
func (s *Service) Login(username, password string) (*LoginResult, error) {
	user, err := s.staffRepo.GetStaffByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrUserInactive
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	// 更新最后登录时间
	_ = s.staffRepo.UpdateStaffLastLogin(user.ID)

	tokens, err := s.jwtManager.GenerateTokenPair(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &LoginResult{User: user, Tokens: tokens}, nil
}

// Refresh 使用刷新令牌换取新令牌对
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, jwt.ErrInvalidToken
	}

	if err := s.checkBlacklist(ctx, claims.ID); err != nil {
		return nil, err
	}

	user, err := s.staffRepo.GetStaffByID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	// 旧的刷新令牌立即作废，防止重放
	if s.blacklist != nil && claims.ExpiresAt != nil {
		_ = s.blacklist.AddToBlacklist(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
	}

	return s.jwtManager.GenerateTokenPair(user.ID, user.Username)
}

// Logout 注销令牌（加入黑名单直到其自然过期）
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		// 无效或已过期的令牌视为注销成功
		return nil
	}

	if s.blacklist == nil || claims.ExpiresAt == nil {
		return nil
	}

	return s.blacklist.AddToBlacklist(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

// Authenticate 验证访问令牌，供 HTTP 中间件使用
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*jwt.Claims, error) {
	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != jwt.TokenTypeAccess {
		return nil, jwt.ErrInvalidToken
	}

	if err := s.checkBlacklist(ctx, claims.ID); err != nil {
		return nil, err
	}

	return claims, nil
}

// checkBlacklist 检查令牌是否已被注销
func (s *Service) checkBlacklist(ctx context.Context, jti string) error {
	if s.blacklist == nil {
		return nil
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		return fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

// CreateStaff 创建操作员账号（供 create-admin 命令和种子数据使用）
func (s *Service) CreateStaff(username, password, name string) (*domain.StaffUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}

	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	if user, err := s.staffRepo.GetStaffByUsername(username); err == nil && user != nil {
		return nil, ErrUsernameExists
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.StaffUser{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		Name:         name,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.staffRepo.CreateStaff(user); err != nil {
		if errors.Is(err, storage.ErrUsernameExists) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}

	return user, nil
}

// GetStaff 根据 ID 获取操作员信息
func (s *Service) GetStaff(id string) (*domain.StaffUser, error) {
	return s.staffRepo.GetStaffByID(id)
}

// ValidatePassword 验证密码强度
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 72 {
		return errors.New("password must be at most 72 characters")
	}
	return nil
}

// HashPassword 哈希密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword 检查密码是否匹配
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
