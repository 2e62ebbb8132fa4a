package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/schoolsuite/cbt-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidAccessCode = errors.New("invalid access code")
	ErrLoginInvalidated  = errors.New("login has been superseded or expired")
)

// TokenType distinguishes token audiences.
type TokenType string

const (
	TokenTypeStudent TokenType = "student"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType   TokenType `json:"token_type"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
}

// AuthService issues and validates guest practice tokens. Students do not
// have accounts here; a shared access code (bcrypt-hashed in config) gates
// entry, and each login mints a fresh student identity. The admin
// question-bank endpoints are gated by a separate hashed key.
type AuthService struct {
	cfg *config.Config
	rdb *redis.Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb}
}

// GuestLogin checks the access code and issues a student JWT. The token's
// JTI is registered in Redis so a stolen older token for the same identity
// stops working.
func (s *AuthService) GuestLogin(ctx context.Context, studentName, accessCode string) (token, studentID string, err error) {
	if s.cfg.AccessCodeHash == "" {
		return "", "", errors.New("ACCESS_CODE_HASH is not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AccessCodeHash), []byte(accessCode)); err != nil {
		return "", "", ErrInvalidAccessCode
	}

	studentID = uuid.New().String()
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   studentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType:   TokenTypeStudent,
		StudentID:   studentID,
		StudentName: studentName,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}

	loginKey := config.CacheKey.StudentLoginKey(studentID)
	if err := s.rdb.Set(ctx, loginKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", "", fmt.Errorf("register login: %w", err)
	}

	return signed, studentID, nil
}

// ValidateToken parses and verifies a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ValidateStudentLogin checks the token's JTI against the registered login.
// Rejects tokens whose identity was re-issued or expired out of Redis.
func (s *AuthService) ValidateStudentLogin(ctx context.Context, studentID, jti string) error {
	stored, err := s.rdb.Get(ctx, config.CacheKey.StudentLoginKey(studentID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrLoginInvalidated
		}
		return fmt.Errorf("check login: %w", err)
	}
	if stored != jti {
		return ErrLoginInvalidated
	}
	return nil
}

// Logout removes the registered login so the token stops validating.
func (s *AuthService) Logout(ctx context.Context, studentID string) error {
	return s.rdb.Del(ctx, config.CacheKey.StudentLoginKey(studentID)).Err()
}

// CheckAdminKey compares a presented admin key against the configured hash.
func (s *AuthService) CheckAdminKey(key string) error {
	if s.cfg.AdminKeyHash == "" {
		return errors.New("ADMIN_KEY_HASH is not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminKeyHash), []byte(key)); err != nil {
		return ErrInvalidAccessCode
	}
	return nil
}
