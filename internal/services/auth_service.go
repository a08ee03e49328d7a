package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"oficinagil/internal/caching"
	"oficinagil/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthService issues and refreshes the JWT/refresh-token pairs the API
// authenticates with. Refresh tokens are stored hashed in Redis.
type AuthService interface {
	GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
}

type authService struct {
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   int // Access token TTL in seconds
	refreshTTL int // Refresh token TTL in seconds
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

func NewAuthService(cacheSvc caching.CacheService, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) AuthService {
	return &authService{
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

func (s *authService) GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID:   user.ID.String(),
		TenantID: user.TenantID.String(),
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "oficinagil-auth",
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{"oficinagil-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	refreshToken := s.generateSecureToken()
	refreshTokenHash := s.hashToken(refreshToken)

	expiry := now.Unix() + int64(s.refreshTTL)
	refreshTokenData := fmt.Sprintf("%s:%s:%t:%d", user.ID.String(), user.TenantID.String(), user.IsAdmin, expiry)
	cacheKey := fmt.Sprintf("refresh_token:%s", refreshTokenHash)
	if err := s.cacheSvc.SetString(ctx, cacheKey, refreshTokenData, time.Duration(s.refreshTTL)*time.Second); err != nil {
		log.Printf("Failed to store refresh token: %v", err)
		// Continue - token generation succeeded
	}

	return &models.TokenResponse{
		AccessToken:  accessTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
		RefreshToken: refreshToken,
		UserID:       user.ID.String(),
		TenantID:     user.TenantID.String(),
		IssuedAt:     now,
	}, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	refreshTokenHash := s.hashToken(refreshToken)
	cacheKey := fmt.Sprintf("refresh_token:%s", refreshTokenHash)

	data, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %v", err)
	}
	if data == "" {
		return nil, fmt.Errorf("refresh token not found or expired")
	}

	parts := strings.Split(data, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("malformed refresh token record")
	}
	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, fmt.Errorf("malformed refresh token record: %v", err)
	}
	tenantID, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("malformed refresh token record: %v", err)
	}
	isAdmin := parts[2] == "true"
	expiry, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil || time.Now().Unix() > expiry {
		return nil, fmt.Errorf("refresh token expired")
	}

	// Rotate: the old token is revoked before new ones are issued.
	if err := s.cacheSvc.Delete(ctx, cacheKey); err != nil {
		log.Printf("Failed to revoke used refresh token: %v", err)
	}

	return s.GenerateTokens(ctx, &models.User{ID: userID, TenantID: tenantID, IsAdmin: isAdmin})
}

func (s *authService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	cacheKey := fmt.Sprintf("refresh_token:%s", s.hashToken(refreshToken))
	return s.cacheSvc.Delete(ctx, cacheKey)
}

func (s *authService) generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process cannot mint credentials.
		panic(fmt.Sprintf("failed to read random bytes: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func (s *authService) hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
