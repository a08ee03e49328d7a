package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"oficinagil/internal/caching"
	"oficinagil/internal/models"
	"oficinagil/internal/repositories"
	"oficinagil/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
	trialDays       = 7
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService  services.AuthService
	userRepo     repositories.UserRepository
	workshopRepo repositories.WorkshopRepository
	subRepo      repositories.SubscriptionRepository
	cacheSvc     caching.CacheService
}

func NewAuthHandlers(authService services.AuthService, userRepo repositories.UserRepository, workshopRepo repositories.WorkshopRepository, subRepo repositories.SubscriptionRepository, cacheSvc caching.CacheService) *AuthHandlers {
	return &AuthHandlers{
		authService:  authService,
		userRepo:     userRepo,
		workshopRepo: workshopRepo,
		subRepo:      subRepo,
		cacheSvc:     cacheSvc,
	}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	models.TokenResponse
	User *models.User `json:"user"`
}

// Login handles user login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	limited, err := h.cacheSvc.IsRateLimited(ctx, "login:"+strings.ToLower(req.Email), loginRateLimit, loginRateWindow)
	if err != nil {
		log.Printf("login rate-limit check failed: %v", err)
		// Redis being down should not lock everyone out.
	} else if limited {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts, try again later")
	}

	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	tokenResponse, err := h.authService.GenerateTokens(ctx, user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate tokens")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		TokenResponse: *tokenResponse,
		User:          user,
	})
}

// SignupRequest represents the signup request payload
type SignupRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Name         string `json:"name" validate:"required"`
	WorkshopName string `json:"workshop_name" validate:"required"`
	Phone        string `json:"phone"`
}

// Signup creates a workshop (the tenant) together with its first user and a
// trial subscription.
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" || req.WorkshopName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email, password, name and workshop_name are required")
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 6 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process password")
	}

	workshop := &models.Workshop{
		ID:     uuid.New(),
		Name:   req.WorkshopName,
		Status: "active",
	}
	if req.Phone != "" {
		workshop.Phone = &req.Phone
	}
	if err := h.workshopRepo.Create(ctx, workshop); err != nil {
		log.Printf("failed to create workshop: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create workshop")
	}

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     workshop.ID,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Name:         req.Name,
		Status:       "active",
	}
	if err := h.userRepo.Create(ctx, user); err != nil {
		log.Printf("failed to create user: %v", err)
		return echo.NewHTTPError(http.StatusConflict, "Could not create user account")
	}

	now := time.Now()
	trialEnd := now.AddDate(0, 0, trialDays)
	trial := &models.Subscription{
		ID:          uuid.New(),
		TenantID:    workshop.ID,
		PlanType:    models.PlanFreeTrialPremium,
		Status:      models.SubscriptionTrialing,
		StartsAt:    now,
		TrialEndsAt: &trialEnd,
		IsManual:    false,
	}
	if err := h.subRepo.Upsert(ctx, trial); err != nil {
		// The account works without it, entitlements just resolve to Free.
		log.Printf("failed to create trial subscription for tenant %s: %v", workshop.ID, err)
	}

	tokenResponse, err := h.authService.GenerateTokens(ctx, user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate tokens")
	}

	return c.JSON(http.StatusCreated, LoginResponse{
		TokenResponse: *tokenResponse,
		User:          user,
	})
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token is required")
	}

	tokenResponse, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	return c.JSON(http.StatusOK, tokenResponse)
}
