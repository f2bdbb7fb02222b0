package services

import (
	"context"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/biolink-hub/biolink_api/dto"
	"github.com/biolink-hub/biolink_api/model"
	"github.com/biolink-hub/biolink_api/shared"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and login. Login runs behind the throttle:
// a blocked pair is rejected before the password is even checked, a failed
// password records a failure, a successful login clears the pair's state.
type AuthService struct {
	appContext.DefaultService

	sqlSvc      *PostgresService
	jwtSvc      *JWTService
	throttleSvc *LoginThrottleService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.throttleSvc = svc.Service(LOGIN_THROTTLE_SVC).(*LoginThrottleService)
	return nil
}

func (svc *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	existing, err := svc.sqlSvc.UserRepo().GetByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewConflictError("Email already registered")
	}

	existing, err = svc.sqlSvc.UserRepo().GetByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewConflictError("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:       uuid.New().String(),
		Email:    req.Email,
		Username: req.Username,
		Password: string(hashed),
	}

	if err := svc.sqlSvc.UserRepo().Create(user); err != nil {
		return nil, err
	}

	log.WithField("user_id", user.ID).Info("User registered")

	return &dto.RegisterResponse{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, nil
}

func (svc *AuthService) Login(ctx context.Context, req dto.LoginRequest, ip, userAgent string) (*dto.LoginResponse, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	status, err := svc.throttleSvc.CheckBlocked(ctx, req.Email, ip)
	if err != nil {
		return nil, err
	}
	if status.Blocked {
		loginLockoutsTotal.Inc()
		return nil, shared.NewTooManyRequestsError(
			"Too many failed login attempts. Please try again later.",
			map[string]interface{}{
				"blocked_until": status.BlockedUntil.Unix(),
				"retry_after":   svc.throttleSvc.RetryAfter(status),
			},
		)
	}

	user, err := svc.sqlSvc.UserRepo().GetByEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		if _, err := svc.throttleSvc.RecordFailure(ctx, req.Email, ip); err != nil {
			return nil, err
		}
		return nil, shared.NewUnauthorizedError("Invalid email or password")
	}

	if err := svc.throttleSvc.Clear(ctx, req.Email, ip); err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := svc.jwtSvc.GenerateToken(user.ID, svc.jwtSvc.AccessTokenDuration)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExpiresAt, err := svc.jwtSvc.GenerateToken(user.ID, svc.jwtSvc.RefreshTokenDuration)
	if err != nil {
		return nil, err
	}

	session := &model.UserSession{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		UserAgent:    userAgent,
		IPAddress:    ip,
		ExpiresAt:    refreshExpiresAt,
		CreatedAt:    time.Now(),
	}
	if err := svc.sqlSvc.UserRepo().CreateSession(session); err != nil {
		return nil, err
	}

	if err := svc.sqlSvc.UserRepo().UpdateLastLogin(user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	return &dto.LoginResponse{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}
