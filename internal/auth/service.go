package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/internal/users"
	pkgAuth "github.com/angelmondragon/stockroom-backend/pkg/auth"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	redisclient "github.com/angelmondragon/stockroom-backend/pkg/redis"
	"github.com/angelmondragon/stockroom-backend/pkg/security"
)

const invalidOTPMessage = "invalid or expired otp"

var mobileRe = regexp.MustCompile(`^\d{10}$`)

// Service defines the behavior needed by the auth controller.
type Service interface {
	RequestOTP(ctx context.Context, req OTPRequest) (*OTPResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

type otpStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	GetDel(ctx context.Context, key string) (string, error)
	OTPKey(mobile string) string
	OTPThrottleKey(mobile string) string
}

type userRepository interface {
	FindByMobile(ctx context.Context, mobile string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	CreateLogin(ctx context.Context, entry *models.LoginHistory) error
	CloseLogin(ctx context.Context, sessionID string, at time.Time) (bool, error)
}

type sessionManager interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Store          otpStore
	UserRepo       userRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	OTPConfig      config.OTPConfig
	PasswordConfig config.PasswordConfig
	// EchoCode returns the generated code in the OTP response (dev only).
	EchoCode bool
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	store    otpStore
	users    userRepository
	sessions sessionManager
	jwtCfg   config.JWTConfig
	otpCfg   config.OTPConfig
	hashCfg  config.PasswordConfig
	echo     bool
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs an OTP login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "otp store is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository is required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session manager is required")
	}
	otpCfg := params.OTPConfig
	if otpCfg.TTL <= 0 {
		otpCfg.TTL = 10 * time.Minute
	}
	if otpCfg.Digits <= 0 {
		otpCfg.Digits = 6
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		store:    params.Store,
		users:    params.UserRepo,
		sessions: params.SessionManager,
		jwtCfg:   params.JWTConfig,
		otpCfg:   otpCfg,
		hashCfg:  params.PasswordConfig,
		echo:     params.EchoCode,
		logg:     logg,
		now:      now,
	}, nil
}

func (s *service) RequestOTP(ctx context.Context, req OTPRequest) (*OTPResponse, error) {
	mobile := strings.TrimSpace(req.MobileNumber)
	if !mobileRe.MatchString(mobile) {
		return nil, pkgerrors.Fields{"mobile_number": "must be a 10 digit mobile number"}.Err()
	}

	if s.otpCfg.ResendInterval > 0 {
		ok, err := s.store.SetNX(ctx, s.store.OTPThrottleKey(mobile), "1", s.otpCfg.ResendInterval)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "otp throttle")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "otp recently sent; try again shortly")
		}
	}

	code, err := security.GenerateNumericCode(s.otpCfg.Digits)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}
	hashed, err := security.HashSecret(code, s.hashCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash otp")
	}
	if err := s.store.Set(ctx, s.store.OTPKey(mobile), hashed, s.otpCfg.TTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp")
	}

	resp := &OTPResponse{MobileNumber: mobile, ExpiresIn: int(s.otpCfg.TTL.Seconds())}
	if s.echo {
		resp.Code = code
	}
	return resp, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	mobile := strings.TrimSpace(req.MobileNumber)
	code := strings.TrimSpace(req.OTPCode)
	fields := pkgerrors.Fields{}
	if !mobileRe.MatchString(mobile) {
		fields.Add("mobile_number", "must be a 10 digit mobile number")
	}
	if code == "" {
		fields.Add("otp_code", "is required")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	// GetDel makes every code single use, including wrong guesses.
	hashed, err := s.store.GetDel(ctx, s.store.OTPKey(mobile))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidOTPMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp")
	}
	valid, err := security.VerifySecret(code, hashed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify otp")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidOTPMessage)
	}

	user, err := s.users.FindByMobile(ctx, mobile)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.Status != enums.RecordStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user is inactive")
	}

	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	resp, err := s.issueLogin(ctx, user, sessionID)
	if err != nil {
		if revokeErr := s.sessions.Revoke(ctx, sessionID); revokeErr != nil {
			s.logg.Error(s.logg.WithUserID(ctx, user.ID.String()), "login.session_revoke_failed", revokeErr)
		}
		return nil, err
	}
	return resp, nil
}

// issueLogin records the login and mints the token bound to sessionID.
func (s *service) issueLogin(ctx context.Context, user *models.User, sessionID string) (*LoginResponse, error) {
	now := s.now().UTC()
	entry := &models.LoginHistory{
		UserID:    user.ID,
		SessionID: sessionID,
		Status:    enums.RecordStatusActive,
		LoginAt:   now,
	}
	if err := s.users.CreateLogin(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record login")
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    sessionID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   now.Add(s.jwtCfg.TokenTTL()),
		User:        users.FromModel(user),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgAuth.ParseAccessToken(s.jwtCfg, strings.TrimSpace(accessToken))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}

	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	closed, err := s.users.CloseLogin(ctx, claims.ID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close login")
	}
	if !closed {
		s.logg.Warn(s.logg.WithUserID(ctx, claims.UserID.String()), "logout without active login row")
	}
	return nil
}
