package auth

import (
	"context"
	"errors"
	"os"
	"time"

	autherrors "spa-portal/internal/auth/errors"
	"spa-portal/internal/domain"
	"spa-portal/internal/employee"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock

type Service interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp SessionResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp SessionResponse, err error)
	GetMe(ctx context.Context, email string) (*SessionResponse, error)
	Logout(ctx context.Context, tokens ...string) error

	// ResolveSession validates an access token and re-reads the directory so
	// a role or department change takes effect on the next request, not the
	// next login.
	ResolveSession(ctx context.Context, tokenString string) (domain.Principal, error)
}

type service struct {
	creds     Repository
	employees employee.Repository
	rdb       *redis.Client
	secret    []byte
	logger    *zap.Logger
}

func NewService(
	creds Repository,
	employees employee.Repository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		creds:     creds,
		employees: employees,
		rdb:       rdb,
		secret:    []byte(os.Getenv("JWT_SECRET")),
		logger:    l,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (string, string, SessionResponse, error) {
	s.logger.Debug("login requested", zap.String("email", email))

	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login unknown email", zap.String("email", email))
		return "", "", SessionResponse{}, autherrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login password mismatch", zap.String("email", email))
		return "", "", SessionResponse{}, autherrors.ErrInvalidCredentials
	}
	if !cred.IsActive {
		return "", "", SessionResponse{}, autherrors.ErrAccountDisabled
	}

	principal, err := s.resolvePrincipal(ctx, email)
	if err != nil {
		return "", "", SessionResponse{}, err
	}

	access, refresh, err := s.issueTokens(email)
	if err != nil {
		s.logger.Error("login token generation failed", zap.Error(err))
		return "", "", SessionResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("login success",
		zap.String("email", email),
		zap.String("role", principal.Role),
		zap.String("department", principal.Department),
	)
	return access, refresh, sessionFromPrincipal(principal), nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, SessionResponse, error) {
	email, jti, expiresAt, err := s.parseToken(refreshToken, "refresh")
	if err != nil {
		return "", "", SessionResponse{}, autherrors.ErrInvalidRefreshToken
	}

	revoked, err := s.isRevoked(ctx, jti)
	if err != nil {
		return "", "", SessionResponse{}, err
	}
	if revoked {
		return "", "", SessionResponse{}, autherrors.ErrTokenRevoked
	}

	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil || !cred.IsActive {
		return "", "", SessionResponse{}, autherrors.ErrInvalidRefreshToken
	}

	principal, err := s.resolvePrincipal(ctx, email)
	if err != nil {
		return "", "", SessionResponse{}, err
	}

	// Rotation: the presented refresh token is dead from here on.
	if err := s.revoke(ctx, jti, expiresAt); err != nil {
		s.logger.Error("refresh rotation revoke failed", zap.String("jti", jti), zap.Error(err))
		return "", "", SessionResponse{}, err
	}

	access, refresh, err := s.issueTokens(email)
	if err != nil {
		return "", "", SessionResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("session refreshed", zap.String("email", email))
	return access, refresh, sessionFromPrincipal(principal), nil
}

func (s *service) GetMe(ctx context.Context, email string) (*SessionResponse, error) {
	principal, err := s.resolvePrincipal(ctx, email)
	if err != nil {
		return nil, err
	}
	resp := sessionFromPrincipal(principal)
	return &resp, nil
}

// Logout revokes every presented token until its natural expiry. Tokens that
// no longer parse are already unusable and are skipped.
func (s *service) Logout(ctx context.Context, tokens ...string) error {
	for _, tokenString := range tokens {
		if tokenString == "" {
			continue
		}
		_, jti, expiresAt, err := s.parseAnyToken(tokenString)
		if err != nil {
			continue
		}
		if err := s.revoke(ctx, jti, expiresAt); err != nil {
			s.logger.Error("logout revoke failed", zap.String("jti", jti), zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *service) ResolveSession(ctx context.Context, tokenString string) (domain.Principal, error) {
	email, jti, _, err := s.parseToken(tokenString, "access")
	if err != nil {
		return domain.Principal{}, autherrors.ErrInvalidToken
	}

	revoked, err := s.isRevoked(ctx, jti)
	if err != nil {
		return domain.Principal{}, err
	}
	if revoked {
		return domain.Principal{}, autherrors.ErrTokenRevoked
	}

	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		return domain.Principal{}, autherrors.ErrInvalidToken
	}
	if !cred.IsActive {
		return domain.Principal{}, autherrors.ErrAccountDisabled
	}

	return s.resolvePrincipal(ctx, email)
}

func (s *service) resolvePrincipal(ctx context.Context, email string) (domain.Principal, error) {
	empl, err := s.employees.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("credential has no directory record", zap.String("email", email))
			return domain.Principal{}, autherrors.ErrAccountUnprovisioned
		}
		return domain.Principal{}, err
	}

	return domain.Principal{
		UID:          empl.ID.String(),
		Email:        empl.Email,
		Name:         empl.FullName,
		Role:         empl.Role,
		Department:   empl.Department,
		EmployeeCode: empl.EmployeeCode,
		Position:     empl.Position,
	}, nil
}

func (s *service) issueTokens(email string) (string, string, error) {
	access, err := s.signToken(email, "access", accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.signToken(email, "refresh", refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *service) signToken(email, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": email,
		"jti": uuid.NewString(),
		"typ": tokenType,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *service) parseToken(tokenString, wantType string) (email, jti string, expiresAt time.Time, err error) {
	email, jti, expiresAt, tokenType, err := s.parseClaims(tokenString)
	if err != nil {
		return "", "", time.Time{}, err
	}
	if tokenType != wantType {
		return "", "", time.Time{}, autherrors.ErrInvalidToken
	}
	return email, jti, expiresAt, nil
}

func (s *service) parseAnyToken(tokenString string) (email, jti string, expiresAt time.Time, err error) {
	email, jti, expiresAt, _, err = s.parseClaims(tokenString)
	return email, jti, expiresAt, err
}

func (s *service) parseClaims(tokenString string) (email, jti string, expiresAt time.Time, tokenType string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", time.Time{}, "", autherrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", time.Time{}, "", autherrors.ErrInvalidToken
	}

	email, _ = claims["sub"].(string)
	jti, _ = claims["jti"].(string)
	tokenType, _ = claims["typ"].(string)
	if email == "" || jti == "" {
		return "", "", time.Time{}, "", autherrors.ErrInvalidToken
	}

	exp, errExp := claims.GetExpirationTime()
	if errExp != nil || exp == nil {
		return "", "", time.Time{}, "", autherrors.ErrInvalidToken
	}

	return email, jti, exp.Time, tokenType, nil
}

func denylistKey(jti string) string {
	return "auth:denylist:" + jti
}

func (s *service) revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, denylistKey(jti), 1, ttl).Err()
}

func (s *service) isRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, denylistKey(jti)).Result()
	if err != nil {
		s.logger.Error("denylist lookup failed", zap.String("jti", jti), zap.Error(err))
		return false, err
	}
	return n > 0, nil
}

func sessionFromPrincipal(p domain.Principal) SessionResponse {
	return SessionResponse{
		UID:          p.UID,
		Email:        p.Email,
		Name:         p.Name,
		Role:         p.Role,
		Department:   p.Department,
		EmployeeCode: p.EmployeeCode,
		Position:     p.Position,
	}
}
