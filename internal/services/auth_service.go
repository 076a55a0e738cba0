package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/store"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")

	ErrInvalidDateOfBirth = errors.New("invalid date of birth")
)

type Argon2Params struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength uint32
}

type AuthConfig struct {
	SecretKey string
	Expiry    time.Duration
	Argon2    Argon2Params
}

// AuthConfigFromViper reads the jwt.* and argon2.* keys.
func AuthConfigFromViper() AuthConfig {
	return AuthConfig{
		SecretKey: viper.GetString("jwt.secret_key"),
		Expiry:    time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour,
		Argon2: Argon2Params{
			Time:       uint32(viper.GetInt("argon2.time")),
			Memory:     uint32(viper.GetInt("argon2.memory")),
			Threads:    uint8(viper.GetInt("argon2.threads")),
			KeyLength:  uint32(viper.GetInt("argon2.key_length")),
			SaltLength: uint32(viper.GetInt("argon2.salt_length")),
		},
	}
}

// Claims is the JWT payload. RegisteredClaims.ID carries the jti used by
// the logout blacklist.
type Claims struct {
	UserID int         `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// SignUpRequest represents the sign-up payload
// @Description Sign-up request structure
type SignUpRequest struct {
	FirstName    string `json:"firstName" validate:"required,min=2" example:"Jane"`
	LastName     string `json:"lastName" validate:"required,min=2" example:"Smith"`
	Username     string `json:"username" validate:"required,min=3,max=32,alphanum" example:"janesmith"`
	Email        string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password     string `json:"password" validate:"required,min=6" example:"password123"`
	PhoneNumber  string `json:"phoneNumber" validate:"required" example:"+1234567890"`
	Address      string `json:"address" validate:"required" example:"123 Main St"`
	DateOfBirth  string `json:"dateOfBirth" validate:"required,datetime=2006-01-02" example:"1992-06-15"`
	PlaceOfBirth string `json:"placeOfBirth" validate:"required" example:"Chicago"`
	Residence    string `json:"residence" validate:"required" example:"Miami"`
	Nationality  string `json:"nationality" validate:"required" example:"USA"`
}

// SignInRequest represents the user sign-in payload
// @Description Sign-in request structure
type SignInRequest struct {
	Email    string `json:"email" validate:"required" example:"john@example.com"` // Email or username
	Password string `json:"password" validate:"required,min=6" example:"password123"`
}

// AdminSignInRequest represents the admin sign-in payload
// @Description Admin sign-in request structure
type AdminSignInRequest struct {
	Email    string `json:"email" validate:"required,email" example:"admin@cashora.com"`
	Password string `json:"password" validate:"required,min=8" example:"admin12345"`
}

// AuthResponse represents the authentication response
// @Description Authentication response structure
type AuthResponse struct {
	Token string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User  models.User `json:"user"`
}

type AuthService struct {
	store  *store.MemoryStore
	redis  *redis.Client
	config AuthConfig
	log    *logging.Logger
	now    func() time.Time
}

// NewAuthService builds the service. A nil redisClient disables the logout
// blacklist.
func NewAuthService(st *store.MemoryStore, redisClient *redis.Client, config AuthConfig) *AuthService {
	return &AuthService{
		store:  st,
		redis:  redisClient,
		config: config,
		log:    logging.L().Named("auth"),
		now:    time.Now,
	}
}

// SignUp files a pending registration. idDocument is the stored name of the
// uploaded ID card, if any.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest, idDocument string) (models.UserRegistration, error) {
	dob, err := time.Parse(models.DateLayout, req.DateOfBirth)
	if err != nil {
		return models.UserRegistration{}, fmt.Errorf("%w: %v", ErrInvalidDateOfBirth, err)
	}

	hashed, err := s.HashPassword(req.Password)
	if err != nil {
		return models.UserRegistration{}, err
	}

	reg, err := s.store.CreateRegistration(models.UserRegistration{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashed,
		DateOfBirth:  dob,
		PlaceOfBirth: req.PlaceOfBirth,
		Residence:    req.Residence,
		Nationality:  req.Nationality,
		IDCard:       idDocument,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
	})
	if err != nil {
		s.log.Info("sign-up refused", zap.String("email", req.Email), zap.Error(err))
		return models.UserRegistration{}, err
	}

	s.log.Info("registration filed", zap.Int("registration_id", reg.ID), zap.String("email", reg.Email))
	return reg, nil
}

// SignIn authenticates a portal user by email or username.
func (s *AuthService) SignIn(ctx context.Context, login, password string) (AuthResponse, error) {
	return s.signIn(login, password, models.RoleUser)
}

func (s *AuthService) AdminSignIn(ctx context.Context, email, password string) (AuthResponse, error) {
	return s.signIn(email, password, models.RoleAdmin)
}

func (s *AuthService) signIn(login, password string, role models.Role) (AuthResponse, error) {
	u, err := s.store.FindUser(login)
	if err != nil || u.Role != role || !s.VerifyPassword(password, u.PasswordHash) {
		s.log.Info("sign-in failed", zap.String("login", login), zap.String("role", string(role)))
		return AuthResponse{}, models.ErrInvalidCredentials
	}
	if !u.IsActive() {
		return AuthResponse{}, fmt.Errorf("user %d is %s: %w", u.ID, u.Status, models.ErrUserNotActive)
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return AuthResponse{}, err
	}

	s.log.Info("sign-in succeeded", zap.Int("user_id", u.ID), zap.String("role", string(role)))
	return AuthResponse{Token: token, User: u}, nil
}

func (s *AuthService) IssueToken(u models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the bearer token, checks the blacklist and confirms the
// account is still active. A Redis error is logged and the token is
// accepted, since Redis is optional.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if s.redis != nil && claims.ID != "" {
		n, err := s.redis.Exists(ctx, blacklistKey(claims.ID)).Result()
		if err != nil {
			s.log.Warn("blacklist lookup failed", zap.String("jti", claims.ID), zap.Error(err))
		} else if n > 0 {
			return nil, ErrTokenRevoked
		}
	}

	// Tokens outlive deletes and status changes; the account must still be live.
	u, err := s.store.GetUser(claims.UserID)
	if err != nil || !u.IsActive() {
		return nil, fmt.Errorf("user %d: %w", claims.UserID, models.ErrUserNotActive)
	}
	return claims, nil
}

// Logout blacklists the token's jti until the token would expire anyway.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if s.redis == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, blacklistKey(claims.ID), "1", ttl).Err(); err != nil {
		s.log.Error("failed to blacklist token", zap.String("jti", claims.ID), zap.Error(err))
		return err
	}

	s.log.Info("token revoked", zap.Int("user_id", claims.UserID))
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID int) (models.User, error) {
	return s.store.GetUser(userID)
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

// HashPassword returns an argon2id hash encoded as base64(salt)$base64(key).
func (s *AuthService) HashPassword(password string) (string, error) {
	p := s.config.Argon2
	salt := make([]byte, p.SaltLength)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLength)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func (s *AuthService) VerifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	p := s.config.Argon2
	computed := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computed) == 1
}
