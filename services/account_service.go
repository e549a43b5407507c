package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/kendall-kelly/estate-market-api/dto"
	"github.com/kendall-kelly/estate-market-api/logger"
	"github.com/kendall-kelly/estate-market-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

	errInvalidCredentials = newError(ErrUnauthorized, "INVALID_CREDENTIALS", "No active account found with the given credentials.")
	errInvalidToken       = newError(ErrUnauthorized, "INVALID_TOKEN", "Token is invalid or expired.")
	errUserNotFound       = NotFoundError("USER_NOT_FOUND", "User not found.")
)

// AccountService handles signup, login and token lifecycle for local accounts
type AccountService struct {
	db     *gorm.DB
	tokens *TokenManager
	store  TokenStore
}

// NewAccountService creates an account service
func NewAccountService(db *gorm.DB, tokens *TokenManager, store TokenStore) *AccountService {
	return &AccountService{db: db, tokens: tokens, store: store}
}

// Signup registers a new user with a bcrypt-hashed password
func (s *AccountService) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if !usernamePattern.MatchString(username) {
		return nil, ValidationError("Username is required and may contain only letters, digits and @/./+/-/_ characters.")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ValidationError("Enter a valid email address.")
	}
	if len(password) < minPasswordLength {
		return nil, ValidationError(fmt.Sprintf("Password must be at least %d characters.", minPasswordLength))
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if count > 0 {
		return nil, newError(ErrConflict, "USER_EXISTS", "A user with that username or email already exists.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := db.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, newError(ErrConflict, "USER_EXISTS", "A user with that username or email already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Ctx(ctx).Info().Uint(logger.FieldUserID, user.ID).Msg("user signed up")
	return &user, nil
}

// Login checks credentials and issues a token pair
func (s *AccountService) Login(ctx context.Context, username, password string) (*dto.TokenPair, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ValidationError("Username and password are required.")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	access, refresh, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPair{Access: access, Refresh: refresh, Username: user.Username}, nil
}

// Refresh exchanges a valid refresh token for a new pair and revokes the old refresh token
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	if refreshToken == "" {
		return nil, ValidationError("A refresh token is required.")
	}

	claims, err := s.parseRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.Me(ctx, mustUserID(claims))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errInvalidToken
		}
		return nil, err
	}

	if err := s.store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, err
	}

	access, refresh, err := s.tokens.IssuePair(*user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPair{Access: access, Refresh: refresh}, nil
}

// Logout revokes the access token identified by accessJTI and, when given,
// the caller's refresh token
func (s *AccountService) Logout(ctx context.Context, userID uint, accessJTI string, accessExpiry time.Time, refreshToken string) error {
	if accessJTI != "" {
		if err := s.store.Revoke(ctx, accessJTI, accessExpiry); err != nil {
			return err
		}
	}

	if refreshToken == "" {
		return nil
	}

	claims, err := s.parseRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	if mustUserID(claims) != userID {
		return errInvalidToken
	}
	if err := s.store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}

	logger.Ctx(ctx).Info().Uint(logger.FieldUserID, userID).Msg("user logged out")
	return nil
}

// Me returns the user with the given id
func (s *AccountService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *AccountService) parseRefresh(ctx context.Context, raw string) (*TokenClaims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil || claims.TokenType != TokenTypeRefresh || claims.ID == "" {
		return nil, errInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, errInvalidToken
	}

	revoked, err := s.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errInvalidToken
	}
	return claims, nil
}

// mustUserID is only called on claims already checked by parseRefresh
func mustUserID(c *TokenClaims) uint {
	id, _ := c.UserID()
	return id
}
