package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	pkghash "github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const minPasswordLen = 8

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	Now           func() time.Time

	// Mailer delivers verification and password reset links. Without it
	// no account mail is sent.
	Mailer AccountMailer
	// BaseURL prefixes the links in account mail.
	BaseURL string
	// RequireVerifiedEmail rejects logins until the email is verified.
	RequireVerifiedEmail bool
}

func (h *AuthService) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *AuthService) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := h.Repo.UserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: user %s already exists", domain.ErrConflict, email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	pwHash, err := pkghash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := h.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	if err := h.sendVerification(ctx, user); err != nil {
		l.Warn("verification_mail_failed", "user_id", user.ID, "error", err)
	}
	return user, nil
}

func (h *AuthService) Login(ctx context.Context, email, password string) (*tokens.Pair, error) {
	user, err := h.Repo.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !pkghash.CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	if h.RequireVerifiedEmail && !user.EmailVerified {
		return nil, domain.ErrEmailNotVerified
	}
	return h.issue(ctx, h.Repo, user)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued in the same transaction.
func (h *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, h.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	var pair *tokens.Pair
	err = h.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		stored, err := tx.ConsumeRefreshToken(ctx, claims.ID, h.now())
		if err != nil {
			return err
		}
		if stored.TokenHash != tokens.Sha256Hex(refreshToken) {
			return fmt.Errorf("%w: refresh token mismatch", domain.ErrUnauthorized)
		}
		user, err := tx.GetUser(ctx, stored.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: user is gone", domain.ErrUnauthorized)
		}
		if err != nil {
			return err
		}
		pair, err = h.issue(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (h *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, h.RefreshSecret)
	if err != nil {
		return nil
	}
	return h.Repo.RevokeRefreshToken(ctx, claims.ID)
}

func (h *AuthService) issue(ctx context.Context, r *repo.GormRepo, user *models.User) (*tokens.Pair, error) {
	now := h.now()
	accessExp := now.Add(tokens.AccessTTL)
	refreshExp := now.Add(tokens.RefreshTTL)

	access, err := tokens.NewAccessToken(user.ID.String(), user.Role, accessExp, h.JWTSecret)
	if err != nil {
		return nil, err
	}
	refresh, jti, err := tokens.NewRefreshToken(user.ID.String(), refreshExp, h.RefreshSecret)
	if err != nil {
		return nil, err
	}

	if err := r.SaveRefreshToken(ctx, &models.RefreshToken{
		UserID:    user.ID,
		JTI:       jti,
		TokenHash: tokens.Sha256Hex(refresh),
		ExpiresAt: refreshExp,
	}); err != nil {
		return nil, err
	}

	return &tokens.Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		Role:         user.Role,
	}, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must have at least %d characters", domain.ErrValidation, minPasswordLen)
	}
	if len(password) > pkghash.MaxPasswordBytes {
		return fmt.Errorf("%w: password must have at most %d bytes", domain.ErrValidation, pkghash.MaxPasswordBytes)
	}
	return nil
}

// UserID parses the subject set by the auth middleware.
func UserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", domain.ErrUnauthorized)
	}
	return id, nil
}
