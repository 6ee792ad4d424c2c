package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
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

const (
	verifyTokenTTL = 48 * time.Hour
	resetTokenTTL  = time.Hour
)

var errMailDisabled = errors.New("account mail is not configured")

// AccountMailer delivers account mail. notify.Mailer satisfies it.
type AccountMailer interface {
	Notify(ctx context.Context, recipients []string, subject, body string) error
}

type ProfileUpdate struct {
	DisplayName *string
	Email       *string
	// CurrentPassword is required together with NewPassword.
	CurrentPassword string
	NewPassword     string
}

// VerifyEmail consumes a verification token of userID. It reports true
// when the address had already been verified.
func (h *AuthService) VerifyEmail(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	user, err := h.Repo.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.EmailVerified {
		return true, nil
	}

	err = h.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		t, err := tx.ConsumeUserToken(ctx, models.TokenPurposeVerifyEmail, tokens.Sha256Hex(token), h.now())
		if err != nil {
			return err
		}
		if t.UserID != userID {
			return domain.ErrInvalidToken
		}
		return tx.MarkEmailVerified(ctx, userID)
	})
	return false, err
}

// ResendVerification mails a fresh verification link. Unknown and already
// verified addresses are ignored so the caller learns nothing about them.
func (h *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := h.Repo.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	return h.sendVerification(ctx, user)
}

// RequestPasswordReset mails a reset link to email when it belongs to a user.
func (h *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_request")
	if h.Mailer == nil {
		return errMailDisabled
	}

	user, err := h.Repo.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		l.Info("reset_requested_for_unknown_email")
		return nil
	}
	if err != nil {
		return err
	}

	raw, err := h.issueUserToken(ctx, user.ID, models.TokenPurposeResetPassword, resetTokenTTL)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/reset-password?email=%s&token=%s", h.baseURL(), url.QueryEscape(user.Email), raw)
	body := fmt.Sprintf("Someone asked to reset the password of your account.\n\n"+
		"Open this link within %s to choose a new one:\n%s\n\n"+
		"If it was not you, ignore this message.\n", resetTokenTTL, link)
	return h.Mailer.Notify(ctx, []string{user.Email}, "Password reset", body)
}

// ResetPassword sets a new password with a token from RequestPasswordReset
// and signs the user out everywhere.
func (h *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, err := h.Repo.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrInvalidToken
	}
	if err != nil {
		return err
	}

	pwHash, err := pkghash.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return h.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		t, err := tx.ConsumeUserToken(ctx, models.TokenPurposeResetPassword, tokens.Sha256Hex(token), h.now())
		if err != nil {
			return err
		}
		if t.UserID != user.ID {
			return domain.ErrInvalidToken
		}
		user.PasswordHash = pwHash
		// the link reached the mailbox
		user.EmailVerified = true
		if err := tx.UpdateUser(ctx, user); err != nil {
			return err
		}
		return tx.RevokeUserRefreshTokens(ctx, user.ID)
	})
}

// UpdateProfile changes the display name, email and password of userID.
// A new email must be verified again.
func (h *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_profile", "user_id", userID)

	user, err := h.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*upd.DisplayName)
	}

	emailChanged := false
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
		}
		if email != user.Email {
			if _, err := h.Repo.UserByEmail(ctx, email); err == nil {
				return nil, fmt.Errorf("%w: user %s already exists", domain.ErrConflict, email)
			} else if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			user.Email = email
			user.EmailVerified = false
			emailChanged = true
		}
	}

	if upd.CurrentPassword != "" || upd.NewPassword != "" {
		if upd.CurrentPassword == "" || upd.NewPassword == "" {
			return nil, fmt.Errorf("%w: current_password and new_password go together", domain.ErrValidation)
		}
		if !pkghash.CheckPassword(user.PasswordHash, upd.CurrentPassword) {
			return nil, domain.ErrInvalidCredentials
		}
		if err := validatePassword(upd.NewPassword); err != nil {
			return nil, err
		}
		if user.PasswordHash, err = pkghash.HashPassword(upd.NewPassword); err != nil {
			return nil, err
		}
	}

	if err := h.Repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	if emailChanged {
		if err := h.sendVerification(ctx, user); err != nil {
			l.Warn("verification_mail_failed", "error", err)
		}
	}
	return user, nil
}

func (h *AuthService) sendVerification(ctx context.Context, user *models.User) error {
	if h.Mailer == nil {
		return nil
	}
	raw, err := h.issueUserToken(ctx, user.ID, models.TokenPurposeVerifyEmail, verifyTokenTTL)
	if err != nil {
		return err
	}

	name := user.DisplayName
	if name == "" {
		name = user.Email
	}
	link := fmt.Sprintf("%s/auth/verify?id=%s&token=%s", h.baseURL(), user.ID, raw)
	body := fmt.Sprintf("Hello %s,\n\nThanks for signing up. Open this link to verify your account:\n%s\n", name, link)
	return h.Mailer.Notify(ctx, []string{user.Email}, "Verify your account", body)
}

func (h *AuthService) issueUserToken(ctx context.Context, userID uuid.UUID, purpose string, ttl time.Duration) (string, error) {
	raw, err := tokens.NewOneTimeToken()
	if err != nil {
		return "", err
	}
	err = h.Repo.SaveUserToken(ctx, &models.UserToken{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: tokens.Sha256Hex(raw),
		ExpiresAt: h.now().Add(ttl),
	})
	if err != nil {
		return "", err
	}
	return raw, nil
}

func (h *AuthService) baseURL() string {
	return strings.TrimRight(h.BaseURL, "/")
}
