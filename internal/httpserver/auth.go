package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_error", "invalid body", err)
	}

	u, err := h.Svc.Register(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", u.ID)
	return c.JSON(http.StatusCreated, u)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}

	pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	for _, ck := range pair.Cookies() {
		c.SetCookie(ck)
	}
	l.Info("login_successful")
	return c.JSON(http.StatusOK, transport.LoginResponse{IsAdmin: pair.Role == models.RoleAdmin})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	ck, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || ck.Value == "" {
		l.Warn("refresh_failed", "status", http.StatusUnauthorized, "reason", "refresh token missing")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	pair, err := h.Svc.Refresh(ctx, ck.Value)
	if err != nil {
		c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
		c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
		return fail(l, "refresh_failed", err)
	}

	for _, ck := range pair.Cookies() {
		c.SetCookie(ck)
	}
	return c.JSON(http.StatusOK, transport.LoginResponse{IsAdmin: pair.Role == models.RoleAdmin})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		if err := h.Svc.Logout(ctx, ck.Value); err != nil {
			l.Error("logout_failed", "status", http.StatusInternalServerError, "reason", "cannot revoke refresh token", "error", err)
		}
	}

	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
	l.Info("successful_logout")
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) VerifyEmail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_verify")

	id, err := uuid.Parse(c.QueryParam("id"))
	if err != nil {
		return badRequest(l, "verify_error", "invalid id", err)
	}
	token := c.QueryParam("token")
	if token == "" {
		return badRequest(l, "verify_error", "token is required", nil)
	}

	already, err := h.Svc.VerifyEmail(ctx, id, token)
	if err != nil {
		return fail(l, "verify_error", err)
	}
	if already {
		return c.JSON(http.StatusOK, transport.MessageResponse{Message: "email was already verified"})
	}
	l.Info("email_verified", "user_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "email verified, you can sign in now"})
}

func (h *AuthHTTP) ResendVerification(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_verify_resend")

	var req transport.EmailRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "verify_resend_error", "invalid body", err)
	}
	if err := h.Svc.ResendVerification(ctx, req.Email); err != nil {
		return fail(l, "verify_resend_error", err)
	}
	return c.JSON(http.StatusAccepted, transport.MessageResponse{Message: "if the account exists, a verification link was sent"})
}

func (h *AuthHTTP) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_reset_request")

	var req transport.EmailRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "reset_request_error", "invalid body", err)
	}
	if err := h.Svc.RequestPasswordReset(ctx, req.Email); err != nil {
		return fail(l, "reset_request_error", err)
	}
	return c.JSON(http.StatusAccepted, transport.MessageResponse{Message: "if the account exists, a reset link was sent"})
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_reset_password")

	var req transport.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "reset_password_error", "invalid body", err)
	}
	if err := h.Svc.ResetPassword(ctx, req.Email, req.Token, req.NewPassword); err != nil {
		return fail(l, "reset_password_error", err)
	}
	l.Info("password_reset")
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_update_profile")

	uid, err := userID(c)
	if err != nil {
		l.Warn("update_profile_error", "status", http.StatusUnauthorized, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.ProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_profile_error", "invalid body", err)
	}

	u, err := h.Svc.UpdateProfile(ctx, uid, service.ProfileUpdate{
		DisplayName:     req.DisplayName,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return fail(l, "update_profile_error", err)
	}
	l.Info("profile_updated", "user_id", uid)
	return c.JSON(http.StatusOK, u)
}
