package authhandler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"costos/internal/domain/audit"
	"costos/internal/domain/auth"
	"costos/internal/domain/professional"
	cryptoutil "costos/internal/platform/crypto"
	"costos/internal/platform/email"
	"costos/internal/platform/requestctx"
	"costos/internal/transport/http/api"
	"costos/internal/transport/http/middleware"
	"costos/internal/transport/http/shared"
)

const (
	sessionTTL     = 8 * time.Hour
	defaultBaseURL = "http://localhost:8080"
	mfaIssuer      = "Costos"
)

// AccountRegistrar creates professional accounts for self sign-up.
type AccountRegistrar interface {
	Register(ctx context.Context, in professional.AccountInput, companyID string) (string, error)
}

type Handler struct {
	Service   *auth.Service
	Secret    string
	Crypto    *cryptoutil.Service
	Mailer    email.Mailer
	EmailFrom string
	BaseURL   string
	ResetTTL  time.Duration
	Audit     shared.Auditor

	registrar AccountRegistrar
}

func NewHandler(service *auth.Service, secret string, crypto *cryptoutil.Service, mailer email.Mailer, emailFrom, baseURL string, resetTTL time.Duration, auditSvc *audit.Service) *Handler {
	if resetTTL <= 0 {
		resetTTL = 2 * time.Hour
	}
	h := &Handler{
		Service:   service,
		Secret:    secret,
		Crypto:    crypto,
		Mailer:    mailer,
		EmailFrom: emailFrom,
		BaseURL:   baseURL,
		ResetTTL:  resetTTL,
	}
	if auditSvc != nil {
		h.Audit = auditSvc
	}
	return h
}

// EnableSignup exposes POST /auth/signup backed by registrar.
func (h *Handler) EnableSignup(registrar AccountRegistrar) {
	h.registrar = registrar
}

// RegisterPublicRoutes mounts the endpoints reachable without a token.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/refresh", h.HandleRefresh)
	r.Post("/auth/request-reset", h.HandleRequestReset)
	r.Post("/auth/reset", h.HandleResetPassword)
	if h.registrar != nil {
		r.Post("/auth/signup", h.HandleSignup)
	}
}

// RegisterRoutes mounts the endpoints that need an authenticated caller.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
	r.Post("/auth/mfa/setup", h.HandleMFASetup)
	r.Post("/auth/mfa/enable", h.HandleMFAEnable)
	r.Post("/auth/mfa/disable", h.HandleMFADisable)
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload loginRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	user, err := h.Service.FindActiveUserByLogin(r.Context(), strings.TrimSpace(payload.Login))
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err := auth.CheckPassword(user.Password, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}

	if user.MFAEnabled {
		if payload.MFACode == "" {
			api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", requestID)
			return
		}
		secret, err := h.mfaSecret(user.MFASecretEn)
		if err != nil {
			api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa configuration", requestID)
			return
		}
		if secret == "" || !totp.Validate(payload.MFACode, secret) {
			api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", requestID)
			return
		}
	}

	sessionID, err := generateToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}
	if err := h.Service.CreateSession(r.Context(), user.ID, auth.HashToken(sessionID), time.Now().Add(sessionTTL)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to start session", requestID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: user.ID, RoleID: user.RoleID, RoleName: user.RoleName, SessionID: sessionID}, sessionTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}

	if err := h.Service.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":        user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"companyId": user.CompanyID,
			"roleId":    user.RoleID,
			"role":      user.RoleName,
		},
	}, requestID)
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload professional.AccountInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	payload.Email = strings.TrimSpace(payload.Email)

	v := shared.NewValidator()
	v.Struct(payload)
	if err := validateResetPassword(payload.Password); err != nil && payload.Password != "" {
		v.Add("password", err.Error())
	}
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.registrar.Register(r.Context(), payload, "")
	if err != nil {
		shared.FailDomain(w, requestID, err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		ActorID:    id,
		Action:     "auth.signup",
		EntityType: "professional",
		EntityID:   id,
		After:      map[string]string{"username": payload.Username, "email": payload.Email},
	})
	api.Created(w, map[string]string{"id": id, "username": payload.Username}, requestID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.GetUser(r.Context()); ok && user.SessionID != "" {
		if err := h.Service.RevokeSession(r.Context(), user.UserID, auth.HashToken(user.SessionID)); err != nil {
			slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, requestctx.GetRequestID(r.Context()))
}

// HandleRefresh trades a still-valid session for a new token and rotates
// the session id.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	claims, err := auth.ParseToken(h.Secret, parts[1])
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	valid, err := h.Service.SessionValid(r.Context(), claims.UserID, auth.HashToken(claims.SessionID))
	if err != nil || !valid {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "session expired", requestID)
		return
	}

	newSessionID, err := generateToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to rotate session", requestID)
		return
	}
	if err := h.Service.RotateSession(r.Context(), claims.UserID, auth.HashToken(claims.SessionID), auth.HashToken(newSessionID), time.Now().Add(sessionTTL)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to rotate session", requestID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:    claims.UserID,
		RoleID:    claims.RoleID,
		RoleName:  claims.RoleName,
		SessionID: newSessionID,
	}, sessionTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}
	api.Success(w, map[string]any{"token": token}, requestID)
}

func (h *Handler) HandleMFASetup(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	if !h.cryptoReady() {
		api.Fail(w, http.StatusBadRequest, "mfa_unavailable", "mfa requires encryption key", requestID)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      mfaIssuer,
		AccountName: user.UserID,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to generate mfa secret", requestID)
		return
	}
	secret := key.Secret()
	encrypted, err := h.Crypto.EncryptString(secret)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to store mfa secret", requestID)
		return
	}
	if err := h.Service.UpdateMFASecret(r.Context(), user.UserID, encrypted); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to store mfa secret", requestID)
		return
	}

	api.Success(w, map[string]string{"secret": secret, "otpauthUrl": key.URL()}, requestID)
}

func (h *Handler) HandleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, true)
}

func (h *Handler) HandleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, false)
}

// toggleMFA flips the flag only after the caller proves they hold the
// current secret.
func (h *Handler) toggleMFA(w http.ResponseWriter, r *http.Request, enabled bool) {
	requestID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	if !h.cryptoReady() {
		api.Fail(w, http.StatusBadRequest, "mfa_unavailable", "mfa requires encryption key", requestID)
		return
	}
	var payload mfaCodeRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	secretEnc, err := h.Service.GetMFASecret(r.Context(), user.UserID)
	if err != nil || len(secretEnc) == 0 {
		api.Fail(w, http.StatusBadRequest, "mfa_missing", "mfa setup required", requestID)
		return
	}
	secret, err := h.Crypto.DecryptString(secretEnc)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa secret", requestID)
		return
	}
	if !totp.Validate(payload.Code, secret) {
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa code", requestID)
		return
	}

	status, action := "disabled", "auth.mfa_disable"
	if enabled {
		status, action = "enabled", "auth.mfa_enable"
	}
	if err := h.Service.SetMFAEnabled(r.Context(), user.UserID, enabled); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_update_failed", "failed to update mfa", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		CompanyID:  user.CompanyID,
		ActorID:    user.UserID,
		Action:     action,
		EntityType: "user",
		EntityID:   user.UserID,
	})
	api.Success(w, map[string]string{"status": status}, requestID)
}

// HandleRequestReset answers the same way whether or not the address is
// known so accounts cannot be enumerated.
func (h *Handler) HandleRequestReset(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload resetRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	address := strings.TrimSpace(payload.Email)

	userID, err := h.Service.UserIDByEmail(r.Context(), address)
	if err == nil {
		h.sendReset(r, userID, address)
	}
	api.Success(w, map[string]string{"status": "reset_requested"}, requestID)
}

func (h *Handler) sendReset(r *http.Request, userID, address string) {
	token, err := generateToken()
	if err != nil {
		slog.Warn("password reset token generation failed", "userId", userID, "err", err)
		return
	}
	if err := h.Service.CreatePasswordReset(r.Context(), userID, auth.HashToken(token), time.Now().Add(h.ResetTTL)); err != nil {
		slog.Warn("password reset insert failed", "userId", userID, "err", err)
		return
	}
	if h.Mailer == nil {
		return
	}
	body := buildResetEmailMessage(buildResetLink(h.BaseURL, token), h.ResetTTL)
	if err := h.Mailer.Send(r.Context(), h.EmailFrom, address, "Password reset", body); err != nil {
		slog.Warn("password reset email failed", "userId", userID, "err", err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		ActorID:    userID,
		Action:     "auth.reset_requested",
		EntityType: "user",
		EntityID:   userID,
	})
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload resetPasswordRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if err := validateResetPassword(payload.NewPassword); err != nil {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "newPassword", Reason: err.Error()}})
		return
	}

	tokenHash := auth.HashToken(payload.Token)
	userID, err := h.Service.PasswordResetUserID(r.Context(), tokenHash)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired token", requestID)
		return
	}

	hash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to update password", requestID)
		return
	}
	if err := h.Service.ResetPassword(r.Context(), userID, tokenHash, hash); err != nil {
		api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update password", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		ActorID:    userID,
		Action:     "auth.password_reset",
		EntityType: "user",
		EntityID:   userID,
	})
	api.Success(w, map[string]string{"status": "password_reset"}, requestID)
}

func (h *Handler) cryptoReady() bool {
	return h.Crypto != nil && h.Crypto.Configured()
}

// mfaSecret falls back to the raw column when no encryption key is set.
func (h *Handler) mfaSecret(sealed []byte) (string, error) {
	if h.cryptoReady() {
		return h.Crypto.DecryptString(sealed)
	}
	return string(sealed), nil
}

func validateResetPassword(password string) error {
	if len(password) < 8 {
		return errors.New("must be at least 8 characters")
	}
	var upper, lower, digit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errors.New("must contain an uppercase letter, a lowercase letter and a digit")
	}
	return nil
}

func buildResetLink(baseURL, token string) string {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		base, _ = url.Parse(defaultBaseURL)
	}
	base.Path = strings.TrimRight(base.Path, "/") + "/reset"
	base.RawQuery = url.Values{"token": []string{token}}.Encode()
	return base.String()
}

func buildResetEmailMessage(link string, ttl time.Duration) string {
	hours := int(ttl.Hours())
	if hours < 1 {
		hours = 1
	}
	return fmt.Sprintf("A password reset was requested for your account.\n\nOpen this link to choose a new password:\n%s\n\nThe link expires in %d hour(s). If you did not ask for it, ignore this message.\n", link, hours)
}

func generateToken() (string, error) {
	buff := make([]byte, 32)
	if _, err := rand.Read(buff); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buff), nil
}
