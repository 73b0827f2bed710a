package handlers

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/sensgen/internal/domain/enums"
	"github.com/ivankudzin/sensgen/internal/pkg/validate"
	authsvc "github.com/ivankudzin/sensgen/internal/services/auth"
	"github.com/ivankudzin/sensgen/internal/services/cooldown"
	"github.com/ivankudzin/sensgen/internal/services/flow"
	ratesvc "github.com/ivankudzin/sensgen/internal/services/rate"
	"github.com/ivankudzin/sensgen/internal/services/sessions"
	"github.com/ivankudzin/sensgen/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/sensgen/internal/transport/http/errors"
)

const ClientIDHeader = "X-Client-Id"

type SessionHandler struct {
	registry *sessions.Registry
	tokens   *authsvc.JWTManager
	limiter  *ratesvc.Limiter
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionHandler(registry *sessions.Registry, tokens *authsvc.JWTManager, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		registry: registry,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *SessionHandler) AttachLimiter(limiter *ratesvc.Limiter) {
	h.limiter = limiter
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil || h.tokens == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return
	}

	clientID := strings.TrimSpace(r.Header.Get(ClientIDHeader))
	if clientID == "" {
		writeBadRequest(w, "CLIENT_ID_REQUIRED", "X-Client-Id header is required")
		return
	}
	if !validate.ClientID(clientID) {
		writeBadRequest(w, "VALIDATION_ERROR", "X-Client-Id must be 1-64 chars of letters, digits, '.', '_' or '-'")
		return
	}

	if h.limiter != nil {
		retryAfter, allowed, err := h.limiter.AllowSession(r.Context(), callerKey(r))
		if err != nil {
			h.logger.Warn("session rate check failed", zap.Error(err))
		} else if !allowed {
			httperrors.WriteRateLimited(w, httperrors.RateLimitError{
				Code:          "TOO_MANY_SESSIONS",
				Message:       "too many sessions opened, try again later",
				RetryAfterSec: retryAfter,
			})
			return
		}
	}

	session, err := h.registry.Create(r.Context(), clientID)
	if err != nil {
		if errors.Is(err, sessions.ErrLimitReached) {
			httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
				Code:    "SESSION_LIMIT_REACHED",
				Message: "server is at capacity, try again later",
			})
			return
		}
		h.logger.Error("create session failed", zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to create session")
		return
	}

	token, expiresAt, err := h.tokens.GenerateSessionToken(session.ID, session.ClientID)
	if err != nil {
		_ = h.registry.Close(session.ID)
		h.logger.Error("sign session token failed", zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to create session")
		return
	}

	snap, err := session.Flow.Snapshot(r.Context())
	if err != nil {
		_ = h.registry.Close(session.ID)
		h.writeFlowError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.CreateSessionResponse{
		SessionID:    session.ID,
		AccessToken:  token,
		ExpiresInSec: maxInt64(0, int64(expiresAt.Sub(h.now()).Seconds())),
		Session:      toSnapshotResponse(snap),
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, ok := h.currentFlow(w, r)
	if !ok {
		return
	}
	h.writeSnapshot(w, r, f)
}

func (h *SessionHandler) SelectPlatform(w http.ResponseWriter, r *http.Request) {
	f, ok := h.currentFlow(w, r)
	if !ok {
		return
	}

	var req dto.SelectPlatformRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := f.SelectPlatform(enums.Platform(req.Platform)); err != nil {
		h.writeFlowError(w, err)
		return
	}
	h.writeSnapshot(w, r, f)
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	f, ok := h.currentFlow(w, r)
	if !ok {
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	err := f.SubmitLogin(r.Context(), flow.LoginInput{
		AccessCode:  req.AccessCode,
		Platform:    enums.Platform(req.Platform),
		DeviceModel: req.DeviceModel,
	})
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	h.writeSnapshot(w, r, f)
}

func (h *SessionHandler) SelectTier(w http.ResponseWriter, r *http.Request) {
	f, ok := h.currentFlow(w, r)
	if !ok {
		return
	}

	var req dto.SelectTierRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := f.SelectTier(enums.SensitivityTier(req.Tier)); err != nil {
		h.writeFlowError(w, err)
		return
	}
	h.writeSnapshot(w, r, f)
}

func (h *SessionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	f, ok := h.currentFlow(w, r)
	if !ok {
		return
	}

	if err := f.RequestGenerate(r.Context()); err != nil {
		h.writeFlowError(w, err)
		return
	}
	h.writeSnapshot(w, r, f)
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	f, ok := h.currentFlow(w, r)
	if !ok {
		return
	}

	f.Logout(r.Context())
	h.writeSnapshot(w, r, f)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.registry == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return
	}

	if err := h.registry.Close(identity.SID); err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			writeNotFound(w, "SESSION_NOT_FOUND", "session not found or expired")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to close session")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *SessionHandler) currentFlow(w http.ResponseWriter, r *http.Request) (*flow.Flow, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return nil, false
	}
	if h.registry == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return nil, false
	}

	session, err := h.registry.Get(identity.SID)
	if err != nil {
		writeNotFound(w, "SESSION_NOT_FOUND", "session not found or expired")
		return nil, false
	}
	if session.ClientID != identity.ClientID {
		writeUnauthorized(w, "UNAUTHORIZED", "token does not match session")
		return nil, false
	}
	return session.Flow, true
}

func (h *SessionHandler) writeSnapshot(w http.ResponseWriter, r *http.Request, f *flow.Flow) {
	snap, err := f.Snapshot(r.Context())
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, toSnapshotResponse(snap))
}

func (h *SessionHandler) writeFlowError(w http.ResponseWriter, err error) {
	var cooldownErr *flow.CooldownError
	switch {
	case errors.As(err, &cooldownErr):
		until := cooldownErr.ExpiresAt.UTC()
		httperrors.WriteRateLimited(w, httperrors.RateLimitError{
			Code:          "COOLDOWN_ACTIVE",
			Message:       "next profile available in " + cooldown.FormatRemaining(cooldownErr.Remaining),
			RetryAfterSec: maxInt64(1, cooldown.CeilSeconds(cooldownErr.Remaining)),
			CooldownUntil: &until,
		})
	case errors.Is(err, flow.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, flow.ErrAccessDenied):
		writeUnauthorized(w, "ACCESS_DENIED", "invalid access code")
	case errors.Is(err, flow.ErrBusy):
		writeConflict(w, "FLOW_BUSY", "please wait for the current step to finish")
	case errors.Is(err, flow.ErrInvalidTransition):
		writeConflict(w, "INVALID_TRANSITION", "action is not available in the current state")
	case errors.Is(err, flow.ErrClosed):
		writeNotFound(w, "SESSION_NOT_FOUND", "session not found or expired")
	default:
		h.logger.Error("flow operation failed", zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func callerKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
