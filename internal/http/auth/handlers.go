package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rounit002/demohavenn/internal/domain/library"
	"github.com/Rounit002/demohavenn/internal/http/common"
	"github.com/Rounit002/demohavenn/internal/ratelimit"
	"github.com/Rounit002/demohavenn/internal/session"
	"github.com/Rounit002/demohavenn/internal/usecase"
)

type HandlerConfig struct {
	CookieName   string
	CookieMaxAge int
	CookieSecure bool
	LoginLimit   int
	LoginWindow  int // seconds
}

// Handler owns the session lifecycle endpoints. Login mints a fresh token,
// destroys any session the client already presented, and sets the cookie;
// logout clears the cookie on every exit path before reporting store errors.
type Handler struct {
	service       *usecase.AuthService
	authenticator *SessionAuthenticator
	limiter       ratelimit.Limiter
	cfg           HandlerConfig
}

func NewHandler(service *usecase.AuthService, authenticator *SessionAuthenticator, limiter ratelimit.Limiter, cfg HandlerConfig) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = authenticator.CookieName()
	}
	if cfg.CookieMaxAge <= 0 {
		cfg.CookieMaxAge = 24 * 60 * 60
	}
	return &Handler{
		service:       service,
		authenticator: authenticator,
		limiter:       limiter,
		cfg:           cfg,
	}
}

func (h *Handler) HandleRegister(c *gin.Context) {
	var req struct {
		LibraryName string `json:"library_name"`
		LibraryCode string `json:"library_code"`
		OwnerName   string `json:"owner_name"`
		OwnerEmail  string `json:"owner_email"`
		Password    string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	principal, err := h.service.RegisterOwner(c.Request.Context(), usecase.RegisterOwnerInput{
		LibraryName: req.LibraryName,
		LibraryCode: req.LibraryCode,
		OwnerName:   req.OwnerName,
		OwnerEmail:  req.OwnerEmail,
		Password:    req.Password,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	if !h.establishSession(c, principal) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"principal": common.ToPrincipalResponse(principal)})
}

func (h *Handler) HandleOwnerLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if !h.allowLogin(c, "owner") {
		return
	}
	principal, err := h.service.LoginOwner(c.Request.Context(), req.Email, req.Password)
	h.finishLogin(c, principal, err)
}

func (h *Handler) HandleUserLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if !h.allowLogin(c, "user") {
		return
	}
	principal, err := h.service.LoginUser(c.Request.Context(), req.Username, req.Password)
	h.finishLogin(c, principal, err)
}

func (h *Handler) HandleStudentLogin(c *gin.Context) {
	var req struct {
		RegistrationNo string `json:"registration_no"`
		Password       string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if !h.allowLogin(c, "student") {
		return
	}
	principal, err := h.service.LoginStudent(c.Request.Context(), req.RegistrationNo, req.Password)
	h.finishLogin(c, principal, err)
}

// HandleStatus is an idempotent read of the current session principal.
func (h *Handler) HandleStatus(c *gin.Context) {
	principal, ok := authenticate(c, h.authenticator)
	if !ok {
		return
	}
	if principal.IsAnonymous() {
		rejectUnauthenticated(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"principal": common.ToPrincipalResponse(principal)})
}

// HandleRefresh re-fetches the canonical role and permissions and overwrites
// the session copy, so grants take effect without a re-login.
func (h *Handler) HandleRefresh(c *gin.Context) {
	principal, ok := authenticate(c, h.authenticator)
	if !ok {
		return
	}
	if principal.IsAnonymous() {
		rejectUnauthenticated(c)
		return
	}
	refreshed, err := h.service.Refresh(c.Request.Context(), principal)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	token := h.authenticator.Token(c)
	if err := h.authenticator.Store().Set(c.Request.Context(), token, refreshed); err != nil {
		common.WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"principal": common.ToPrincipalResponse(refreshed)})
}

func (h *Handler) HandleLogout(c *gin.Context) {
	token := h.authenticator.Token(c)
	// Invalidate the client cookie before touching the store so a failed
	// destroy still leaves the client logged out.
	h.clearCookie(c)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
		return
	}
	if err := h.authenticator.Store().Destroy(c.Request.Context(), token); err != nil {
		common.WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (h *Handler) finishLogin(c *gin.Context, principal library.Principal, err error) {
	if err != nil {
		common.WriteError(c, err)
		return
	}
	if !h.establishSession(c, principal) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"principal": common.ToPrincipalResponse(principal)})
}

func (h *Handler) establishSession(c *gin.Context, principal library.Principal) bool {
	ctx := c.Request.Context()
	if prior := h.authenticator.Token(c); prior != "" {
		// Best effort: a stale token the client still presents should not
		// outlive the new login.
		_ = h.authenticator.Store().Destroy(ctx, prior)
	}
	token, err := session.NewToken()
	if err != nil {
		common.WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return false
	}
	if err := h.authenticator.Store().Set(ctx, token, principal); err != nil {
		common.WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, h.cfg.CookieMaxAge, "/", "", h.cfg.CookieSecure, true)
	return true
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.CookieSecure, true)
}

func (h *Handler) allowLogin(c *gin.Context, kind string) bool {
	if h.limiter == nil || h.cfg.LoginLimit <= 0 {
		return true
	}
	window := h.cfg.LoginWindow
	if window <= 0 {
		window = 60
	}
	decision, err := h.limiter.Allow(c.Request.Context(), "login:"+kind+":"+c.ClientIP(), h.cfg.LoginLimit, secondsToDuration(window))
	if err != nil {
		common.WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return false
	}
	if !decision.Allowed {
		common.WriteErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many login attempts")
		return false
	}
	return true
}

func secondsToDuration(secs int) time.Duration {
	return time.Duration(secs) * time.Second
}
