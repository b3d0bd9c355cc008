package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/Rounit002/demohavenn/internal/domain/library"
	"github.com/Rounit002/demohavenn/internal/session"
)

// Authenticator resolves the principal a request is acting as. An anonymous
// request yields the zero principal and no error; errors mean the session
// backend failed.
type Authenticator interface {
	Authenticate(c *gin.Context) (library.Principal, error)
}

// SessionAuthenticator reads the session token from the request and looks the
// principal up in the session store. One store read per request; gates share
// the result through the gin context.
type SessionAuthenticator struct {
	store      session.Store
	cookieName string
}

func NewSessionAuthenticator(store session.Store, cookieName string) *SessionAuthenticator {
	if cookieName == "" {
		cookieName = "library_session"
	}
	return &SessionAuthenticator{store: store, cookieName: cookieName}
}

func (a *SessionAuthenticator) Authenticate(c *gin.Context) (library.Principal, error) {
	token := a.Token(c)
	if token == "" {
		return library.Principal{}, nil
	}
	return a.store.Get(c.Request.Context(), token)
}

// Token returns the client-presented session token. Cookie first; the
// X-Session-Token header serves non-browser clients.
func (a *SessionAuthenticator) Token(c *gin.Context) string {
	if cookie, err := c.Cookie(a.cookieName); err == nil && cookie != "" {
		return cookie
	}
	return c.GetHeader("X-Session-Token")
}

func (a *SessionAuthenticator) CookieName() string {
	return a.cookieName
}

func (a *SessionAuthenticator) Store() session.Store {
	return a.store
}
