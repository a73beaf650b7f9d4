package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/pkg/auth"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
	"github.com/jwalitptl/scheduling-api/pkg/httputil"
)

const (
	ContextSession  = "session_claims"
	ContextClinicID = "clinic_id"
)

var errMissingToken = errors.New("missing session token")

// SessionAuth verifies dashboard session tokens.
type SessionAuth struct {
	jwt    auth.JWTService
	cookie string
}

func NewSessionAuth(jwt auth.JWTService, cookieName string) *SessionAuth {
	return &SessionAuth{jwt: jwt, cookie: cookieName}
}

// Authenticate reads the token from the Authorization header or the
// session cookie and stores the claims in the context.
func (m *SessionAuth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.claims(c)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			return
		}
		c.Set(ContextSession, claims)
		c.Next()
	}
}

// Optional stores valid claims but never rejects the request.
func (m *SessionAuth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := m.claims(c); err == nil {
			c.Set(ContextSession, claims)
		}
		c.Next()
	}
}

// RequireClinic checks that the clinic named by the path parameter is one
// of the session's clinics.
func (m *SessionAuth) RequireClinic(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID, err := uuid.Parse(c.Param(param))
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation(map[string]string{param: "must be a UUID"}))
			return
		}

		claims, ok := Session(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized(errMissingToken))
			return
		}
		if !claims.HasClinic(clinicID) {
			httputil.RespondWithError(c, apperrors.Forbidden("clinic not accessible"))
			return
		}

		c.Set(ContextClinicID, clinicID)
		c.Next()
	}
}

func (m *SessionAuth) claims(c *gin.Context) (*auth.SessionClaims, error) {
	token := ""
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return nil, errors.New("invalid authorization format")
		}
		token = strings.TrimSpace(parts[1])
	} else if m.cookie != "" {
		token, _ = c.Cookie(m.cookie)
	}
	if token == "" {
		return nil, errMissingToken
	}
	return m.jwt.ValidateToken(token)
}

// Session returns the claims stored by Authenticate or Optional.
func Session(c *gin.Context) (*auth.SessionClaims, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.SessionClaims)
	return claims, ok
}

// ClinicID returns the clinic verified by RequireClinic.
func ClinicID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextClinicID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
