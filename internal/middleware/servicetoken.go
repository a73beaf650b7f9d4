package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
	"github.com/jwalitptl/scheduling-api/pkg/httputil"
	"github.com/jwalitptl/scheduling-api/pkg/security"
)

const HeaderAPIKey = "x-api-key"

var errIntegrationDisabled = errors.New("integration token not configured")

// ServiceToken guards the automation API with one static token whose
// bcrypt hash is configured. Verified tokens are remembered by digest.
type ServiceToken struct {
	hash     string
	hasher   security.TokenHasher
	verified *cache.Cache
}

func NewServiceToken(hash string, hasher security.TokenHasher, ttl time.Duration) *ServiceToken {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ServiceToken{
		hash:     hash,
		hasher:   hasher,
		verified: cache.New(ttl, 2*ttl),
	}
}

func (m *ServiceToken) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.verify(c.GetHeader(HeaderAPIKey)); err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			return
		}
		c.Next()
	}
}

func (m *ServiceToken) verify(token string) error {
	if m.hash == "" {
		return errIntegrationDisabled
	}
	if token == "" {
		return errMissingToken
	}

	sum := sha256.Sum256([]byte(token))
	key := hex.EncodeToString(sum[:])
	if _, ok := m.verified.Get(key); ok {
		return nil
	}

	if err := m.hasher.Compare(m.hash, token); err != nil {
		return err
	}
	m.verified.SetDefault(key, struct{}{})
	return nil
}
