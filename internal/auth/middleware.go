// Package auth verifies the marketplace bearer token on wizard requests.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"buildmarket/project-wizard/wizard-backend/internal/projectapi"
)

const (
	userIDKey = "auth.user_id"

	// AnonymousUser owns every session when token verification is disabled.
	AnonymousUser = "anonymous"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Verifier checks HS256 tokens issued by the marketplace
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a verifier for secret. An empty secret disables
// verification.
func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Enabled reports whether tokens are verified
func (v *Verifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify parses raw and returns its subject.
func (v *Verifier) Verify(raw string) (string, error) {
	if raw == "" {
		return "", ErrMissingToken
	}
	claims := &jwt.RegisteredClaims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// token subject as the user ID. The raw token is forwarded to the project API.
func Middleware(v *Verifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.Request)

		if !v.Enabled() {
			c.Set(userIDKey, AnonymousUser)
			if raw != "" {
				c.Request = c.Request.WithContext(projectapi.WithBearer(c.Request.Context(), raw))
			}
			c.Next()
			return
		}

		// Browsers can't set headers on a websocket upgrade.
		if raw == "" && websocketUpgrade(c.Request) {
			raw = c.Query("access_token")
		}

		userID, err := v.Verify(raw)
		if err != nil {
			logger.Debug("Rejected request", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(userIDKey, userID)
		c.Request = c.Request.WithContext(projectapi.WithBearer(c.Request.Context(), raw))
		c.Next()
	}
}

// UserID returns the authenticated user of the request
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
