package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/bikeshare-insights/pkg/logger"
	"github.com/jengzang/bikeshare-insights/pkg/response"
)

// SubjectKey is the gin context key holding the token subject
const SubjectKey = "auth_subject"

var errMissingToken = errors.New("missing bearer token")

// Auth requires an HS256 bearer token signed with secret. An empty secret
// disables the check.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		claims, err := parseBearer(parser, key, c.GetHeader("Authorization"))
		if err != nil {
			logger.Warnf("rejected %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			response.Abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			c.Set(SubjectKey, sub)
		}
		c.Next()
	}
}

func parseBearer(parser *jwt.Parser, key []byte, header string) (jwt.MapClaims, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, errMissingToken
	}

	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// SignToken issues an HS256 token for subject, used by operators and tests
func SignToken(secret, subject string, claims jwt.MapClaims) (string, error) {
	all := jwt.MapClaims{"sub": subject}
	for k, v := range claims {
		all[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, all).SignedString([]byte(secret))
}
