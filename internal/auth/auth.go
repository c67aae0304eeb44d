package auth

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"prefs-service/internal/problem"
)

// subjectClaim names the identity token claim carrying the user id.
const subjectClaim = "sub"

const contextUserIDKey = "auth.userID"

// Middleware verifies the bearer token on each request and attaches the
// caller's identity to the context. Requests without credentials are
// rejected with 401; requests with malformed or unverifiable credentials
// with 403. Either way the handler chain stops before any repository access.
func Middleware(jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			problem.Abort(c, problem.Unauthenticated("missing bearer token"))
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			problem.Abort(c, problem.Forbidden("malformed authorization header"))
			return
		}

		userID, err := extractUserID(strings.TrimSpace(token), secret)
		if err != nil {
			problem.Abort(c, err)
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

// UserID returns the verified identity attached by Middleware.
func UserID(c *gin.Context) (string, error) {
	userID, ok := c.Value(contextUserIDKey).(string)
	if !ok || userID == "" {
		return "", problem.Unauthenticated("no verified identity on request")
	}
	return userID, nil
}

func extractUserID(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", problem.Forbidden("invalid bearer token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", problem.Forbidden("invalid token claims")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", problem.Unauthenticated(subjectClaim + " claim is missing")
	}
	return subject, nil
}
