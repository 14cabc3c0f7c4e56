package utils

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tnqbao/gau-catalog-service/entity"
)

const SessionHeader = "sessionID"

// ExtractToken reads the session token from the sessionID header, the
// access_token cookie or a bearer Authorization header, in that order.
func ExtractToken(c *gin.Context) string {
	if token := c.GetHeader(SessionHeader); token != "" {
		return token
	}
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}

// ParseToken verifies an HMAC signed token. A non-empty algorithm restricts
// the accepted signing method.
func ParseToken(tokenString, secret, algorithm string) (*jwt.Token, error) {
	var opts []jwt.ParserOption
	if algorithm != "" {
		opts = append(opts, jwt.WithValidMethods([]string{algorithm}))
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, opts...)
}

// ClaimsToUser builds the caller identity from the username and groups claims.
func ClaimsToUser(claims jwt.MapClaims) (entity.AuthenticatedUser, error) {
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return entity.AuthenticatedUser{}, errors.New("invalid username claim")
	}

	user := entity.AuthenticatedUser{Name: username}
	switch groups := claims["groups"].(type) {
	case []interface{}:
		for _, g := range groups {
			if name, ok := g.(string); ok && name != "" {
				user.Groups = append(user.Groups, name)
			}
		}
	case string:
		for _, name := range strings.Split(groups, ",") {
			if name = strings.TrimSpace(name); name != "" {
				user.Groups = append(user.Groups, name)
			}
		}
	}
	return user, nil
}
