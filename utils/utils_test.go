package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevisionPath(t *testing.T) {
	assert.Equal(t, "/api/v1/catalog/buckets/b/resources/my%20wf/revisions/7/raw", RevisionPath("b", "my wf", 7))
	assert.Equal(t, "/api/v1/catalog/buckets/b/resources/wf/raw", RevisionPath("b", "wf", 0))
	assert.Equal(t, "https://catalog.example.com/x", AbsoluteURL("https://catalog.example.com/", "/x"))
}

func TestHashAndSignature(t *testing.T) {
	assert.Equal(t, EmptyBodyHash, HashSHA256(nil))
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", HashSHA256([]byte("hello")))

	message := BuildArchiveStringToSign("b", "o", 3, EmptyBodyHash)
	assert.Equal(t, "b\no\n3\n"+EmptyBodyHash, message)
	assert.Len(t, ComputeHMACSHA256("secret", message), 64)
	assert.NotEqual(t, ComputeHMACSHA256("secret", message), ComputeHMACSHA256("other", message))
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseTokenAndClaims(t *testing.T) {
	token := signToken(t, "secret", jwt.MapClaims{
		"username": "alice",
		"groups":   []interface{}{"ops", "dev"},
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	parsed, err := ParseToken(token, "secret", "HS256")
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	user, err := ClaimsToUser(parsed.Claims.(jwt.MapClaims))
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, []string{"ops", "dev"}, user.Groups)

	_, err = ParseToken(token, "wrong", "HS256")
	assert.Error(t, err)

	_, err = ParseToken(token, "secret", "HS512")
	assert.Error(t, err, "signing method outside the configured algorithm")

	user, err = ClaimsToUser(jwt.MapClaims{"username": "bob", "groups": "a, b,"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, user.Groups)

	_, err = ClaimsToUser(jwt.MapClaims{"groups": "a"})
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"session header", func(r *http.Request) { r.Header.Set(SessionHeader, "s1") }, "s1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "access_token", Value: "c1"}) }, "c1"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer b1") }, "b1"},
		{"none", func(r *http.Request) {}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(c.Request)
			assert.Equal(t, tc.want, ExtractToken(c))
		})
	}
}
