package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tnqbao/gau-catalog-service/config"
	"github.com/tnqbao/gau-catalog-service/entity"
	"github.com/tnqbao/gau-catalog-service/utils"
)

var ErrInvalidSession = errors.New("invalid session")

const sessionCachePrefix = "catalog:session:"

type AuthorizationService struct {
	AuthorizationServiceURL string
	PrivateKey              string
	JWTSecret               string
	JWTAlgorithm            string
	Cache                   *RedisClient
	CacheTTL                time.Duration
	httpClient              *http.Client
}

func InitAuthorizationService(config *config.EnvConfig, cache *RedisClient) *AuthorizationService {
	url := config.ExternalService.AuthorizationServiceURL
	if url == "" && config.Session.Required {
		panic("Authorization service URL is not configured")
	}

	privateKey := config.PrivateKey
	if privateKey == "" && config.Session.Required {
		panic("Private key is not configured")
	}

	service := NewAuthorizationService(url, privateKey, config.JWT.SecretKey, cache, config.Session.CacheTTL)
	service.JWTAlgorithm = config.JWT.Algorithm
	return service
}

func NewAuthorizationService(serviceURL, privateKey, jwtSecret string, cache *RedisClient, ttl time.Duration) *AuthorizationService {
	return &AuthorizationService{
		AuthorizationServiceURL: serviceURL,
		PrivateKey:              privateKey,
		JWTSecret:               jwtSecret,
		Cache:                   cache,
		CacheTTL:                ttl,
		httpClient:              &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *AuthorizationService) CheckAccessToken(ctx context.Context, token string) error {
	endpoint := fmt.Sprintf("%s/api/v2/authorization/token/validate?token=%s",
		s.AuthorizationServiceURL, url.QueryEscape(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Private-Key", s.PrivateKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s", ErrInvalidSession, string(raw))
	}

	return nil
}

// ResolveSession validates a session token and returns the caller identity.
// Successful verdicts are cached for CacheTTL under a hash of the token.
func (s *AuthorizationService) ResolveSession(ctx context.Context, token string) (entity.AuthenticatedUser, error) {
	if token == "" {
		return entity.AuthenticatedUser{}, fmt.Errorf("%w: empty token", ErrInvalidSession)
	}

	key := sessionCachePrefix + utils.HashSHA256([]byte(token))
	if s.Cache != nil {
		var cached entity.AuthenticatedUser
		if err := s.Cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	if err := s.CheckAccessToken(ctx, token); err != nil {
		return entity.AuthenticatedUser{}, err
	}

	parsed, err := utils.ParseToken(token, s.JWTSecret, s.JWTAlgorithm)
	if err != nil || !parsed.Valid {
		return entity.AuthenticatedUser{}, fmt.Errorf("%w: unparsable token", ErrInvalidSession)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return entity.AuthenticatedUser{}, fmt.Errorf("%w: unexpected claims", ErrInvalidSession)
	}
	user, err := utils.ClaimsToUser(claims)
	if err != nil {
		return entity.AuthenticatedUser{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if s.Cache != nil && s.CacheTTL > 0 {
		_ = s.Cache.Set(ctx, key, user, s.CacheTTL)
	}
	return user, nil
}
