package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tnqbao/gau-catalog-service/config"
	"github.com/tnqbao/gau-catalog-service/http/controller"
	"github.com/tnqbao/gau-catalog-service/infra"
	"github.com/tnqbao/gau-catalog-service/infra/produce"
	"github.com/tnqbao/gau-catalog-service/repository"
	"github.com/tnqbao/gau-catalog-service/utils"
)

const testSecret = "route-test-secret"

type publishedMessage struct {
	key  string
	body []byte
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

func (p *recordingPublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{key: key, body: msg.Body})
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.messages))
	for i, m := range p.messages {
		keys[i] = m.key
	}
	return keys
}

type testServer struct {
	router    *gin.Engine
	publisher *recordingPublisher
	repo      *repository.Repository
}

func newTestServer(t *testing.T, sessionsRequired bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repository.AutoMigrate(db))

	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := utils.ParseToken(r.URL.Query().Get("token"), testSecret, "HS256"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(authServer.Close)

	redisServer := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: redisServer.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	cache := &infra.RedisClient{Client: redisClient}

	env := &config.EnvConfig{}
	env.Session.Required = sessionsRequired
	env.Session.CacheTTL = time.Minute
	env.JWT.SecretKey = testSecret
	env.JWT.Algorithm = "HS256"
	env.Catalog.MaxPayloadSize = 1 << 20
	env.Catalog.DefaultPageSize = 50
	env.DomainName = "https://catalog.test"
	env.CORS.AllowDomains = "https://app.catalog.test"

	publisher := &recordingPublisher{}
	infraClient := &infra.Infra{
		Redis:                cache,
		Postgres:             &infra.PostgresClient{DB: db},
		Logger:               infra.NewLoggerClient(slog.New(slog.NewTextHandler(io.Discard, nil))),
		AuthorizationService: infra.NewAuthorizationService(authServer.URL, "private", testSecret, cache, time.Minute),
		Produce:              &produce.Produce{RevisionService: produce.NewRevisionProduceService(publisher)},
	}

	repo := repository.NewRepository(db)
	ctrl := controller.NewController(&config.Config{EnvConfig: env}, infraClient, repo)
	return &testServer{router: SetupRouter(ctrl), publisher: publisher, repo: repo}
}

func tokenFor(t *testing.T, username string, groups ...string) string {
	t.Helper()
	g := make([]interface{}, len(groups))
	for i, group := range groups {
		g[i] = group
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"groups":   g,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

type request struct {
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
}

func (s *testServer) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	httpReq := httptest.NewRequest(req.method, req.path, req.body)
	if req.token != "" {
		httpReq.Header.Set(utils.SessionHeader, req.token)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, httpReq)
	return recorder
}

func (s *testServer) postJSON(t *testing.T, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return s.do(t, request{method: http.MethodPost, path: path, token: token, body: bytes.NewReader(body), contentType: "application/json"})
}

func (s *testServer) postMultipart(t *testing.T, method, path, token string, fields map[string]string, fileContentType string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="payload"`)
	header.Set("Content-Type", fileContentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return s.do(t, request{method: method, path: path, token: token, body: body, contentType: writer.FormDataContentType()})
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out), recorder.Body.String())
}
