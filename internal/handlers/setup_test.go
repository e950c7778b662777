package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/evaluation-registry/internal/events"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories/postgres"
	"github.com/SAP-F-2025/evaluation-registry/internal/services"
	"github.com/SAP-F-2025/evaluation-registry/internal/utils"
	"github.com/SAP-F-2025/evaluation-registry/internal/validator"
)

const (
	adminAddr   = "0xadmin"
	teacherAddr = "0xteacher1"
	studentAddr = "0xstudent1"
)

type apiEnv struct {
	router *gin.Engine
	sm     services.ServiceManager
}

type apiOption func(*services.ServiceManagerConfig)

func withoutImportExport() apiOption {
	return func(c *services.ServiceManagerConfig) { c.ImportExport.Enabled = false }
}

func newAPIEnv(t *testing.T, opts ...apiOption) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, postgres.Migrate(db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, RedisClient: client})

	slogLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(slogLogger)
	admin := services.AdminAccount{
		Address:      adminAddr,
		LoginID:      "ADMIN",
		PasswordHash: hashHex(0xaa),
	}
	var sm services.ServiceManager
	if len(opts) == 0 {
		sm = services.NewDefaultServiceManager(repo, publisher, slogLogger, validator.New(), admin)
	} else {
		config := services.ServiceManagerConfig{Admin: admin, ImportExport: services.ServiceConfig{Enabled: true}}
		for _, opt := range opts {
			opt(&config)
		}
		sm = services.NewServiceManager(repo, publisher, slogLogger, validator.New(), config)
	}
	ctx := context.Background()
	require.NoError(t, sm.Initialize(ctx))
	t.Cleanup(func() { sm.Shutdown(ctx) })

	logger := utils.NewSlogLogger(slogLogger)
	router := gin.New()
	SetupMiddleware(router, logger)
	NewHandlerManager(sm, logger, HeaderCallerResolver{}).SetupRoutes(router)

	return &apiEnv{router: router, sm: sm}
}

func hashHex(b byte) string {
	return strings.Repeat(fmt.Sprintf("%02x", b), 32)
}

// do sends a JSON request as caller; an empty caller sends no credentials
func (e *apiEnv) do(t *testing.T, method, path, caller string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) mustDo(t *testing.T, method, path, caller string, body interface{}, status int) *httptest.ResponseRecorder {
	t.Helper()
	w := e.do(t, method, path, caller, body)
	require.Equal(t, status, w.Code, w.Body.String())
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *apiEnv) register(t *testing.T, caller, id, role string) {
	t.Helper()
	e.mustDo(t, http.MethodPost, "/api/v1/users/register", caller, gin.H{
		"id":            id,
		"email":         strings.ToLower(id) + "@uni.edu",
		"password_hash": hashHex(byte(len(id))),
		"role":          role,
	}, http.StatusCreated)
}

// seed registers a teacher and a student, adds course 0 and marks the student
func (e *apiEnv) seed(t *testing.T) {
	t.Helper()
	e.register(t, teacherAddr, "T001", "teacher")
	e.register(t, studentAddr, "S001", "student")
	e.mustDo(t, http.MethodPost, "/api/v1/courses", adminAddr, gin.H{
		"name": "Math", "credits": 4, "teacher": teacherAddr,
	}, http.StatusCreated)
	e.mustDo(t, http.MethodPost, "/api/v1/courses/0/students", adminAddr, gin.H{
		"student": studentAddr,
	}, http.StatusOK)
}
