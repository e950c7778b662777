package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/evaluation-registry/internal/events"
	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories/postgres"
	"github.com/SAP-F-2025/evaluation-registry/internal/validator"
)

const (
	adminAddr    models.Address = "0xadmin"
	teacherAddr  models.Address = "0xteacher1"
	teacher2Addr models.Address = "0xteacher2"
	studentAddr  models.Address = "0xstudent1"
	student2Addr models.Address = "0xstudent2"
	strangerAddr models.Address = "0xstranger"
)

type testEnv struct {
	ctx       context.Context
	db        *gorm.DB
	repo      repositories.Repository
	mr        *miniredis.Miniredis
	publisher *events.MockEventPublisher
	logger    *slog.Logger
	sm        ServiceManager
}

type envOption func(*ServiceManagerConfig)

func withAdminBypass() envOption {
	return func(c *ServiceManagerConfig) { c.InsecureAdminLoginBypass = true }
}

func withoutImportExport() envOption {
	return func(c *ServiceManagerConfig) { c.ImportExport.Enabled = false }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

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

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(log)

	config := ServiceManagerConfig{
		Admin: AdminAccount{
			Address:      adminAddr,
			LoginID:      "ADMIN",
			Email:        "admin@uni.edu",
			PasswordHash: hashHex(0xaa),
		},
		ImportExport: ServiceConfig{Enabled: true},
	}
	for _, opt := range opts {
		opt(&config)
	}

	ctx := context.Background()
	sm := NewServiceManager(repo, publisher, log, validator.New(), config)
	require.NoError(t, sm.Initialize(ctx))
	t.Cleanup(func() { sm.Shutdown(ctx) })

	return &testEnv{ctx: ctx, db: db, repo: repo, mr: mr, publisher: publisher, logger: log, sm: sm}
}

func hashHex(b byte) string {
	return strings.Repeat(fmt.Sprintf("%02x", b), 32)
}

func (e *testEnv) register(t *testing.T, addr models.Address, id string, role string) *models.User {
	t.Helper()
	user, err := e.sm.Access().Register(e.ctx, addr, &RegisterRequest{
		ID:           id,
		Email:        id + "@uni.edu",
		PasswordHash: hashHex(byte(len(id))),
		Role:         role,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) addCourse(t *testing.T, name string, credits int, teacher models.Address) uint {
	t.Helper()
	resp, err := e.sm.Course().AddCourse(e.ctx, adminAddr, &CourseRequest{Name: name, Credits: credits, Teacher: teacher.String()})
	require.NoError(t, err)
	return resp.ID
}

func (e *testEnv) mark(t *testing.T, courseID uint, student models.Address) {
	t.Helper()
	require.NoError(t, e.sm.Enrollment().MarkStudentCourse(e.ctx, adminAddr, courseID, &MarkStudentRequest{Student: student.String()}))
}

func (e *testEnv) ledgerLength(t *testing.T) int64 {
	t.Helper()
	n, err := e.repo.Ledger().Count(e.ctx, nil)
	require.NoError(t, err)
	return n
}

// seed registers one teacher and two students and adds course 0 taught by the teacher
func (e *testEnv) seed(t *testing.T) uint {
	t.Helper()
	e.register(t, teacherAddr, "T001", "teacher")
	e.register(t, studentAddr, "S001", "student")
	e.register(t, student2Addr, "S002", "student")
	return e.addCourse(t, "Math", 4, teacherAddr)
}
