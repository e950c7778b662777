package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
)

func TestHealth(t *testing.T) {
	env := newAPIEnv(t)

	w := env.mustDo(t, http.MethodGet, "/health", "", nil, http.StatusOK)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "evaluation-registry", body["service"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRegisterAndLogin(t *testing.T) {
	env := newAPIEnv(t)

	t.Run("missing caller", func(t *testing.T) {
		w := env.mustDo(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
			"id": "S001", "password_hash": hashHex(4), "role": "student",
		}, http.StatusUnauthorized)
		assert.Equal(t, "User not authenticated", decode[ErrorResponse](t, w).Message)
	})

	env.register(t, studentAddr, "S001", "student")

	t.Run("address registered twice", func(t *testing.T) {
		w := env.mustDo(t, http.MethodPost, "/api/v1/users/register", studentAddr, gin.H{
			"id": "S009", "password_hash": hashHex(4), "role": "student",
		}, http.StatusConflict)
		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "AlreadyRegistered", resp.Error)
		assert.Equal(t, "state", resp.Kind)
	})

	t.Run("admin role is not self-assignable", func(t *testing.T) {
		w := env.mustDo(t, http.MethodPost, "/api/v1/users/register", "0xother", gin.H{
			"id": "X001", "password_hash": hashHex(4), "role": "admin",
		}, http.StatusBadRequest)
		assert.Equal(t, "InvalidRole", decode[ErrorResponse](t, w).Error)
	})

	t.Run("malformed hash carries field details", func(t *testing.T) {
		w := env.mustDo(t, http.MethodPost, "/api/v1/users/register", "0xother", gin.H{
			"id": "X001", "password_hash": "abc", "role": "student",
		}, http.StatusBadRequest)
		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "InvalidInput", resp.Error)
		assert.NotNil(t, resp.Details)
	})

	t.Run("login", func(t *testing.T) {
		w := env.mustDo(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
			"id": "S001", "password_hash": hashHex(4),
		}, http.StatusOK)
		resp := decode[models.LoginResponse](t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, models.Address(studentAddr), resp.Address)

		w = env.mustDo(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
			"id": "S001", "password_hash": hashHex(5),
		}, http.StatusOK)
		assert.False(t, decode[models.LoginResponse](t, w).Success)

		w = env.mustDo(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
			"id": "S001", "password_hash": "abc",
		}, http.StatusOK)
		assert.False(t, decode[models.LoginResponse](t, w).Success)
	})
}

func TestUserEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t)

	w := env.mustDo(t, http.MethodGet, "/api/v1/users/me", "0xStudent1", nil, http.StatusOK)
	assert.Equal(t, "S001", decode[models.User](t, w).LoginID)

	env.mustDo(t, http.MethodPut, "/api/v1/users/me/email", studentAddr, gin.H{"email": "new@uni.edu"}, http.StatusOK)
	w = env.mustDo(t, http.MethodGet, "/api/v1/users/"+studentAddr, "", nil, http.StatusOK)
	assert.Equal(t, "new@uni.edu", decode[models.User](t, w).Email)

	env.mustDo(t, http.MethodPut, "/api/v1/users/me/password", studentAddr, gin.H{
		"old_password_hash": hashHex(1), "new_password_hash": hashHex(2),
	}, http.StatusConflict)
	env.mustDo(t, http.MethodPut, "/api/v1/users/me/password", studentAddr, gin.H{
		"old_password_hash": hashHex(4), "new_password_hash": hashHex(2),
	}, http.StatusOK)

	w = env.mustDo(t, http.MethodGet, "/api/v1/users/0xnobody", "", nil, http.StatusNotFound)
	assert.Equal(t, "NotRegistered", decode[ErrorResponse](t, w).Error)

	w = env.mustDo(t, http.MethodGet, "/api/v1/users", studentAddr, nil, http.StatusForbidden)
	assert.Equal(t, "authorization", decode[ErrorResponse](t, w).Kind)

	w = env.mustDo(t, http.MethodGet, "/api/v1/users?size=2", adminAddr, nil, http.StatusOK)
	page := decode[models.PaginatedResponse](t, w)
	assert.EqualValues(t, 3, page.TotalElements)
	assert.Equal(t, 2, page.NumberOfElements)
	assert.False(t, page.Last)
}

func TestCourseEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t)

	w := env.mustDo(t, http.MethodPost, "/api/v1/courses", teacherAddr, gin.H{
		"name": "Physics", "credits": 3, "teacher": teacherAddr,
	}, http.StatusForbidden)
	assert.Equal(t, "Unauthorized", decode[ErrorResponse](t, w).Error)

	w = env.mustDo(t, http.MethodPost, "/api/v1/courses", adminAddr, gin.H{
		"name": "Physics", "credits": 11, "teacher": teacherAddr,
	}, http.StatusBadRequest)
	assert.Equal(t, "InvalidCredits", decode[ErrorResponse](t, w).Error)

	w = env.mustDo(t, http.MethodPost, "/api/v1/courses", adminAddr, gin.H{
		"name": "Physics", "credits": 3, "teacher": studentAddr,
	}, http.StatusBadRequest)
	assert.Equal(t, "InvalidTeacher", decode[ErrorResponse](t, w).Error)

	w = env.mustDo(t, http.MethodPost, "/api/v1/courses", adminAddr, gin.H{
		"name": "Physics", "credits": 3, "teacher": teacherAddr,
	}, http.StatusCreated)
	assert.EqualValues(t, 1, decode[models.CourseCreatedResponse](t, w).ID)

	env.mustDo(t, http.MethodPut, "/api/v1/courses/1", adminAddr, gin.H{
		"name": "Physics II", "credits": 5, "teacher": teacherAddr,
	}, http.StatusOK)
	w = env.mustDo(t, http.MethodPut, "/api/v1/courses/1/active", adminAddr, gin.H{"active": false}, http.StatusOK)
	course := decode[models.Course](t, w)
	assert.Equal(t, "Physics II", course.Name)
	assert.False(t, course.IsActive)

	env.mustDo(t, http.MethodPut, "/api/v1/courses/1/active", adminAddr, gin.H{}, http.StatusBadRequest)

	w = env.mustDo(t, http.MethodGet, "/api/v1/courses", "", nil, http.StatusOK)
	assert.Len(t, decode[[]models.Course](t, w), 2)

	w = env.mustDo(t, http.MethodGet, "/api/v1/teachers/me/courses", teacherAddr, nil, http.StatusOK)
	assert.Len(t, decode[[]models.Course](t, w), 2)

	w = env.mustDo(t, http.MethodGet, "/api/v1/courses/7", "", nil, http.StatusNotFound)
	assert.Equal(t, "CourseNotFound", decode[ErrorResponse](t, w).Error)
	env.mustDo(t, http.MethodGet, "/api/v1/courses/abc", "", nil, http.StatusNotFound)
}

func TestEvaluationEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t)

	w := env.mustDo(t, http.MethodGet, "/api/v1/students/me/courses", studentAddr, nil, http.StatusOK)
	assert.Len(t, decode[[]models.Course](t, w), 1)

	w = env.mustDo(t, http.MethodGet, "/api/v1/courses/0/students", "", nil, http.StatusOK)
	assert.Equal(t, []models.Address{studentAddr}, decode[models.CourseStudentsResponse](t, w).Students)

	w = env.mustDo(t, http.MethodPost, "/api/v1/courses/0/evaluations", studentAddr, gin.H{"score": 6}, http.StatusBadRequest)
	assert.Equal(t, "InvalidScore", decode[ErrorResponse](t, w).Error)

	w = env.mustDo(t, http.MethodPost, "/api/v1/courses/0/evaluations", teacherAddr, gin.H{"score": 4}, http.StatusForbidden)
	assert.Equal(t, "NotStudent", decode[ErrorResponse](t, w).Error)

	w = env.mustDo(t, http.MethodPost, "/api/v1/courses/0/evaluations", studentAddr, gin.H{
		"score": 4, "comment": "clear lectures",
	}, http.StatusCreated)
	evaluation := decode[models.Evaluation](t, w)
	assert.Equal(t, 4, evaluation.Score)
	assert.NotZero(t, evaluation.LedgerSeq)

	w = env.mustDo(t, http.MethodPost, "/api/v1/courses/0/evaluations", studentAddr, gin.H{"score": 5}, http.StatusConflict)
	assert.Equal(t, "AlreadyEvaluated", decode[ErrorResponse](t, w).Error)

	w = env.mustDo(t, http.MethodGet, "/api/v1/courses/0/evaluations", teacherAddr, nil, http.StatusOK)
	assert.Len(t, decode[[]models.Evaluation](t, w), 1)
	env.mustDo(t, http.MethodGet, "/api/v1/courses/0/evaluations", studentAddr, nil, http.StatusForbidden)

	w = env.mustDo(t, http.MethodGet, "/api/v1/students/me/evaluations", studentAddr, nil, http.StatusOK)
	assert.Len(t, decode[[]models.Evaluation](t, w), 1)
}

func TestLedgerEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t)

	env.mustDo(t, http.MethodGet, "/api/v1/ledger", studentAddr, nil, http.StatusForbidden)
	env.mustDo(t, http.MethodGet, "/api/v1/ledger/verify", "", nil, http.StatusUnauthorized)

	w := env.mustDo(t, http.MethodGet, "/api/v1/ledger?from=2&limit=2", adminAddr, nil, http.StatusOK)
	entries := decode[[]models.LedgerEntry](t, w)
	require.Len(t, entries, 2)
	assert.EqualValues(t, 2, entries[0].Seq)

	w = env.mustDo(t, http.MethodGet, "/api/v1/ledger/verify", adminAddr, nil, http.StatusOK)
	verification := decode[models.LedgerVerification](t, w)
	assert.True(t, verification.Valid)
	assert.EqualValues(t, 5, verification.Length)

	w = env.mustDo(t, http.MethodGet, "/api/v1/ledger/export", adminAddr, nil, http.StatusOK)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Ledger")
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestImportEnrollments(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t)
	env.register(t, "0xstudent2", "S002", "student")

	upload := func(caller string, rows [][]interface{}) *httptest.ResponseRecorder {
		f := excelize.NewFile()
		defer f.Close()
		require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"course_id", "student_address"}))
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
		}
		var sheet bytes.Buffer
		require.NoError(t, f.Write(&sheet))

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "enrollments.xlsx")
		require.NoError(t, err)
		_, err = part.Write(sheet.Bytes())
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set(CallerHeader, caller)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		return w
	}

	w := upload(teacherAddr, [][]interface{}{{0, "0xstudent2"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = upload(adminAddr, [][]interface{}{{0, "0xstudent2"}, {"x", "0xstudent2"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "InvalidImport", resp.Error)
	assert.NotNil(t, resp.Details)

	w = upload(adminAddr, [][]interface{}{{0, "0xstudent2"}, {0, studentAddr}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[models.ImportResult](t, w)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 1, result.MarkedRows)
	assert.Equal(t, 1, result.ExistingRows)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/import", nil)
	req.Header.Set(CallerHeader, adminAddr)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type failingResolver struct{ err error }

func (r failingResolver) Resolve(*gin.Context) (models.Address, error) {
	return "", r.err
}

func TestCallerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(resolver CallerResolver) *gin.Engine {
		router := gin.New()
		router.Use(CallerMiddleware(resolver))
		router.GET("/whoami", func(c *gin.Context) {
			c.String(http.StatusOK, getCaller(c).String())
		})
		return router
	}

	t.Run("header is normalized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(CallerHeader, "  0xABC ")
		w := httptest.NewRecorder()
		newRouter(HeaderCallerResolver{}).ServeHTTP(w, req)
		assert.Equal(t, "0xabc", w.Body.String())
	})

	t.Run("no credentials continues anonymously", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(failingResolver{err: ErrNoCredentials}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("invalid credentials are rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(failingResolver{err: errors.New("invalid token")}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", decode[ErrorResponse](t, w).Error)
	})
}

func TestBearerToken(t *testing.T) {
	token, err := bearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"abc", "Basic abc", "Bearer ", "Bearer a b"} {
		_, err := bearerToken(header)
		assert.Error(t, err, header)
	}
}

func TestImportExportRoutesDisabled(t *testing.T) {
	env := newAPIEnv(t, withoutImportExport())
	env.seed(t)

	env.mustDo(t, http.MethodGet, "/api/v1/ledger/export", adminAddr, nil, http.StatusNotFound)
	env.mustDo(t, http.MethodPost, "/api/v1/enrollments/import", adminAddr, nil, http.StatusNotFound)

	env.mustDo(t, http.MethodGet, "/api/v1/ledger/verify", adminAddr, nil, http.StatusOK)
	env.mustDo(t, http.MethodGet, "/api/v1/courses/0/students", teacherAddr, nil, http.StatusOK)
}
