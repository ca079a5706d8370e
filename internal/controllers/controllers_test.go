package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/auth"
	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/franciscosanchezn/gin-recipe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

type fakeGoogle struct {
	profile *services.GoogleProfile
	err     error
}

func (f *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/consent?state=" + state
}

func (f *fakeGoogle) Exchange(ctx context.Context, code string) (*services.GoogleProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func setupAuthRouter(t *testing.T, google GoogleLogin) (*gin.Engine, *auth.TokenIssuer) {
	issuer := auth.NewTokenIssuer("controller-test-secret", time.Minute, time.Hour)
	controller := NewAuthController(services.NewUserService(setupTestDB(t)), issuer, google, 3600, false)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/auth/google", controller.GoogleLogin)
	router.GET("/auth/google/redirect", controller.GoogleRedirect)
	return router, issuer
}

func stateCookie(t *testing.T, router *gin.Engine) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	require.Equal(t, http.StatusFound, w.Code)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == StateCookie {
			assert.Contains(t, w.Header().Get("Location"), "state="+cookie.Value)
			return cookie
		}
	}
	t.Fatal("state cookie not set")
	return nil
}

func TestGoogleRedirect(t *testing.T) {
	google := &fakeGoogle{profile: &services.GoogleProfile{ID: "g-42", Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper"}}
	router, issuer := setupAuthRouter(t, google)
	state := stateCookie(t, router)

	callback := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/google/redirect?code=abc&state="+state.Value, nil)
		req.AddCookie(state)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := callback()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Grace", body.User.FirstName)

	identity, err := issuer.VerifyAccessToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, body.User.ID, identity.UserID)

	// signing in again finds the same account
	again := callback()
	require.Equal(t, http.StatusOK, again.Code)
	require.NoError(t, json.Unmarshal(again.Body.Bytes(), &body))
	assert.Equal(t, identity.UserID, body.User.ID)
}

func TestGoogleRedirectFailures(t *testing.T) {
	t.Run("state mismatch", func(t *testing.T) {
		router, _ := setupAuthRouter(t, &fakeGoogle{})
		state := stateCookie(t, router)

		req := httptest.NewRequest(http.MethodGet, "/auth/google/redirect?code=abc&state=forged", nil)
		req.AddCookie(state)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("exchange error", func(t *testing.T) {
		router, _ := setupAuthRouter(t, &fakeGoogle{err: errors.New("invalid_grant")})
		state := stateCookie(t, router)

		req := httptest.NewRequest(http.MethodGet, "/auth/google/redirect?code=abc&state="+state.Value, nil)
		req.AddCookie(state)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Google login failed")
	})

	t.Run("not configured", func(t *testing.T) {
		router, _ := setupAuthRouter(t, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/google/redirect", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

type fakeUploader struct {
	filename string
	err      error
}

func (f *fakeUploader) Upload(ctx context.Context, filename string, src io.Reader) (string, error) {
	f.filename = filename
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + filename, nil
}

func (f *fakeUploader) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	f.filename = key
	if f.err != nil {
		return nil, "", f.err
	}
	return io.NopCloser(strings.NewReader("image-bytes")), "image/png", nil
}

func uploadRequest(t *testing.T, filename string) *http.Request {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("recipeImage", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("not really an image"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/recipes/image", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadImage(t *testing.T) {
	testCases := []struct {
		name     string
		uploader *fakeUploader
		status   int
		body     string
	}{
		{
			name:     "stored",
			uploader: &fakeUploader{},
			status:   http.StatusCreated,
			body:     `{"url":"https://cdn.example.com/stew.gif"}`,
		},
		{
			name:     "rejected",
			uploader: &fakeUploader{err: models.NewValidationError("Only .jpg, .jpeg and .png images are allowed")},
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"Only .jpg, .jpeg and .png images are allowed","status":400}}`,
		},
		{
			name:     "store failure",
			uploader: &fakeUploader{err: errors.New("bucket unreachable")},
			status:   http.StatusInternalServerError,
			body:     `{"error":{"message":"Internal Server Error","status":500,"code":"INTERNAL_SERVER_ERROR"}}`,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(middleware.ErrorHandler())
			router.POST("/recipes/image", NewRecipeController(nil, tt.uploader).UploadImage)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, uploadRequest(t, "stew.gif"))
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			assert.Equal(t, "stew.gif", tt.uploader.filename)
		})
	}
}

func TestGetImage(t *testing.T) {
	testCases := []struct {
		name     string
		uploader *fakeUploader
		status   int
	}{
		{name: "found", uploader: &fakeUploader{}, status: http.StatusOK},
		{name: "missing", uploader: &fakeUploader{err: models.NewNotFoundError("Image not found")}, status: http.StatusNotFound},
		{name: "bad key", uploader: &fakeUploader{err: models.NewValidationError("Invalid image key")}, status: http.StatusBadRequest},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(middleware.ErrorHandler())
			router.GET("/images/:key", NewRecipeController(nil, tt.uploader).GetImage)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/images/cake.png", nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "cake.png", tt.uploader.filename)
			if tt.status == http.StatusOK {
				assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
				assert.Equal(t, "image-bytes", w.Body.String())
			}
		})
	}
}

func TestParseID(t *testing.T) {
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/recipes/:id", func(c *gin.Context) {
		if id, ok := parseID(c, "id"); ok {
			c.JSON(http.StatusOK, gin.H{"id": id})
		}
	})

	for path, status := range map[string]int{"/recipes/7": 200, "/recipes/0": 400, "/recipes/-1": 400, "/recipes/x": 400} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, w.Code, path)
	}
}
