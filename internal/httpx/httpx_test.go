package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/audit"
	"github.com/MikeMC777/tienda/internal/logger"
	"github.com/MikeMC777/tienda/internal/user"
)

func init() { gin.SetMode(gin.TestMode) }

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFail_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.New(apperr.InvalidRequest, "bad"), http.StatusBadRequest, "bad"},
		{apperr.New(apperr.Unauthorized, "who"), http.StatusUnauthorized, "who"},
		{apperr.New(apperr.NotFound, "gone"), http.StatusNotFound, "gone"},
		{apperr.New(apperr.Conflict, "race"), http.StatusConflict, "race"},
		{apperr.Stock("p-1", "Widget"), http.StatusBadRequest, "insufficient stock for product Widget"},
		{apperr.New(apperr.Unavailable, "storage timeout"), http.StatusServiceUnavailable, "storage timeout"},
		{errors.New("pq: secret table name"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/", func(c *gin.Context) { Fail(c, tc.err) })
		w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, tc.status, w.Code, tc.msg)
		assert.Equal(t, tc.msg, gjson.Get(w.Body.String(), "error").String())
	}
}

func TestFail_ProductIDAndAuthenticateHeader(t *testing.T) {
	r := gin.New()
	r.GET("/stock", func(c *gin.Context) { Fail(c, apperr.Stock("p-1", "Widget")) })
	r.GET("/auth", func(c *gin.Context) { Fail(c, apperr.New(apperr.Unauthorized, "no")) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/stock", nil))
	assert.Equal(t, "p-1", gjson.Get(w.Body.String(), "product_id").String())

	w = do(r, httptest.NewRequest(http.MethodGet, "/auth", nil))
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

type stubResolver map[string]*user.User

func (s stubResolver) ResolveSession(_ context.Context, token string) (*user.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, apperr.New(apperr.Unauthorized, "could not validate credentials")
}

func TestRequireAccount(t *testing.T) {
	alice := &user.User{ID: "u-1", Username: "alice"}
	r := gin.New()
	r.GET("/me", RequireAccount(stubResolver{"good": alice}), func(c *gin.Context) {
		c.String(http.StatusOK, Account(c).Username)
	})

	for header, want := range map[string]int{
		"":             http.StatusUnauthorized,
		"Bearer":       http.StatusUnauthorized,
		"Basic good":   http.StatusUnauthorized,
		"Bearer bad":   http.StatusUnauthorized,
		"Bearer good":  http.StatusOK,
		"bearer  good": http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := do(r, req)
		assert.Equal(t, want, w.Code, "header %q", header)
		if want == http.StatusOK {
			assert.Equal(t, "alice", w.Body.String())
		}
	}
}

func TestRequestID_PropagatesToContext(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(logger.Discard()))
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen, _ = c.Request.Context().Value(audit.RequestIDKey{}).(string)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := do(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc-123", seen)

	w = do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, w.Header().Get(HeaderRequestID))
	assert.Equal(t, w.Header().Get(HeaderRequestID), seen)
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSOptions()))
	r.POST("/orders", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/orders", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	w := do(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(logger.Discard()), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", gjson.Get(w.Body.String(), "error").String())
}
