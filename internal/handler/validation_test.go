package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/collective-recitation/internal/config"
)

// These tests cover the request-validation paths, which reject before
// any repository call is made. Handlers are constructed with nil
// repositories on purpose: reaching the store would panic and fail
// the test loudly.

func postJSON(t *testing.T, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(config.Config{JWTSecret: "s", TokenTTLDays: 1, BcryptCost: 4}, nil)

	cases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"no identity", `{"name":"a","password":"pw"}`},
		{"no password", `{"name":"a","email":"a@b.c"}`},
		{"no name", `{"email":"a@b.c","password":"pw"}`},
		{"bad phone", `{"name":"a","phone":"12345","password":"pw"}`},
		{"phone without plus", `{"name":"a","phone":"491234567890","password":"pw"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := postJSON(t, "/v1/auth/register", tc.body)
			require.NoError(t, h.Register(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginValidation(t *testing.T) {
	h := NewAuthHandler(config.Config{JWTSecret: "s"}, nil)

	for name, body := range map[string]string{
		"empty":       `{}`,
		"no identity": `{"password":"pw"}`,
		"no password": `{"email":"a@b.c"}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, rec := postJSON(t, "/v1/auth/login", body)
			require.NoError(t, h.Login(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateRecitationValidation(t *testing.T) {
	h := NewRecitationHandler(nil, nil, nil)

	cases := []struct {
		name string
		body string
	}{
		{"missing title", `{"content_type":"quran","portion_type":"juz"}`},
		{"missing content type", `{"title":"t","portion_type":"juz"}`},
		{"missing portion type", `{"title":"t","content_type":"quran"}`},
		{"zero total", `{"title":"t","content_type":"custom","portion_type":"part","total_portions":0}`},
		{"negative total", `{"title":"t","content_type":"custom","portion_type":"part","total_portions":-5}`},
		{"huge total", `{"title":"t","content_type":"custom","portion_type":"part","total_portions":999999}`},
		{"bad deadline", `{"title":"t","content_type":"quran","portion_type":"juz","deadline":"tomorrow"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := postJSON(t, "/v1/recitations", tc.body)
			c.Set("user_id", uint64(1))
			require.NoError(t, h.Create(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateRecitationUnauthenticated(t *testing.T) {
	h := NewRecitationHandler(nil, nil, nil)
	c, rec := postJSON(t, "/v1/recitations", `{"title":"t","content_type":"quran","portion_type":"juz"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAssignValidation(t *testing.T) {
	h := NewPortionHandler(nil, nil, nil, nil, "")

	t.Run("bad recitation id", func(t *testing.T) {
		c, rec := postJSON(t, "/v1/recitations/abc/assign", `{"portion_number":1}`)
		c.Set("user_id", uint64(1))
		c.SetParamNames("id")
		c.SetParamValues("abc")
		require.NoError(t, h.Assign(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing portion number", func(t *testing.T) {
		c, rec := postJSON(t, "/v1/recitations/1/assign", `{}`)
		c.Set("user_id", uint64(1))
		c.SetParamNames("id")
		c.SetParamValues("1")
		require.NoError(t, h.Assign(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProgressValidation(t *testing.T) {
	h := NewPortionHandler(nil, nil, nil, nil, "")

	for name, body := range map[string]string{
		"above range": `{"progress_percentage":101}`,
		"below range": `{"progress_percentage":-1}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, rec := postJSON(t, "/v1/recitations/1/portions/1/progress", body)
			c.Set("user_id", uint64(1))
			c.SetParamNames("id", "n")
			c.SetParamValues("1", "1")
			require.NoError(t, h.Progress(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestContentTypeCreateValidation(t *testing.T) {
	h := NewContentTypeHandler(nil)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"display_name":"X"}`},
		{"uppercase name", `{"name":"Quran","display_name":"X"}`},
		{"name with spaces", `{"name":"my type","display_name":"X"}`},
		{"missing display name", `{"name":"mytype"}`},
		{"zero portion count", `{"name":"mytype","display_name":"X","portion_types":{"part":0}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := postJSON(t, "/v1/admin/content-types", tc.body)
			c.Set("user_id", uint64(1))
			require.NoError(t, h.Create(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestContentTypeUpdateEmptyBody(t *testing.T) {
	h := NewContentTypeHandler(nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/v1/admin/content-types/1", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, Health(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
