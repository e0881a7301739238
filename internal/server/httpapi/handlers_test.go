package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrenko/hrauth/internal/common"
	"github.com/mpetrenko/hrauth/internal/logging"
	"github.com/mpetrenko/hrauth/internal/server/models"
)

func doRequest(t *testing.T, s *Server, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if bearer != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_TagsRequestsWithRandomID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	s := NewServer(":0", l, &fakePrincipals{}, &fakeEmployees{})

	rec := doRequest(t, s, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	logged := buf.String()
	assert.Contains(t, logged, "request_id")
	assert.Contains(t, logged, "/health")
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakePrincipals{}, &fakeEmployees{})
	rec := doRequest(t, s, http.MethodGet, "/health", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
}

func TestHandleRegister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		svc      *fakePrincipals
		wantCode int
	}{
		{
			name:     "created",
			body:     `{"login":"mpetrova","email":"m@corp.example","password":"Sup3rStrongPass"}`,
			svc:      &fakePrincipals{registerID: "abc-123"},
			wantCode: http.StatusCreated,
		},
		{
			name:     "weak password",
			body:     `{"login":"mpetrova","email":"m@corp.example","password":"short"}`,
			svc:      &fakePrincipals{registerErr: common.ErrorWeakPassword},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "duplicate login",
			body:     `{"login":"mpetrova","email":"m@corp.example","password":"Sup3rStrongPass"}`,
			svc:      &fakePrincipals{registerErr: common.ErrorDuplicateIdentity},
			wantCode: http.StatusConflict,
		},
		{
			name:     "missing fields",
			body:     `{"login":"mpetrova"}`,
			svc:      &fakePrincipals{},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid json",
			body:     `{`,
			svc:      &fakePrincipals{},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "store failure",
			body:     `{"login":"mpetrova","email":"m@corp.example","password":"Sup3rStrongPass"}`,
			svc:      &fakePrincipals{registerErr: common.ErrorInternal},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestServer(tt.svc, &fakeEmployees{})
			rec := doRequest(t, s, http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandleLogin(t *testing.T) {
	t.Parallel()

	t.Run("success returns access token", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(&fakePrincipals{loginToken: "signed-token"}, &fakeEmployees{})
		rec := doRequest(t, s, http.MethodPost, "/api/auth/login",
			`{"login":"mpetrova","password":"Sup3rStrongPass"}`, "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "signed-token", data["access_token"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(&fakePrincipals{loginErr: common.ErrorUnauthorized}, &fakeEmployees{})
		rec := doRequest(t, s, http.MethodPost, "/api/auth/login",
			`{"login":"mpetrova","password":"wrong"}`, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(&fakePrincipals{}, &fakeEmployees{})
		rec := doRequest(t, s, http.MethodPost, "/api/auth/login", `{"login":"mpetrova"}`, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleLogout(t *testing.T) {
	t.Parallel()

	t.Run("revokes the presented token", func(t *testing.T) {
		t.Parallel()

		svc := &fakePrincipals{verifyClaims: testClaims(models.RoleOrdinary)}
		s := newTestServer(svc, &fakeEmployees{})

		rec := doRequest(t, s, http.MethodPost, "/api/auth/logout", "", "some-token")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, svc.logoutCalled)
	})

	t.Run("requires a token", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(&fakePrincipals{}, &fakeEmployees{})
		rec := doRequest(t, s, http.MethodPost, "/api/auth/logout", "", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("already revoked token is rejected by the guard", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(&fakePrincipals{verifyErr: common.ErrTokenRevoked}, &fakeEmployees{})
		rec := doRequest(t, s, http.MethodPost, "/api/auth/logout", "", "some-token")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleChangePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		svc      *fakePrincipals
		wantCode int
	}{
		{
			name:     "changed",
			svc:      &fakePrincipals{verifyClaims: testClaims(models.RoleOrdinary)},
			wantCode: http.StatusOK,
		},
		{
			name: "wrong old password",
			svc: &fakePrincipals{
				verifyClaims: testClaims(models.RoleOrdinary),
				changeErr:    common.ErrorUnauthorized,
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "weak new password",
			svc: &fakePrincipals{
				verifyClaims: testClaims(models.RoleOrdinary),
				changeErr:    common.ErrorWeakPassword,
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "concurrent change lost the race",
			svc: &fakePrincipals{
				verifyClaims: testClaims(models.RoleOrdinary),
				changeErr:    common.ErrVersionConflict,
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestServer(tt.svc, &fakeEmployees{})
			rec := doRequest(t, s, http.MethodPost, "/api/auth/password",
				`{"old_password":"OldPassw0rdXY","new_password":"NewPassw0rdXY"}`, "some-token")
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestEmployeeRoutes_RequireAuthentication(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakePrincipals{}, &fakeEmployees{})

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/employees"},
		{http.MethodGet, "/api/employees/1"},
		{http.MethodPost, "/api/employees"},
		{http.MethodPut, "/api/employees/1"},
	} {
		rec := doRequest(t, s, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestEmployeeWrites_RequireAdministrator(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakePrincipals{verifyClaims: testClaims(models.RoleOrdinary)}, &fakeEmployees{})

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/employees"},
		{http.MethodPut, "/api/employees/1"},
	} {
		rec := doRequest(t, s, tc.method, tc.path, `{}`, "some-token")
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestHandleListEmployees(t *testing.T) {
	t.Parallel()

	employees := []*models.Employee{
		{ID: 1, FirstName: "Anna", LastName: "Weber", Email: "a.weber@corp.example", Version: 1},
		{ID: 2, FirstName: "Ivan", LastName: "Orlov", Email: "i.orlov@corp.example", Version: 3},
	}
	s := newTestServer(
		&fakePrincipals{verifyClaims: testClaims(models.RoleOrdinary)},
		&fakeEmployees{list: employees},
	)

	rec := doRequest(t, s, http.MethodGet, "/api/employees", "", "some-token")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)
}

func TestHandleGetEmployee(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(
			&fakePrincipals{verifyClaims: testClaims(models.RoleOrdinary)},
			&fakeEmployees{got: &models.Employee{ID: 7, FirstName: "Anna", Email: "a@corp.example", Version: 2}},
		)

		rec := doRequest(t, s, http.MethodGet, "/api/employees/7", "", "some-token")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(7), data["id"])
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(
			&fakePrincipals{verifyClaims: testClaims(models.RoleOrdinary)},
			&fakeEmployees{getErr: common.ErrorNotFound},
		)

		rec := doRequest(t, s, http.MethodGet, "/api/employees/404", "", "some-token")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleCreateEmployee(t *testing.T) {
	t.Parallel()

	admin := testClaims(models.RoleAdministrator)

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(
			&fakePrincipals{verifyClaims: admin},
			&fakeEmployees{created: &models.Employee{ID: 10, FirstName: "Anna", LastName: "Weber", Email: "a@corp.example", Status: "active", Version: 1}},
		)

		rec := doRequest(t, s, http.MethodPost, "/api/employees",
			`{"first_name":"Anna","last_name":"Weber","email":"a@corp.example","position":"Engineer","salary":90000}`,
			"some-token")

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "active", data["status"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(
			&fakePrincipals{verifyClaims: admin},
			&fakeEmployees{createErr: common.ErrorDuplicateIdentity},
		)

		rec := doRequest(t, s, http.MethodPost, "/api/employees",
			`{"first_name":"Anna","last_name":"Weber","email":"a@corp.example"}`, "some-token")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(&fakePrincipals{verifyClaims: admin}, &fakeEmployees{})
		rec := doRequest(t, s, http.MethodPost, "/api/employees", `{"first_name":"Anna"}`, "some-token")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleUpdateEmployee(t *testing.T) {
	t.Parallel()

	admin := testClaims(models.RoleAdministrator)
	existing := &models.Employee{ID: 5, FirstName: "Anna", LastName: "Weber", Email: "a@corp.example", Status: "active", Version: 2}
	updateBody := `{"first_name":"Anna","last_name":"Weber-Orlova","email":"a@corp.example","salary":95000}`

	t.Run("updated", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(&fakePrincipals{verifyClaims: admin}, &fakeEmployees{got: existing})
		rec := doRequest(t, s, http.MethodPut, "/api/employees/5", updateBody, "some-token")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Weber-Orlova", data["last_name"])
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(&fakePrincipals{verifyClaims: admin}, &fakeEmployees{getErr: common.ErrorNotFound})
		rec := doRequest(t, s, http.MethodPut, "/api/employees/5", updateBody, "some-token")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("concurrent writer wins", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(
			&fakePrincipals{verifyClaims: admin},
			&fakeEmployees{got: existing, updateErr: common.ErrVersionConflict},
		)
		rec := doRequest(t, s, http.MethodPut, "/api/employees/5", updateBody, "some-token")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
