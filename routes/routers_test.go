package routes

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"synca/middleware"
	"synca/repository/memstore"
	"synca/services"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/olahol/melody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var routeNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Code   int               `json:"code"`
	Mess   string            `json:"mess"`
	Data   json.RawMessage   `json:"data"`
	Errors map[string]string `json:"errors"`
	Total  *int              `json:"total"`
}

type server struct {
	router *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	store.SetNow(func() time.Time { return routeNow })
	svc := services.NewServices(services.Options{
		Store:  store,
		Tokens: services.NewTokenManager("route-secret", time.Hour),
		Clock:  services.FixedClock(routeNow),
	})

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	SetupRoutes(router, svc, melody.New())
	return &server{router: router}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *server) register(t *testing.T, username, role string) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username":        username,
		"email":           username + "@example.com",
		"firstName":       username,
		"role":            role,
		"password":        "password123",
		"confirmPassword": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

type idOnly struct {
	ID uint `json:"id"`
}

// seedListing tạo PG một phòng 2 giường, trả về id PG và id các giường
func (s *server) seedListing(t *testing.T, ownerToken string) (uint, []uint) {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/v1/owner/pgs", ownerToken, gin.H{
		"name":      "Lakeview PG",
		"area":      "Indiranagar",
		"address":   "4 Lake Road",
		"city":      "Bengaluru",
		"pincode":   "560038",
		"type":      "coed",
		"amenities": []string{"WiFi"},
		"deposit":   3000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var pg idOnly
	require.NoError(t, json.Unmarshal(env.Data, &pg))

	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/owner/pgs/%d/rooms", pg.ID), ownerToken, gin.H{
		"roomNumber":  "201",
		"roomType":    "2-sharing",
		"pricePerBed": 7000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var room struct {
		Beds []idOnly `json:"beds"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &room))
	require.Len(t, room.Beds, 2)
	return pg.ID, []uint{room.Beds[0].ID, room.Beds[1].ID}
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)
	token := s.register(t, "asha", "student")

	w, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "asha", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "asha", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "asha", me.Username)

	w, _ = s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidationErrors(t *testing.T) {
	s := newServer(t)
	w, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username":        "bad name",
		"email":           "nope",
		"role":            "admin",
		"password":        "password123",
		"confirmPassword": "password124",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "username")
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "role")
	assert.Equal(t, "Passwords do not match.", env.Errors["confirmPassword"])
}

func TestRoleGating(t *testing.T) {
	s := newServer(t)
	student := s.register(t, "asha", "student")
	owner := s.register(t, "meera", "owner")

	w, _ := s.do(t, http.MethodGet, "/api/v1/owner/dashboard", student, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/student/bookings", owner, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/owner/dashboard", owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBadIDParam(t *testing.T) {
	s := newServer(t)
	student := s.register(t, "asha", "student")

	w, env := s.do(t, http.MethodGet, "/api/v1/bookings/abc", student, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid id", env.Mess)

	w, _ = s.do(t, http.MethodGet, "/api/v1/pgs/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)
	owner := s.register(t, "meera", "owner")
	student := s.register(t, "asha", "student")
	other := s.register(t, "bilal", "student")
	pgID, beds := s.seedListing(t, owner)

	w, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/beds/%d/quote", beds[0]), student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var quote struct {
		TotalAmount float64 `json:"totalAmount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &quote))
	assert.Equal(t, 10000.0, quote.TotalAmount)

	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/beds/%d/bookings", beds[0]), student, gin.H{"notes": "near window"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var booking struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &booking))
	assert.Equal(t, "pending", booking.Status)

	w, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/beds/%d/bookings", beds[0]), other, gin.H{})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", booking.ID), other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/owner/bookings/%d/approve", booking.ID), owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var outcome struct {
		Level   string `json:"level"`
		Booking struct {
			Status   string `json:"status"`
			CheckOut string `json:"checkOut"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &outcome))
	assert.Equal(t, "success", outcome.Level)
	assert.Equal(t, "active", outcome.Booking.Status)
	assert.Equal(t, env.Mess, "Booking approved successfully.")

	w, env = s.do(t, http.MethodGet, "/api/v1/student/bookings", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Counts["active"])

	w, env = s.do(t, http.MethodGet, "/api/v1/notifications", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Total)
	assert.Equal(t, 1, *env.Total)

	w, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/pgs/%d", pgID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogSessionHeader(t *testing.T) {
	s := newServer(t)
	owner := s.register(t, "meera", "owner")
	s.seedListing(t, owner)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pgs?area=indiranagar", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	session := w.Header().Get(middleware.SessionHeader)
	require.NotEmpty(t, session)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Total)
	assert.Equal(t, 1, *env.Total)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/pgs/filters/last", nil)
	req.Header.Set(middleware.SessionHeader, session)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session, w.Header().Get(middleware.SessionHeader))

	env = envelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var filters struct {
		Area string `json:"area"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &filters))
	assert.Equal(t, "indiranagar", filters.Area)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/pgs/filters/last", nil)
	req.Header.Set(middleware.SessionHeader, session)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/pgs/filters/last", nil)
	req.Header.Set(middleware.SessionHeader, session)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	env = envelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	filters.Area = ""
	require.NoError(t, json.Unmarshal(env.Data, &filters))
	assert.Empty(t, filters.Area)
}
