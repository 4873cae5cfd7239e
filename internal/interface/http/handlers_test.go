package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/spotifood/spotifood-api/config"
	"github.com/spotifood/spotifood-api/internal/application"
	"github.com/spotifood/spotifood-api/internal/domain/entity"
	repo "github.com/spotifood/spotifood-api/internal/domain/repository"
	"github.com/spotifood/spotifood-api/internal/interface/middleware"
	"github.com/spotifood/spotifood-api/pkg/helpers"
	"github.com/spotifood/spotifood-api/pkg/validation"
)

// In-memory repositories backing the HTTP tests.

type memUserRepo struct {
	users  map[int64]*entity.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]*entity.User{}, nextID: 1}
}

func (m *memUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return errors.New("duplicate email")
		}
	}
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUserRepo) List(_ context.Context, skip, limit int) ([]entity.User, error) {
	out := []entity.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) setActive(id int64, active bool) {
	if u, ok := m.users[id]; ok {
		u.IsActive = active
	}
}

func (m *memUserRepo) setRole(id int64, role entity.Role) {
	if u, ok := m.users[id]; ok {
		u.Role = role
	}
}

type memAddressRepo struct {
	addrs  map[int64]*entity.Address
	nextID int64
}

func newMemAddressRepo() *memAddressRepo {
	return &memAddressRepo{addrs: map[int64]*entity.Address{}, nextID: 1}
}

func (m *memAddressRepo) clearDefault(userID, exceptID int64) {
	for _, a := range m.addrs {
		if a.UserID == userID && a.ID != exceptID {
			a.IsDefault = false
		}
	}
}

func (m *memAddressRepo) ListByUser(_ context.Context, userID int64) ([]entity.Address, error) {
	out := []entity.Address{}
	for _, a := range m.addrs {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAddressRepo) Get(_ context.Context, userID, addressID int64) (*entity.Address, error) {
	a, ok := m.addrs[addressID]
	if !ok || a.UserID != userID {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAddressRepo) Create(_ context.Context, a *entity.Address) error {
	a.ID = m.nextID
	m.nextID++
	if a.IsDefault {
		m.clearDefault(a.UserID, a.ID)
	}
	cp := *a
	m.addrs[a.ID] = &cp
	return nil
}

func (m *memAddressRepo) Update(_ context.Context, a *entity.Address) error {
	existing, ok := m.addrs[a.ID]
	if !ok || existing.UserID != a.UserID {
		return repo.ErrNotFound
	}
	if a.IsDefault {
		m.clearDefault(a.UserID, a.ID)
	}
	cp := *a
	m.addrs[a.ID] = &cp
	return nil
}

func (m *memAddressRepo) Delete(_ context.Context, userID, addressID int64) error {
	a, ok := m.addrs[addressID]
	if !ok || a.UserID != userID {
		return repo.ErrNotFound
	}
	delete(m.addrs, addressID)
	return nil
}

var initValidation sync.Once

type testEnv struct {
	r     *gin.Engine
	users *memUserRepo
	jwt   *helpers.JWTManager
}

// newTestEnv wires the handlers into a router with the production middleware
// chains, backed by in-memory repositories.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	initValidation.Do(validation.Init)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	users := newMemUserRepo()
	addrs := newMemAddressRepo()
	jwtm := helpers.NewJWTManager("test-secret", 30*time.Minute)
	cfg := &config.Config{AccessTTL: 30 * time.Minute}

	userSvc := application.NewUserService(users, nil, "", logger, nil, "")
	addrSvc := application.NewAddressService(addrs, logger)

	authH := NewAuthHandler(userSvc, jwtm, logger, cfg, nil)
	userH := NewUserHandler(userSvc, logger)
	addrH := NewAddressHandler(addrSvc, logger)

	r := gin.New()
	api := r.Group("/api")

	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/change-password",
		middleware.Authenticate(jwtm, users), middleware.RequireActive(), authH.ChangePassword)

	ug := api.Group("/users")
	ug.Use(middleware.Authenticate(jwtm, users))
	active := ug.Group("/")
	active.Use(middleware.RequireActive())
	active.GET("/me", userH.Me)
	active.GET("/:id", userH.Get)
	admin := ug.Group("/")
	admin.Use(middleware.RequireActive(), middleware.RequireRole(entity.RoleAdmin))
	admin.GET("", userH.List)
	admin.PUT("/:id", userH.Update)
	admin.DELETE("/:id", userH.Delete)

	ag := api.Group("/addresses")
	ag.Use(middleware.Authenticate(jwtm, users), middleware.RequireActive())
	ag.GET("", addrH.List)
	ag.POST("", addrH.Create)
	ag.GET("/:id", addrH.Get)
	ag.PUT("/:id", addrH.Update)
	ag.DELETE("/:id", addrH.Delete)

	return &testEnv{r: r, users: users, jwt: jwtm}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
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
	e.r.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	d, ok := envelope(t, w)["data"].(map[string]any)
	require.True(t, ok, "missing data field: %s", w.Body.String())
	return d
}

func (e *testEnv) register(t *testing.T, username, email, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := dataField(t, w)["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAuthLifecycle(t *testing.T) {
	e := newTestEnv(t)

	// Register issues a usable bearer token right away.
	token := e.register(t, "alice", "alice@example.com", "origpassword")

	w := e.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "alice@example.com", dataField(t, w)["email"])

	// Login with the right password.
	w = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "origpassword",
	})
	require.Equal(t, http.StatusOK, w.Code)
	d := dataField(t, w)
	require.Equal(t, "bearer", d["token_type"])
	loginToken, _ := d["access_token"].(string)
	require.NotEmpty(t, loginToken)

	// Wrong password: 401 with a challenge, same message as unknown email.
	w = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	wrongEmailBody := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "nobody@example.com", "password": "wrongpassword",
	})
	require.Equal(t, envelope(t, w)["message"], envelope(t, wrongEmailBody)["message"])

	// Change password: wrong current password is rejected.
	w = e.do(t, http.MethodPost, "/api/auth/change-password", loginToken, gin.H{
		"current_password": "wrongpassword", "new_password": "nextpassword",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/auth/change-password", loginToken, gin.H{
		"current_password": "origpassword", "new_password": "nextpassword",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Old password is dead, new one works.
	w = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "origpassword",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "nextpassword",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "bob", "email": "bob@example.com", "password": "short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "bob", "email": "not-an-email", "password": "longenough",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "carol", "carol@example.com", "carolpassword")

	w := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "carol2", "email": "carol@example.com", "password": "carolpassword",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "dave", "dave@example.com", "davepassword")
	e.users.setActive(1, false)

	w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "dave@example.com", "password": "davepassword",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "account inactive")
}

func TestInactiveUserBlockedByMiddleware(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "erin", "erin@example.com", "erinpassword")
	e.users.setActive(1, false)

	// Existing token keeps authenticating but the gate rejects with 403.
	w := e.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "account inactive")
}

func TestGetUserSelfOrAdmin(t *testing.T) {
	e := newTestEnv(t)
	aliceToken := e.register(t, "alice", "alice@example.com", "alicepassword")
	bobToken := e.register(t, "bob", "bob@example.com", "bobpassword")

	// Self access is fine.
	w := e.do(t, http.MethodGet, "/api/users/1", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Another customer's profile is forbidden.
	w = e.do(t, http.MethodGet, "/api/users/1", bobToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Admins can read anyone.
	e.users.setRole(2, entity.RoleAdmin)
	w = e.do(t, http.MethodGet, "/api/users/1", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminOnlyRoutes(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "frank", "frank@example.com", "frankpassword")

	w := e.do(t, http.MethodGet, "/api/users", token, nil)
	// Customer hits the role gate (possibly after a trailing-slash redirect).
	if w.Code == http.StatusMovedPermanently {
		w = e.do(t, http.MethodGet, "/api/users/", token, nil)
	}
	require.Equal(t, http.StatusForbidden, w.Code)

	e.users.setRole(1, entity.RoleAdmin)
	w = e.do(t, http.MethodGet, "/api/users/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminUpdateUserExcludeUnset(t *testing.T) {
	e := newTestEnv(t)
	adminToken := e.register(t, "admin", "admin@example.com", "adminpassword")
	e.users.setRole(1, entity.RoleAdmin)
	e.register(t, "gina", "gina@example.com", "ginapassword")

	w := e.do(t, http.MethodPut, "/api/users/2", adminToken, gin.H{"full_name": "Gina G"})
	require.Equal(t, http.StatusOK, w.Code)
	d := dataField(t, w)
	require.Equal(t, "Gina G", d["full_name"])
	require.Equal(t, "gina", d["username"])
	require.Equal(t, "customer", d["role"])

	// Unknown role never reaches the service.
	w = e.do(t, http.MethodPut, "/api/users/2", adminToken, gin.H{"role": "superuser"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPut, "/api/users/2", adminToken, gin.H{"role": "restaurant"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "restaurant", dataField(t, w)["role"])

	w = e.do(t, http.MethodPut, "/api/users/99", adminToken, gin.H{"full_name": "Nobody"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletedUserTokenIs404(t *testing.T) {
	e := newTestEnv(t)
	adminToken := e.register(t, "admin", "admin@example.com", "adminpassword")
	e.users.setRole(1, entity.RoleAdmin)
	victimToken := e.register(t, "victim", "victim@example.com", "victimpassword")

	w := e.do(t, http.MethodDelete, "/api/users/2", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/users/me", victimToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddressCRUD(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "henry", "henry@example.com", "henrypassword")

	w := e.do(t, http.MethodPost, "/api/addresses", token, gin.H{
		"address_name": "home", "address": "1 Main St", "latitude": 52.52, "longitude": 13.405,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := dataField(t, w)
	id := int64(created["id"].(float64))

	w = e.do(t, http.MethodGet, "/api/addresses/"+strconv.FormatInt(id, 10), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "1 Main St", dataField(t, w)["address"])

	w = e.do(t, http.MethodPut, "/api/addresses/"+strconv.FormatInt(id, 10), token, gin.H{
		"address_name": "work",
	})
	require.Equal(t, http.StatusOK, w.Code)
	d := dataField(t, w)
	require.Equal(t, "work", d["address_name"])
	require.Equal(t, "1 Main St", d["address"])

	w = e.do(t, http.MethodDelete, "/api/addresses/"+strconv.FormatInt(id, 10), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/addresses/"+strconv.FormatInt(id, 10), token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddressOwnershipIs404(t *testing.T) {
	e := newTestEnv(t)
	aliceToken := e.register(t, "alice", "alice@example.com", "alicepassword")
	bobToken := e.register(t, "bob", "bob@example.com", "bobpassword")

	w := e.do(t, http.MethodPost, "/api/addresses", aliceToken, gin.H{"address": "1 Main St"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(dataField(t, w)["id"].(float64))
	path := "/api/addresses/" + strconv.FormatInt(id, 10)

	// Another user's address reads as absent, not as forbidden.
	w = e.do(t, http.MethodGet, path, bobToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = e.do(t, http.MethodPut, path, bobToken, gin.H{"address": "hijacked"})
	require.Equal(t, http.StatusNotFound, w.Code)
	w = e.do(t, http.MethodDelete, path, bobToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// Untouched for the owner.
	w = e.do(t, http.MethodGet, path, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "1 Main St", dataField(t, w)["address"])
}

func TestDefaultAddressFlip(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "ivy", "ivy@example.com", "ivypassword")

	w := e.do(t, http.MethodPost, "/api/addresses", token, gin.H{"address": "1 Main St", "is_default": true})
	require.Equal(t, http.StatusCreated, w.Code)
	firstID := int64(dataField(t, w)["id"].(float64))

	w = e.do(t, http.MethodPost, "/api/addresses", token, gin.H{"address": "2 Oak Ave", "is_default": true})
	require.Equal(t, http.StatusCreated, w.Code)
	secondID := int64(dataField(t, w)["id"].(float64))

	defaults := func() map[int64]bool {
		w := e.do(t, http.MethodGet, "/api/addresses", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		list, ok := envelope(t, w)["data"].([]any)
		require.True(t, ok)
		out := map[int64]bool{}
		for _, item := range list {
			a := item.(map[string]any)
			out[int64(a["id"].(float64))] = a["is_default"].(bool)
		}
		return out
	}

	d := defaults()
	require.False(t, d[firstID])
	require.True(t, d[secondID])

	// Flipping the default back via update clears the sibling.
	w = e.do(t, http.MethodPut, "/api/addresses/"+strconv.FormatInt(firstID, 10), token, gin.H{"is_default": true})
	require.Equal(t, http.StatusOK, w.Code)

	d = defaults()
	require.True(t, d[firstID])
	require.False(t, d[secondID])
}

func TestAddressesRequireAuth(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/addresses", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}
