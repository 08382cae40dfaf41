package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolkit/edupay/internal/account/domain"
	"github.com/schoolkit/edupay/internal/account/usecase/command"
	"github.com/schoolkit/edupay/internal/account/usecase/query"
	"github.com/schoolkit/edupay/pkg/auth"
)

// The handler registers its Prometheus collectors on the default registry, so
// the test suite shares one fixture and isolates tests by data instead.
var (
	fixtureOnce sync.Once
	fixture     *handlerFixture
)

type handlerFixture struct {
	users   *memUserRepo
	roles   *memRoleRepo
	schools *memSchoolRepo
	entity  *memEntityRepo
	creds   *memCredRepo
	router  *mux.Router
}

func getFixture() *handlerFixture {
	fixtureOnce.Do(func() {
		f := &handlerFixture{
			users:   &memUserRepo{users: map[uint]*domain.User{}, nextID: 1},
			roles:   &memRoleRepo{grants: map[uint][]string{}},
			schools: &memSchoolRepo{schools: map[uint]*domain.School{}, subs: map[uint]*domain.SchoolSubscription{}, nextID: 1},
			entity:  &memEntityRepo{},
			creds:   &memCredRepo{creds: map[uint]*domain.GeneratedCredential{}, nextID: 1},
		}

		handler := NewAccountHandler(
			command.NewCreateAccountHandler(f.users, f.roles, f.schools, f.entity, f.creds),
			command.NewSetupAdminHandler(f.users, f.roles, f.schools),
			command.NewLoginUserHandler(f.users, f.roles),
			command.NewRegisterUserHandler(f.users),
			query.NewGetUserHandler(f.users, f.roles),
			query.NewListUsersHandler(f.users),
			query.NewCheckSchoolLimitHandler(f.schools, f.entity),
			nil,
		)

		f.router = mux.NewRouter()
		handler.RegisterRoutes(f.router)
		fixture = f
	})
	return fixture
}

func (f *handlerFixture) seedUser(username, email string, roles ...string) (*domain.User, string) {
	user := &domain.User{Username: username, Email: email, IsActive: true}
	_ = f.users.Create(user)
	for _, role := range roles {
		_ = f.roles.Grant(user.ID, role)
	}
	token, _ := auth.GenerateToken(user.ID, user.Email, roles)
	return user, token
}

func (f *handlerFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateAccountWithoutToken(t *testing.T) {
	f := getFixture()

	rec := f.do(t, http.MethodPost, "/api/accounts", "", map[string]interface{}{})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAccountNonAdmin(t *testing.T) {
	f := getFixture()
	_, token := f.seedUser("plainuser", "plain@example.com", domain.RoleTeacher)

	rec := f.do(t, http.MethodPost, "/api/accounts", token, map[string]interface{}{
		"school_id":   1,
		"entity_type": "teacher",
		"entity_id":   10,
		"email":       "newteacher@example.com",
		"full_name":   "New Teacher",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", decodeBody(t, rec)["error"])
}

func TestCreateAccountSuccess(t *testing.T) {
	f := getFixture()
	_, token := f.seedUser("adminuser", "adminuser@example.com", domain.RoleSchoolAdmin)

	rec := f.do(t, http.MethodPost, "/api/accounts", token, map[string]interface{}{
		"school_id":   1,
		"entity_type": "teacher",
		"entity_id":   10,
		"email":       "newteacher@example.com",
		"full_name":   "New Teacher",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.NotZero(t, body["user_id"])
	creds := body["credentials"].(map[string]interface{})
	assert.NotEmpty(t, creds["username"])
	assert.Len(t, creds["password"], 12)
	assert.True(t, strings.HasPrefix(creds["username"].(string), "Tnewteacher"))
	assert.Equal(t, "newteacher@example.com", creds["email"])
	assert.Equal(t, "New Teacher", creds["full_name"])
	assert.Equal(t, body["user_id"], creds["user_id"])
}

func TestCreateAccountLimitReached(t *testing.T) {
	f := getFixture()
	_, token := f.seedUser("adminuser2", "adminuser2@example.com", domain.RoleSchoolAdmin)
	f.schools.subs[2] = &domain.SchoolSubscription{SchoolID: 2, MaxTeachers: 0, MaxStudents: 0, MaxParents: 0}

	rec := f.do(t, http.MethodPost, "/api/accounts", token, map[string]interface{}{
		"school_id":   2,
		"entity_type": "teacher",
		"entity_id":   11,
		"email":       "capped@example.com",
		"full_name":   "Capped Teacher",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["limit_reached"])
	assert.EqualValues(t, 0, body["current"])
	assert.EqualValues(t, 0, body["max"])
	assert.NotEmpty(t, body["message"])
}

func TestSetupAdminUnregisteredEmail(t *testing.T) {
	f := getFixture()

	rec := f.do(t, http.MethodPost, "/api/admin/setup", "", map[string]interface{}{
		"email": "ghost@example.com",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found. Please register first.", decodeBody(t, rec)["error"])
}

func TestSetupAdminInvalidRole(t *testing.T) {
	f := getFixture()
	f.seedUser("rolecheck", "rolecheck@example.com")

	rec := f.do(t, http.MethodPost, "/api/admin/setup", "", map[string]interface{}{
		"email": "rolecheck@example.com",
		"role":  "teacher",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Role must be super_admin or school_admin", decodeBody(t, rec)["error"])
}

func TestSetupAdminByUserID(t *testing.T) {
	f := getFixture()
	user, _ := f.seedUser("idkeyed", "idkeyed@example.com")

	rec := f.do(t, http.MethodPost, "/api/admin/setup", "", map[string]interface{}{
		"user_id": user.ID,
		"role":    "super_admin",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, user.ID, body["user_id"])
}

func TestRegisterThenSetupAdminThenLogin(t *testing.T) {
	f := getFixture()

	rec := f.do(t, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"username":  "bootstrapper",
		"email":     "bootstrapper@example.com",
		"password":  "secret123",
		"full_name": "The Bootstrapper",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/admin/setup", "", map[string]interface{}{
		"email": "bootstrapper@example.com",
		"role":  "super_admin",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "super_admin", body["role"])

	rec = f.do(t, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email":    "bootstrapper@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decodeBody(t, rec)
	assert.NotEmpty(t, login["token"])
	assert.Contains(t, login["roles"], "super_admin")
}

func TestLoginBadPassword(t *testing.T) {
	f := getFixture()

	rec := f.do(t, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email":    "bootstrapper@example.com",
		"password": "not-the-password",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
