package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cohee-app/models"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.call(t, http.MethodPost, "/auth/register", map[string]interface{}{
		"name":     "Hana",
		"email":    "Hana@CoHee.test",
		"password": "secret123",
		"role":     "admin",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		UserID string `json:"user_id"`
	}
	decode(t, resp.Data, &created)

	var user models.User
	require.NoError(t, env.db.First(&user, "id = ?", created.UserID).Error)
	assert.Equal(t, "hana@cohee.test", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role, "role from the body is ignored")
	assert.NotEqual(t, "secret123", user.Password)

	w, _ = env.call(t, http.MethodPost, "/auth/register", map[string]interface{}{
		"name":     "Hana Again",
		"email":    "hana@cohee.test",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = env.call(t, http.MethodPost, "/auth/login", map[string]string{"email": "hana@cohee.test", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := env.loginDevice(t, &user, "secret123", "dev-hana")
	assert.NotNil(t, env.apps.Get("dev-hana").User())

	w, resp = env.call(t, http.MethodGet, "/profile", nil, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.User
	decode(t, resp.Data, &profile)
	assert.Equal(t, user.ID, profile.ID)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.call(t, http.MethodPost, "/auth/register", map[string]string{
		"name":     "Ivan",
		"email":    "not-an-email",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.call(t, http.MethodPost, "/auth/register", map[string]string{
		"name":     "Ivan",
		"email":    "ivan@cohee.test",
		"password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutBlacklistsTokenAndSignsOutDevice(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Jade", models.RoleCustomer, "secret123")
	token := env.loginDevice(t, user, "secret123", "dev-jade")

	w, _ := env.call(t, http.MethodPost, "/auth/logout", nil, append(device("dev-jade"), bearer(token)...)...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, env.apps.Get("dev-jade").User())

	w, _ = env.call(t, http.MethodGet, "/profile", nil, bearer(token)...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutWithoutDeviceHeaderSignsOutEveryDevice(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Kai", models.RoleCustomer, "secret123")
	other := env.seedUser(t, "Lin", models.RoleCustomer, "secret123")
	token := env.loginDevice(t, user, "secret123", "dev-kai-phone")
	env.loginDevice(t, user, "secret123", "dev-kai-tablet")
	env.loginDevice(t, other, "secret123", "dev-lin")

	env.call(t, http.MethodPost, "/app/cart/items", map[string]interface{}{"item_id": "c1"}, device("dev-kai-phone")...)

	w, _ := env.call(t, http.MethodPost, "/auth/logout", nil, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Nil(t, env.apps.Get("dev-kai-phone").User())
	assert.Nil(t, env.apps.Get("dev-kai-tablet").User())
	assert.NotNil(t, env.apps.Get("dev-lin").User())
	assert.Len(t, env.apps.Get("dev-kai-phone").Cart(), 1, "cart survives sign-out")

	w, _ = env.call(t, http.MethodPost, "/app/checkout", map[string]string{"payment_method": "fps"}, device("dev-kai-phone")...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
