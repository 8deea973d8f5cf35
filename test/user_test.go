package test

import (
	"fmt"
	"testing"
	"time"

	"tugas-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	app := CreateTestApp()

	user, token := signupUser(t, app)

	// Password dan avatar tidak boleh ikut terserialisasi
	_, hasPassword := user["password"]
	assert.False(t, hasPassword, "password must never appear in responses")
	_, hasAvatar := user["avatar"]
	assert.False(t, hasAvatar, "avatar bytes must never appear in responses")

	// Password di database harus berupa hash, bukan plaintext
	var stored string
	err := config.DB.QueryRow("SELECT password FROM users WHERE id = $1", user["id"]).Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2longer", stored)
	assert.NotEmpty(t, stored)

	// Token hasil signup harus langsung bisa dipakai
	req := jsonRequest(t, "GET", "/users/me", nil, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	me := decodeBody(t, resp)
	assert.Equal(t, user["id"], me["id"])
	assert.Equal(t, user["email"], me["email"])
}

func TestSignupValidation(t *testing.T) {
	app := CreateTestApp()

	cases := []map[string]interface{}{
		{"name": "A", "email": "a@example.com"},                                  // tanpa password
		{"name": "A", "email": "a@example.com", "password": "short"},             // password terlalu pendek
		{"name": "A", "email": "a@example.com", "password": "mypassword123"},     // mengandung "password"
		{"name": "A", "email": "not-an-email", "password": "hunter2longer"},      // email tidak valid
		{"email": "a@example.com", "password": "hunter2longer"},                  // tanpa nama
		{"name": "A", "email": "a@example.com", "password": "okokokok", "age": -1}, // umur negatif
	}
	for i, body := range cases {
		req := jsonRequest(t, "POST", "/users", body, "")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode, "case %d: %v", i, body)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	app := CreateTestApp()

	email := fmt.Sprintf("dup_%d@example.com", time.Now().UnixNano())
	body := map[string]interface{}{
		"name":     "First",
		"email":    email,
		"password": "hunter2longer",
	}

	req := jsonRequest(t, "POST", "/users", body, "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)

	// Email yang sama (beda kapitalisasi) harus ditolak
	body["email"] = "DUP" + email[3:]
	req = jsonRequest(t, "POST", "/users", body, "")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestLoginWrongCredentials(t *testing.T) {
	app := CreateTestApp()

	user, _ := signupUser(t, app)
	email := user["email"].(string)

	// Password salah
	req := jsonRequest(t, "POST", "/users/login", map[string]string{
		"email":    email,
		"password": "wrong-password-1",
	}, "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	result := decodeBody(t, resp)
	_, hasToken := result["token"]
	assert.False(t, hasToken, "no token may be issued on failed login")

	// Email tidak terdaftar: response harus sama persis
	req = jsonRequest(t, "POST", "/users/login", map[string]string{
		"email":    "nobody_here@example.com",
		"password": "wrong-password-1",
	}, "")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestLogoutRevokesOnlyPresentedToken(t *testing.T) {
	app := CreateTestApp()

	user, token1 := signupUser(t, app)
	email := user["email"].(string)

	// Login kedua: session tambahan, token pertama tetap berlaku
	token2 := loginUser(t, app, email, "hunter2longer")
	require.NotEqual(t, token1, token2)

	// Logout dengan token1
	req := jsonRequest(t, "POST", "/users/logout", nil, token1)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	// token1 sudah dicabut
	req = jsonRequest(t, "GET", "/users/me", nil, token1)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	// token2 masih berlaku
	req = jsonRequest(t, "GET", "/users/me", nil, token2)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	app := CreateTestApp()

	user, token1 := signupUser(t, app)
	token2 := loginUser(t, app, user["email"].(string), "hunter2longer")

	req := jsonRequest(t, "POST", "/users/logoutall", nil, token2)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	for _, token := range []string{token1, token2} {
		req = jsonRequest(t, "GET", "/users/me", nil, token)
		resp, err = app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	app := CreateTestApp()

	routes := []struct{ method, url string }{
		{"GET", "/users/me"},
		{"PATCH", "/users/me"},
		{"DELETE", "/users/me"},
		{"POST", "/users/logout"},
		{"POST", "/users/logoutall"},
		{"POST", "/tasks"},
		{"GET", "/tasks"},
	}
	for _, r := range routes {
		// Tanpa header sama sekali
		req := jsonRequest(t, r.method, r.url, nil, "")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode, "%s %s without token", r.method, r.url)

		// Dengan token yang tidak valid
		req = jsonRequest(t, r.method, r.url, nil, "not-a-real-token")
		resp, err = app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode, "%s %s with bad token", r.method, r.url)
	}
}

func TestUpdateProfile(t *testing.T) {
	app := CreateTestApp()

	_, token := signupUser(t, app)

	req := jsonRequest(t, "PATCH", "/users/me", map[string]interface{}{
		"name": "Renamed",
		"age":  44,
	}, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	updated := decodeBody(t, resp)
	assert.Equal(t, "Renamed", updated["name"])
	assert.Equal(t, float64(44), updated["age"])

	// Perubahan harus benar-benar tersimpan
	req = jsonRequest(t, "GET", "/users/me", nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	me := decodeBody(t, resp)
	assert.Equal(t, "Renamed", me["name"])
}

func TestUpdateProfilePassword(t *testing.T) {
	app := CreateTestApp()

	user, token := signupUser(t, app)
	email := user["email"].(string)

	req := jsonRequest(t, "PATCH", "/users/me", map[string]interface{}{
		"password": "brand-new-secret",
	}, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	// Login dengan password baru harus berhasil
	loginUser(t, app, email, "brand-new-secret")

	// Password lama tidak berlaku lagi
	req = jsonRequest(t, "POST", "/users/login", map[string]string{
		"email":    email,
		"password": "hunter2longer",
	}, "")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestUpdateProfileUnknownFieldRejectedWholesale(t *testing.T) {
	app := CreateTestApp()

	user, token := signupUser(t, app)

	// Field name valid + field tidak dikenal: seluruh request ditolak
	req := jsonRequest(t, "PATCH", "/users/me", map[string]interface{}{
		"name":     "ShouldNotStick",
		"location": "Bandung",
	}, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	// Tidak boleh ada perubahan apa pun
	req = jsonRequest(t, "GET", "/users/me", nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	me := decodeBody(t, resp)
	assert.Equal(t, user["name"], me["name"])
}

func TestDeleteAccountCascadesTasks(t *testing.T) {
	app := CreateTestApp()

	user, token := signupUser(t, app)
	createTask(t, app, token, "first", false)
	createTask(t, app, token, "second", true)

	req := jsonRequest(t, "DELETE", "/users/me", nil, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	deleted := decodeBody(t, resp)
	assert.Equal(t, user["id"], deleted["id"])

	// Tidak boleh ada task yatim yang tersisa
	var count int
	err = config.DB.QueryRow("SELECT COUNT(*) FROM tasks WHERE owner = $1", user["id"]).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Token milik akun yang sudah dihapus tidak berlaku lagi
	req = jsonRequest(t, "GET", "/users/me", nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
