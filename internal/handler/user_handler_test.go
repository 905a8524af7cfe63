package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"microblog/backend/internal/auth"
	"microblog/backend/internal/database"
	"microblog/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func signUpForm(username, email, password, confirmation string) url.Values {
	return url.Values{
		"username":              {username},
		"email":                 {email},
		"password":              {password},
		"password_confirmation": {confirmation},
	}
}

func decodeErrors(t *testing.T, body []byte) map[string][]string {
	t.Helper()

	var resp ValidationErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Errors
}

func TestSignUpCreatesAccountAndStartsSession(t *testing.T) {
	router := setupRouter(t)

	w := postForm(router, "/signup", signUpForm("alice", "alice@example.com", "correcthorse1", "correcthorse1"))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))

	var sessionSet bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.CookieName && cookie.Value != "" {
			sessionSet = true
		}
	}
	assert.True(t, sessionSet, "expected a session cookie")

	var user models.User
	require.NoError(t, database.DB.Where("username = ?", "alice").First(&user).Error)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "correcthorse1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correcthorse1")))
}

func TestSignUpValidation(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		field   string
		message string
	}{
		{
			name:    "missing username",
			form:    signUpForm("", "a@example.com", "correcthorse1", "correcthorse1"),
			field:   "username",
			message: "This field is required.",
		},
		{
			name:    "missing email",
			form:    signUpForm("alice", "", "correcthorse1", "correcthorse1"),
			field:   "email",
			message: "This field is required.",
		},
		{
			name:    "invalid email",
			form:    signUpForm("alice", "not-an-email", "correcthorse1", "correcthorse1"),
			field:   "email",
			message: "Enter a valid email address.",
		},
		{
			name:    "confirmation mismatch",
			form:    signUpForm("alice", "a@example.com", "correcthorse1", "correcthorse2"),
			field:   "password_confirmation",
			message: "The two password fields didn't match.",
		},
		{
			name:    "password too short",
			form:    signUpForm("alice", "a@example.com", "short1", "short1"),
			field:   "password",
			message: "This password is too short. It must contain at least 8 characters.",
		},
		{
			name:    "password entirely numeric",
			form:    signUpForm("alice", "a@example.com", "123456789", "123456789"),
			field:   "password",
			message: "This password is entirely numeric.",
		},
		{
			name:    "password too similar to username",
			form:    signUpForm("charlotte", "a@example.com", "charlotte99", "charlotte99"),
			field:   "password",
			message: "The password is too similar to the username.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t)

			w := postForm(router, "/signup", tt.form)

			assert.Equal(t, http.StatusOK, w.Code)
			fieldErrors := decodeErrors(t, w.Body.Bytes())
			assert.Contains(t, fieldErrors[tt.field], tt.message)
			assert.Zero(t, countRows(t, &models.User{}, ""))
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	router := setupRouter(t)

	w := postForm(router, "/signup", signUpForm("alice", "alice@x.com", "password1", "password1"))
	require.Equal(t, http.StatusFound, w.Code)

	w = postForm(router, "/signup", signUpForm("bob", "alice@x.com", "password1", "password1"))
	assert.Equal(t, http.StatusOK, w.Code)
	fieldErrors := decodeErrors(t, w.Body.Bytes())
	assert.Contains(t, fieldErrors["email"], "A user with that email already exists.")

	assert.Equal(t, int64(1), countRows(t, &models.User{}, ""))
}

func TestSignUpDuplicateUsername(t *testing.T) {
	router := setupRouter(t)
	createUser(t, "alice", "alice@x.com", "password1")

	w := postForm(router, "/signup", signUpForm("alice", "other@x.com", "password1", "password1"))

	assert.Equal(t, http.StatusOK, w.Code)
	fieldErrors := decodeErrors(t, w.Body.Bytes())
	assert.Contains(t, fieldErrors["username"], "A user with that username already exists.")
	assert.Equal(t, int64(1), countRows(t, &models.User{}, ""))
}

func TestLoginSuccessSetsCookieAndRedirects(t *testing.T) {
	router := setupRouter(t)
	createUser(t, "alice", "alice@x.com", "password1")

	w := postForm(router, "/login", url.Values{"username": {"alice"}, "password": {"password1"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))

	var sessionSet bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.CookieName && cookie.Value != "" {
			sessionSet = true
		}
	}
	assert.True(t, sessionSet, "expected a session cookie")
}

func TestLoginFailureIsGeneric(t *testing.T) {
	router := setupRouter(t)
	createUser(t, "alice", "alice@x.com", "password1")

	// Wrong password, unknown user, and wrong-case username must all fail
	// with the same message.
	for _, form := range []url.Values{
		{"username": {"alice"}, "password": {"wrongpassword"}},
		{"username": {"mallory"}, "password": {"password1"}},
		{"username": {"Alice"}, "password": {"password1"}},
	} {
		w := postForm(router, "/login", form)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Incorrect username or password.")
		assert.Empty(t, w.Result().Cookies())
	}
}

func TestLogoutClearsSessionAndIsIdempotent(t *testing.T) {
	router := setupRouter(t)
	user := createUser(t, "alice", "alice@x.com", "password1")

	w := postForm(router, "/logout", nil, sessionCookie(t, user))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	var cleared bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.CookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "expected the session cookie to be cleared")

	// Logging out without a session behaves identically.
	w = postForm(router, "/logout", nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	router := setupRouter(t)

	assert.Equal(t, http.StatusUnauthorized, getJSON(router, "/home").Code)
	assert.Equal(t, http.StatusUnauthorized, postForm(router, "/posts", url.Values{"content": {"hi"}}).Code)
	assert.Equal(t, http.StatusUnauthorized, postForm(router, "/users/alice/follow", nil).Code)
}

func TestSearchUsers(t *testing.T) {
	router := setupRouter(t)
	viewer := createUser(t, "viewer", "viewer@x.com", "password1")
	createUser(t, "alice", "alice@x.com", "password1")
	createUser(t, "alina", "alina@x.com", "password1")
	createUser(t, "bob", "bob@x.com", "password1")

	w := getJSON(router, "/users?q=ali", sessionCookie(t, viewer))
	require.Equal(t, http.StatusOK, w.Code)

	var resp PaginatedResponse[UserSummary]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Meta.TotalItems)

	names := make([]string, 0, len(resp.Data))
	for _, summary := range resp.Data {
		names = append(names, summary.Username)
	}
	assert.ElementsMatch(t, []string{"alice", "alina"}, names)
}
