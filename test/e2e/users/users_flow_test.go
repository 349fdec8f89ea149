package users_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRegisterLoginCRUDFlow walks the full lifecycle over the wire: register,
// login, read, search, update and delete.
func TestRegisterLoginCRUDFlow(t *testing.T) {
	baseURL, cleanup := setupUserContainer(t)
	defer cleanup()

	created := registerAlice(t, baseURL)
	require.Equal(t, aliceUsername, created.Username)
	require.True(t, created.Active)

	token := loginAlice(t, baseURL)

	var got userPayload
	status := doJSON(t, http.MethodGet, baseURL+"/api/users/"+created.ID, token, nil, &got)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, aliceEmail, got.Email)

	var page pagePayload
	status = doJSON(t, http.MethodGet, baseURL+"/api/users/search?fullName=johnson", token, nil, &page)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, page.TotalItems)

	var updated userPayload
	status = doJSON(t, http.MethodPut, baseURL+"/api/users/"+created.ID, token, map[string]any{
		"fullName": "Alice J. Johnson",
		"role":     "ADMIN",
		"active":   true,
	}, &updated)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ADMIN", updated.Role)

	status = doJSON(t, http.MethodDelete, baseURL+"/api/users/"+created.ID, token, nil, nil)
	require.Equal(t, http.StatusNoContent, status)
}

// TestProtectedEndpointsRequireToken verifies the gate rejects tokenless and
// garbage-token requests with the right error descriptions.
func TestProtectedEndpointsRequireToken(t *testing.T) {
	baseURL, cleanup := setupUserContainer(t)
	defer cleanup()

	var missing errorPayload
	status := doJSON(t, http.MethodGet, baseURL+"/api/users", "", nil, &missing)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "invalid_token", missing.Error)
	require.Equal(t, "missing bearer token", missing.ErrorDescription)

	var garbage errorPayload
	status = doJSON(t, http.MethodGet, baseURL+"/api/users", "not.a.jwt", nil, &garbage)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "invalid token", garbage.ErrorDescription)
}

// TestLoginRejectsBadCredentials verifies both failure modes share one shape.
func TestLoginRejectsBadCredentials(t *testing.T) {
	baseURL, cleanup := setupUserContainer(t)
	defer cleanup()

	registerAlice(t, baseURL)

	var wrongPw errorPayload
	status := doJSON(t, http.MethodPost, baseURL+"/api/auth/login", "", map[string]string{
		"username": aliceUsername,
		"password": "Wrong123!",
	}, &wrongPw)
	require.Equal(t, http.StatusUnauthorized, status)

	var unknown errorPayload
	status = doJSON(t, http.MethodPost, baseURL+"/api/auth/login", "", map[string]string{
		"username": "nobody",
		"password": alicePassword,
	}, &unknown)
	require.Equal(t, http.StatusUnauthorized, status)

	require.Equal(t, wrongPw, unknown)
}

// TestDuplicateRegistrationConflicts verifies the unique constraints surface
// as 409s over the wire.
func TestDuplicateRegistrationConflicts(t *testing.T) {
	baseURL, cleanup := setupUserContainer(t)
	defer cleanup()

	registerAlice(t, baseURL)

	var dup errorPayload
	status := doJSON(t, http.MethodPost, baseURL+"/api/users/register", "", map[string]string{
		"fullName": "Alice Clone",
		"username": "alice2",
		"email":    aliceEmail,
		"password": alicePassword,
		"role":     "USER",
	}, &dup)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "duplicate_email", dup.Error)
}
