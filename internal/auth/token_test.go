package auth_test

import (
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-linkmarket/internal/auth"
	"ms-linkmarket/internal/models"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestExtractTokenFromRequest(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")

	token, err := auth.ExtractTokenFromRequest(req)
	assert.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	req.Header.Del("Authorization")
	_, err = auth.ExtractTokenFromRequest(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Basic abc")
	_, err = auth.ExtractTokenFromRequest(req)
	assert.Error(t, err)
}

func TestExtractActorFromJWT(t *testing.T) {
	tokenString := signedToken(t, jwt.MapClaims{
		"sub": "user-42",
		"realm_access": map[string]interface{}{
			"roles": []interface{}{"buyer", "publisher"},
		},
	})

	actor, err := auth.ExtractActorFromJWT(tokenString)

	assert.NoError(t, err)
	assert.Equal(t, "user-42", actor.ID)
	assert.True(t, actor.HasRole(models.RoleBuyer))
	assert.True(t, actor.HasRole(models.RolePublisher))
	assert.False(t, actor.IsAdmin())
}

func TestExtractActorFromJWTWithoutRoles(t *testing.T) {
	tokenString := signedToken(t, jwt.MapClaims{"sub": "user-42"})

	actor, err := auth.ExtractActorFromJWT(tokenString)

	assert.NoError(t, err)
	assert.Equal(t, "user-42", actor.ID)
	assert.Empty(t, actor.Roles)
}

func TestExtractActorFromJWTMissingSubject(t *testing.T) {
	tokenString := signedToken(t, jwt.MapClaims{"email": "someone@example.com"})

	_, err := auth.ExtractActorFromJWT(tokenString)
	assert.Error(t, err)

	_, err = auth.ExtractActorFromJWT("")
	assert.Error(t, err)

	_, err = auth.ExtractActorFromJWT("not-a-jwt")
	assert.Error(t, err)
}
