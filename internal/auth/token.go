package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"ms-linkmarket/internal/models"
)

// ExtractTokenFromRequest extracts a JWT token from an HTTP request's Authorization header
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}

// ExtractActorFromJWT parses the JWT and builds an Actor from the 'sub' and
// 'realm_access.roles' claims. The signature is assumed to have been verified
// upstream by the OIDC middleware.
func ExtractActorFromJWT(tokenString string) (models.Actor, error) {
	if tokenString == "" {
		return models.Actor{}, errors.New("empty token")
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return models.Actor{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return models.Actor{}, errors.New("subject claim not found in token")
	}

	actor := models.Actor{ID: sub}

	if realm, ok := claims["realm_access"].(map[string]interface{}); ok {
		if rawRoles, ok := realm["roles"].([]interface{}); ok {
			for _, r := range rawRoles {
				if role, ok := r.(string); ok {
					actor.Roles = append(actor.Roles, role)
				}
			}
		}
	}

	return actor, nil
}
