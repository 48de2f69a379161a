package security

import (
	"errors"
	"time"

	"algoarena/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateToken issues a signed token carrying the user's id, role and tier.
// The tier claim lets clients gate pro-only UI without a profile round trip;
// the user row stays authoritative for anything that spends credits.
func GenerateToken(userID, role, tier string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"tier":    tier,
		"exp":     now.Add(config.AppConfig.JWTExp).Unix(),
		"iat":     now.Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func stringClaim(claims jwt.MapClaims, name string) (string, error) {
	v, ok := claims[name].(string)
	if !ok {
		return "", errors.New(name + " claim is missing or not a string")
	}
	return v, nil
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "user_id")
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "role")
}

func GetUserTierFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "tier")
}
