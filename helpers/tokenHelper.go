package helpers

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const (
	RoleAdmin   = "ADMIN"
	RoleKitchen = "KITCHEN"
)

// SignedDetails are the claims carried by a staff token.
type SignedDetails struct {
	Name      string
	Uid       string
	User_role string
	jwt.StandardClaims
}

// GenerateStaffToken signs a token for a console user. Tokens are handed out
// by operators; the service has no login flow.
func GenerateStaffToken(secret, name, uid, role string, ttl time.Duration) (string, error) {
	if role != RoleAdmin && role != RoleKitchen {
		return "", fmt.Errorf("unknown staff role %q", role)
	}
	claim := SignedDetails{
		Name:      name,
		Uid:       uid,
		User_role: role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Local().Add(ttl).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claim).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign staff token: %w", err)
	}
	return token, nil
}

func ValidateToken(secret, signedToken string) (claims *SignedDetails, msg string) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&SignedDetails{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		msg = err.Error()
		return
	}
	claims, ok := token.Claims.(*SignedDetails)
	if !ok || !token.Valid {
		msg = "the token is invalid"
		return nil, msg
	}
	if claims.ExpiresAt < time.Now().Local().Unix() {
		msg = "token is expired"
		return nil, msg
	}
	return claims, ""
}
