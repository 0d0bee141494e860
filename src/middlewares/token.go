package middlewares

import (
	"context"
	"ddtours/src/types"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminTokenIssuer = "ddtours-api"

type AdminTokenVerifier struct {
	secret []byte
}

func NewAdminTokenVerifier(secret string) *AdminTokenVerifier {
	return &AdminTokenVerifier{secret: []byte(secret)}
}

func (v *AdminTokenVerifier) Verify(_ context.Context, token string) (*types.Actor, error) {
	if len(v.secret) == 0 {
		log.Println("[auth] JWT_SECRET is not set. Rejecting admin token")
		return nil, types.ErrUnauthenticated
	}
	claims := &types.AdminClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		return nil, types.ErrUnauthenticated
	}
	if !tkn.Valid {
		return nil, types.ErrUnauthenticated
	}
	if claims.Role != types.ROLE_ADMIN {
		return nil, types.ErrForbidden
	}
	return &types.Actor{ID: claims.Email, Role: types.ROLE_ADMIN, Email: claims.Email}, nil
}

// IssueAdminToken signs an admin token for email valid for ttl.
func IssueAdminToken(secret, email string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	claims := types.AdminClaims{
		Email: email,
		Role:  types.ROLE_ADMIN,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    adminTokenIssuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
