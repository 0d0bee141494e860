package middlewares

import (
	"context"
	"ddtours/src/types"
	"errors"
	"log"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

const ACTOR_KEY = "actor"

// Verifier resolves a bearer credential into an actor.
type Verifier interface {
	Verify(ctx context.Context, token string) (*types.Actor, error)
}

// IDTokenVerifier is the subset of the Firebase auth client used here.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type FirebaseVerifier struct {
	client IDTokenVerifier
}

func NewFirebaseVerifier(client IDTokenVerifier) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*types.Actor, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		log.Printf("Failed to verify ID token: %s\n", err.Error())
		return nil, types.ErrUnauthenticated
	}
	return &types.Actor{
		ID:      token.UID,
		Role:    types.ROLE_USER,
		Email:   claimString(token.Claims, "email"),
		Name:    claimString(token.Claims, "name"),
		Picture: claimString(token.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func bearerToken(ctx *gin.Context) string {
	header := strings.TrimSpace(ctx.GetHeader("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// Authenticate rejects requests without a credential accepted by v and stores
// the resolved actor on the context.
func Authenticate(v Verifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No token provided"})
			return
		}
		actor, err := v.Verify(ctx.Request.Context(), token)
		if err != nil {
			if errors.Is(err, types.ErrForbidden) {
				ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Admin access required"})
				return
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized: invalid or expired token"})
			return
		}
		ctx.Set(ACTOR_KEY, actor)
		ctx.Next()
	}
}

// GetActor returns the actor set by Authenticate, or nil.
func GetActor(ctx *gin.Context) *types.Actor {
	v, ok := ctx.Get(ACTOR_KEY)
	if !ok {
		return nil
	}
	actor, _ := v.(*types.Actor)
	return actor
}
