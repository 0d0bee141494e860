package controllers

import (
	"context"
	"ddtours/src/db"
	"ddtours/src/models"
	"ddtours/src/types"
	"errors"
	"log"
	"net/http"
)

const defaultUsersPage = 10

type UsersController struct {
	deps Deps
}

// Profile returns the stored profile, or an empty one for users who never
// saved theirs.
func (c *UsersController) Profile(ctx context.Context, actor *types.Actor) (*models.UserProfile, int, error) {
	if actor == nil {
		return nil, http.StatusUnauthorized, types.ErrUnauthenticated
	}
	profile, err := db.GetByID[models.UserProfile](ctx, c.deps.Store, types.COLLECTION_USERS, actor.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &models.UserProfile{ID: actor.ID}, http.StatusOK, nil
		}
		log.Printf("[Users] Error fetching profile [%s]: %s\n", actor.ID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return profile, http.StatusOK, nil
}

func (c *UsersController) UpdateProfile(ctx context.Context, actor *types.Actor, body *types.UpdateProfileRequestBody) (*models.UserProfile, int, error) {
	if actor == nil {
		return nil, http.StatusUnauthorized, types.ErrUnauthenticated
	}
	err := c.deps.Store.Merge(ctx, types.COLLECTION_USERS, actor.ID, map[string]any{
		"phone":             body.Phone,
		"address":           body.Address,
		"dob":               body.DOB,
		"aadharNo":          body.AadharNo,
		"panNo":             body.PanNo,
		"isProfileComplete": true,
		"updatedAt":         c.deps.Now(),
	})
	if err != nil {
		log.Printf("[Users] Error saving profile [%s]: %s\n", actor.ID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return c.Profile(ctx, actor)
}

func (c *UsersController) List(ctx context.Context, q *types.ListUsersQuery) (*models.UserPage, int, error) {
	limit := q.Limit
	if limit < 1 {
		limit = defaultUsersPage
	}
	page, err := c.deps.Users.ListUsers(ctx, limit, q.NextPageToken)
	if err != nil {
		log.Printf("[Users] Error listing users: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return page, http.StatusOK, nil
}

func (c *UsersController) Delete(ctx context.Context, uid string) (int, error) {
	if err := c.deps.Users.DeleteUser(ctx, uid); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return http.StatusNotFound, errors.New("User not found")
		}
		log.Printf("[Users] Error deleting user [%s]: %s\n", uid, err.Error())
		return http.StatusInternalServerError, err
	}
	if err := c.deps.Store.Delete(ctx, types.COLLECTION_USERS, uid); err != nil {
		log.Printf("[Users] Error deleting profile [%s]: %s\n", uid, err.Error())
	}
	return http.StatusOK, nil
}
