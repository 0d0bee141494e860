package controllers

import (
	"context"
	"crypto/subtle"
	"ddtours/src/middlewares"
	"ddtours/src/types"
	"errors"
	"log"
	"net/http"
	"strings"
)

type AdminSession struct {
	Message    string `json:"message"`
	Token      string `json:"token"`
	AdminEmail string `json:"adminEmail"`
}

type AdminController struct {
	deps Deps
}

func (c *AdminController) Login(_ context.Context, body *types.AdminLoginRequestBody) (*AdminSession, int, error) {
	cfg := c.deps.Config
	email := strings.ToLower(strings.TrimSpace(body.Email))
	denied := errors.New("Invalid admin credentials")
	if cfg.AdminPassword == "" || !cfg.IsAdminEmail(email) {
		log.Printf("[Admin] Rejected login for %s\n", email)
		return nil, http.StatusUnauthorized, denied
	}
	if subtle.ConstantTimeCompare([]byte(body.Password), []byte(cfg.AdminPassword)) != 1 {
		log.Printf("[Admin] Rejected login for %s\n", email)
		return nil, http.StatusUnauthorized, denied
	}
	token, err := middlewares.IssueAdminToken(cfg.JWTSecret, email, cfg.AdminTokenTTL, c.deps.Now())
	if err != nil {
		log.Printf("[Admin] Error issuing token: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return &AdminSession{Message: "Admin Access Granted", Token: token, AdminEmail: email}, http.StatusOK, nil
}
