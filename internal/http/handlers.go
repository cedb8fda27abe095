/* Copyright (c) 2025 BugBeheer contributors
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ChielvanV/BugBeheer/internal/config"
	"github.com/ChielvanV/BugBeheer/internal/domain"
	"github.com/ChielvanV/BugBeheer/internal/services"
)

type bugService interface {
	Create(ctx context.Context, in services.BugInput) (*domain.BugRecord, error)
	Update(ctx context.Context, id string, in services.BugInput) (*domain.BugRecord, error)
	Complete(ctx context.Context, id string) (*domain.BugRecord, error)
	Delete(ctx context.Context, id string) error
	DeleteAllNonReference(ctx context.Context) (deleted, preserved int64, err error)
	Get(ctx context.Context, id string) (*domain.BugRecord, error)
	List(ctx context.Context, opts services.ViewOptions) ([]domain.BugRecord, error)
	Matrix(ctx context.Context, opts services.ViewOptions) ([]domain.MatrixCell, error)
}

type sessionGate interface {
	Login(username, password string) (token string, expiresIn int, err error)
	Validate(token string) error
	Logout(token string)
}

type Handlers struct {
	cfg      config.Config
	log      zerolog.Logger
	svc      bugService
	sessions sessionGate
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc bugService, sessions sessionGate) *Handlers {
	return &Handlers{cfg: cfg, log: log, svc: svc, sessions: sessions}
}

// writeError maps the error taxonomy onto status codes. Anything outside the
// taxonomy is a 500 with a generic message; the cause only goes to the log.
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login payload"})
		return
	}
	token, expiresIn, err := h.sessions.Login(req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expiresIn": expiresIn})
}

func (h *Handlers) Logout(c *gin.Context) {
	h.sessions.Logout(bearerToken(c))
	c.Status(http.StatusNoContent)
}

func (h *Handlers) ListBugs(c *gin.Context) {
	bugs, err := h.svc.List(c.Request.Context(), viewOptions(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bugs)
}

func (h *Handlers) Matrix(c *gin.Context) {
	cells, err := h.svc.Matrix(c.Request.Context(), viewOptions(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cells": cells})
}

func (h *Handlers) GetBug(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handlers) CreateBug(c *gin.Context) {
	var in services.BugInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bug payload"})
		return
	}
	b, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handlers) UpdateBug(c *gin.Context) {
	var in services.BugInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bug payload"})
		return
	}
	b, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handlers) CompleteBug(c *gin.Context) {
	b, err := h.svc.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handlers) DeleteBug(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) DeleteAllBugs(c *gin.Context) {
	deleted, preserved, err := h.svc.DeleteAllNonReference(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "preserved": preserved})
}

// RequireSession gates a route on a valid bearer session. Rejected requests
// never reach the record store.
func (h *Handlers) RequireSession(c *gin.Context) {
	if err := h.sessions.Validate(bearerToken(c)); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.Next()
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

func viewOptions(c *gin.Context) services.ViewOptions {
	opts := services.ViewOptions{Status: domain.StatusOpen}
	if c.Query("status") == string(domain.StatusCompleted) {
		opts.Status = domain.StatusCompleted
	}
	if raw := c.Query("labels"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				opts.Labels = append(opts.Labels, domain.Label(part))
			}
		}
	}
	switch c.Query("sort") {
	case string(domain.SortScoreAsc):
		opts.Sort = domain.SortScoreAsc
	case string(domain.SortScoreDesc):
		opts.Sort = domain.SortScoreDesc
	}
	return opts
}
