/* Copyright (c) 2025 BugBeheer contributors
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ChielvanV/BugBeheer/internal/config"
)

func NewRouter(cfg config.Config, log zerolog.Logger, svc bugService, sessions sessionGate) *gin.Engine {
	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Next()
		log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
	})

	h := NewHandlers(cfg, log, svc, sessions)

	r.GET("/healthz", h.Healthz)
	r.POST("/login", h.Login)

	gated := r.Group("/", h.RequireSession)
	gated.POST("/logout", h.Logout)
	gated.GET("/bugs", h.ListBugs)
	gated.GET("/bugs/matrix", h.Matrix)
	gated.POST("/bugs", h.CreateBug)
	gated.GET("/bugs/:id", h.GetBug)
	gated.PUT("/bugs/:id", h.UpdateBug)
	gated.POST("/bugs/:id/complete", h.CompleteBug)
	gated.DELETE("/bugs/:id", h.DeleteBug)
	gated.DELETE("/bugs", h.DeleteAllBugs)

	return r
}
