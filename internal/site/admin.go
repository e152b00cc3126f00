package site

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const adminCookie = "admin_token"

// visitTrackingMiddleware records page views after the handler ran. Only
// handlers that set a route key count as page views, so assets, the API
// and admin pages are never logged. Do Not Track is respected.
func (s *Server) visitTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest || c.GetHeader("DNT") == "1" {
			return
		}
		key := c.GetString(ctxRouteKey)
		if key == "" {
			return
		}
		code := c.GetString(ctxWorkCode)
		ip, ua, path := c.ClientIP(), c.Request.UserAgent(), c.Request.URL.Path

		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.visits.Record(ctx, ip, ua, path, key, code); err != nil {
				s.logger.Error("recording visit", zap.Error(err))
				if s.metrics != nil {
					s.metrics.visitFails.Inc()
				}
			}
		}()
	}
}

func (s *Server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.Redirect(http.StatusFound, s.path("/admin/login"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) setupAdminRoutes(g *gin.RouterGroup) {
	if s.opts.AdminPassword == "" {
		s.logger.Warn("admin login disabled: no admin password configured")
	}

	g.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})

	g.POST("/admin/login", func(c *gin.Context) {
		hashed := s.visits.HashIP(c.ClientIP())

		if !s.loginLimiter.Allow() {
			s.logger.Warn("admin login throttled", zap.String("client", hashed))
			c.HTML(http.StatusTooManyRequests, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Too many attempts, try again in a minute",
			})
			return
		}

		username := c.PostForm("username")
		password := c.PostForm("password")

		ok := s.opts.AdminPassword != "" &&
			subtle.ConstantTimeCompare([]byte(username), []byte(s.opts.AdminUsername)) == 1 &&
			subtle.ConstantTimeCompare([]byte(password), []byte(s.opts.AdminPassword)) == 1
		if !ok {
			s.logger.Warn("failed admin login", zap.String("client", hashed))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}

		c.SetCookie(adminCookie, s.adminToken, 3600*24, s.path("/admin"), "", gin.Mode() == gin.ReleaseMode, true)
		s.logger.Info("admin login", zap.String("client", hashed))
		c.Redirect(http.StatusFound, s.path("/admin/dashboard"))
	})

	g.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, s.path("/admin"), "", gin.Mode() == gin.ReleaseMode, true)
		c.Redirect(http.StatusFound, s.path("/admin/login"))
	})

	admin := g.Group("/admin")
	admin.Use(s.adminAuthMiddleware())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.visits.Stats(c.Request.Context())
		if err != nil {
			s.logger.Error("loading admin stats", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"title": "Dashboard",
			"stats": stats,
		})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.visits.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.POST("/cleanup", func(c *gin.Context) {
		s.CleanupVisits(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup done"})
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.visits.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=visit-stats.json")
		c.JSON(http.StatusOK, stats)
	})
}
