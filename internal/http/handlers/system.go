package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	intconfig "travelagency/internal/config"
	intdb "travelagency/internal/db"
	"travelagency/internal/http/middleware"
	"travelagency/internal/utils"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// DBCheck pings the pool and reports which required tables are missing.
func (h *Handler) DBCheck(c *gin.Context) {
	db := h.DB
	if db == nil {
		db = intconfig.DB
	}
	if db == nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database not connected", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database ping failed", nil)
		return
	}

	missing := []string{}
	for _, t := range intdb.RequiredTables {
		if !intdb.HasTable(ctx, db, t) {
			missing = append(missing, t)
		}
	}
	status := http.StatusOK
	if len(missing) > 0 {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"database": "ok", "missing_tables": missing})
}

func (h *Handler) Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		respondError(c, http.StatusServiceUnavailable, "not_ready", "router not ready", nil)
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{"method": rt.Method, "path": rt.Path})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}

// PurgeCache drops every cached public response, e.g. after editing rows
// directly in the database.
func (h *Handler) PurgeCache(c *gin.Context) {
	h.Cache.Purge()
	utils.LogEvent(middleware.GetRequestID(c), "cache", "purge", "public cache purged by admin "+middleware.GetUserEmail(c))
	c.Status(http.StatusNoContent)
}
