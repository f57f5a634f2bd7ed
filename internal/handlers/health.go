package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bookbrain/internal/contextutil"
)

// CollectionChecker reports whether the vector index collection exists.
type CollectionChecker interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
}

// Pinger checks a database connection.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	index              CollectionChecker
	db                 Pinger
	collectionName     string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. A nil index or db marks that
// check as skipped, as when running on in-memory backends.
func NewHealthHandler(index CollectionChecker, db Pinger, collectionName string) *HealthHandler {
	return &HealthHandler{
		index:              index,
		db:                 db,
		collectionName:     collectionName,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy" or "degraded"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// An unreachable vector index degrades answers but does not stop them, so it
// reports "degraded" with 200. An unreachable database is a 503.
//
// responses:
//
//	'200':
//	  description: System is healthy or degraded
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: Database unavailable
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string
	httpStatus := http.StatusOK

	switch {
	case h.db == nil:
		checks["database"] = "skipped"
	case h.db.PingContext(checkCtx) != nil:
		logger.WarnContext(ctx, "database health check failed")
		checks["database"] = "error"
		issues = append(issues, "database_unavailable")
		httpStatus = http.StatusServiceUnavailable
	default:
		checks["database"] = "ok"
	}

	switch {
	case h.index == nil:
		checks["vector_store"] = "skipped"
	case h.checkVectorStore(checkCtx, logger):
		checks["vector_store"] = "ok"
	default:
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	}
	if len(issues) > 0 {
		response.Status = "degraded"
	}

	writeJSON(w, httpStatus, response)
}

// checkVectorStore checks if the vector store is accessible.
func (h *HealthHandler) checkVectorStore(ctx context.Context, logger *slog.Logger) bool {
	exists, err := h.index.CollectionExists(ctx, h.collectionName)
	if err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		return false
	}
	if !exists {
		logger.WarnContext(ctx, "vector store collection does not exist", "collection", h.collectionName)
		return false
	}
	return true
}
