// Package api provides the HTTP surface for the assistant orchestrator:
// one query endpoint plus a health check.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/google/uuid"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/metadata"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/version"
)

const maxRequestBody = 64 * 1024

// Handler is the subset of orchestrator.Orchestrator the server depends on.
type Handler interface {
	Handle(ctx context.Context, campaignUUID uuid.UUID, query string) models.AssistantResponse
}

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server
	metadata   *metadata.Client
	handler    Handler
}

// NewServer creates a new API server with Echo v5.
func NewServer(metadataClient *metadata.Client, handler Handler) *Server {
	e := echo.New()

	s := &Server{echo: e, metadata: metadataClient, handler: handler}
	s.setupRoutes()
	return s
}

// ValidateWiring checks that all required collaborators have been wired.
// Call this after NewServer and before Start/StartWithListener.
func (s *Server) ValidateWiring() error {
	var errs []error
	if s.metadata == nil {
		errs = append(errs, errors.New("metadata client not set"))
	}
	if s.handler == nil {
		errs = append(errs, errors.New("query handler not set"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(maxRequestBody))
	s.echo.Use(securityHeaders())

	s.echo.GET("/health", s.healthHandler)

	v1 := s.echo.Group("/api/campaigns")
	v1.POST("/:campaignUuid/assistant/query", s.queryHandler)
}

// queryHandler handles POST /api/campaigns/{campaignUuid}/assistant/query.
func (s *Server) queryHandler(c *echo.Context) error {
	campaignUUID, err := uuid.Parse(c.Param("campaignUuid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "campaignUuid must be a valid UUID")
	}

	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	response := s.handler.Handle(c.Request().Context(), campaignUUID, req.Query)

	if response.ResponseType == models.ResponseTypeError {
		if status, isHTTPLevel := httpStatusFor(response.ErrorType); isHTTPLevel {
			return echo.NewHTTPError(status, response.TextResponse)
		}
	}

	return c.JSON(http.StatusOK, toQueryResponse(response))
}

// Start starts the HTTP server on the given address. It blocks until the
// server stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener.
// Used by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]HealthCheck)
	status := "healthy"

	if _, err := metadata.Health(reqCtx, s.metadata.DB()); err != nil {
		status = "unhealthy"
		checks["metadata_db"] = HealthCheck{Status: "unhealthy", Message: err.Error()}
	} else {
		checks["metadata_db"] = HealthCheck{Status: "healthy"}
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, &HealthResponse{
		Status:  status,
		Version: version.Full(),
		Checks:  checks,
	})
}
