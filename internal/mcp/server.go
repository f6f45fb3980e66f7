// ABOUTME: MCP server exposing jetgym workouts, analytics and cache state.
// ABOUTME: Tools and resources act for the logged-in user through the service layer.
package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/jetgym/internal/cache"
	"github.com/harperreed/jetgym/internal/metrics"
	"github.com/harperreed/jetgym/internal/service"
)

// Server wraps the MCP server with service access.
type Server struct {
	mcpServer *mcp.Server
	svc       *service.Services
	cache     *cache.Cache
	metrics   *metrics.Manager
}

// NewServer creates an MCP server over svc. m may be nil.
func NewServer(svc *service.Services, c *cache.Cache, m *metrics.Manager) (*Server, error) {
	if svc == nil || c == nil {
		return nil, errors.New("mcp: services and cache are required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "jetgym",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		svc:       svc,
		cache:     c,
		metrics:   m,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) userID() (int64, error) {
	return s.svc.Auth.UserID()
}
