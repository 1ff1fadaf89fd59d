package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Serve runs the MCP server on the given transport. The stdio transport
// blocks until stdin closes; the http transport blocks until the context
// is canceled, then shuts down gracefully.
func Serve(ctx context.Context, s *server.MCPServer, transport string, port int, logger *zap.Logger) error {
	if transport == "http" {
		httpSrv := server.NewStreamableHTTPServer(s)
		addr := fmt.Sprintf(":%d", port)
		logger.Info("serving MCP over streamable HTTP", zap.String("addr", addr))

		errCh := make(chan error, 1)
		go func() {
			errCh <- httpSrv.Start(addr)
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	}

	logger.Info("serving MCP over stdio")
	if err := server.ServeStdio(s); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
