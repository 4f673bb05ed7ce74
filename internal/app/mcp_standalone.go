package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vectorboard/internal/config"
	"vectorboard/internal/figma"
	mcpserver "vectorboard/internal/mcp"
	"vectorboard/internal/service"
)

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no
// GUI. Destructive tools wait for approval from a running desktop app
// through the shared database.
func ServeMCP(cfgPath string) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("[MCP] config %s: %v (using defaults)", cfgPath, err)
	}

	b, err := openBackend(cfg, service.NopEmitter{}, figma.DefaultLogger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer b.close(context.Background())

	srv := mcpserver.New(mcpserver.Deps{
		Emitter:   service.NopEmitter{},
		Documents: b.docs,
		Imports:   b.imports,
		Approvals: b.approvals,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("[MCP] server stopped: %v", err)
		}
	case <-ctx.Done():
		log.Println("[MCP] interrupted, shutting down")
	}
}
