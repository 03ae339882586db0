// Command draftserver runs the booster-draft coordination server: one
// process owns every draft's Engine, persists snapshots under a data
// directory, and serves the upload form, summary API, and WebSocket
// session endpoint over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"boosterdraft/internal/config"
	"boosterdraft/internal/contentwatch"
	"boosterdraft/internal/httpapi"
	"boosterdraft/internal/registry"
	"boosterdraft/internal/wshub"
)

// Exit codes per the CLI contract: 0 graceful, 1 configuration error, 2
// bind failure.
const (
	exitOK          = 0
	exitConfigError = 1
	exitBindFailure = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "usage: %s <content_dir> <data_dir> <port>\n", os.Args[0])
		return exitConfigError
	}
	contentDir, dataDir := os.Args[1], os.Args[2]
	port, err := strconv.Atoi(os.Args[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid port %q: %v\n", os.Args[3], err)
		return exitConfigError
	}

	cfg := config.DefaultConfig()
	cfg.Content.ContentDir = contentDir
	cfg.Content.DataDir = dataDir
	cfg.Server.Port = port
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitConfigError
	}

	if err := os.MkdirAll(cfg.Content.ContentDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create content dir: %v\n", err)
		return exitConfigError
	}

	reg, err := registry.Open(cfg.Content.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open registry: %v\n", err)
		return exitConfigError
	}
	defer func() {
		if err := reg.Close(); err != nil {
			log.Printf("draftserver: close registry: %v", err)
		}
	}()

	warnAfter, _ := cfg.HeartbeatWarnAfter()
	errAfter, _ := cfg.HeartbeatErrorAfter()
	hub := wshub.NewHub(reg, warnAfter, errAfter)

	watcher, err := contentwatch.New([]string{cfg.Content.ContentDir, cfg.Content.DataDir}, func(path string) {
		log.Printf("draftserver: content change detected: %s", path)
		if !strings.HasSuffix(path, ".snapshot") {
			return
		}
		id, err := reg.Reload(path)
		if err != nil {
			log.Printf("draftserver: reload %s: %v", path, err)
			return
		}
		hub.BroadcastRefresh(id)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "start content watcher: %v\n", err)
		return exitConfigError
	}
	defer watcher.Close()
	go watcher.Run()

	// Probe the listener synchronously so a busy port is reported before
	// the HTTP server starts, rather than discovered only via a background
	// goroutine's log line.
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bind %s: %v\n", addr, err)
		return exitBindFailure
	}
	ln.Close()

	server := httpapi.New(cfg, reg, hub, watcher)
	server.Start()
	log.Printf("draftserver: listening on port %d (content=%s, data=%s)", cfg.Server.Port, cfg.Content.ContentDir, cfg.Content.DataDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Println("draftserver: shutting down")

	shutdownTimeout, _ := cfg.ShutdownTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("draftserver: shutdown error: %v", err)
	}

	return exitOK
}
