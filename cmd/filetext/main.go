// Command filetext extracts plain text from files and prints one JSON
// envelope per argument. With MCP_TRANSPORT=stdio it serves the extraction
// tools over stdio instead.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hazyhaar/filetext"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	logLevel := env("LOG_LEVEL", "info")
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	cfg := filetext.Config{Logger: logger}
	if path := os.Getenv("FILETEXT_CONFIG"); path != "" {
		loaded, err := filetext.LoadConfig(path)
		if err != nil {
			slog.Error("load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
		cfg.Logger = logger
	}
	if v := os.Getenv("FILETEXT_MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			slog.Error("FILETEXT_MAX_FILE_SIZE must be an integer", "value", v)
			os.Exit(1)
		}
		cfg.MaxFileSize = n
	}
	if v := os.Getenv("FILETEXT_MAX_OUTPUT_CHARS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Error("FILETEXT_MAX_OUTPUT_CHARS must be an integer", "value", v)
			os.Exit(1)
		}
		cfg.MaxOutputChars = n
	}

	eng := filetext.New(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if env("MCP_TRANSPORT", "") == "stdio" {
		srv := mcp.NewServer(&mcp.Implementation{Name: "filetext", Version: "1.0.0"}, nil)
		eng.RegisterMCP(srv)
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && err != context.Canceled {
			slog.Error("mcp server", "error", err)
			os.Exit(1)
		}
		return
	}

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: filetext FILE...")
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	exitCode := 0
	for _, path := range os.Args[1:] {
		env := eng.Extract(ctx, path)
		if !env.Outcome.Success {
			exitCode = 1
		}
		if err := enc.Encode(env); err != nil {
			slog.Error("encode envelope", "error", err)
			os.Exit(1)
		}
	}
	os.Exit(exitCode)
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
