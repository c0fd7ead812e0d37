package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"sentraip-mcp/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run renders the document to stdout and returns the process exit code.
func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("openapi-export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	format := fs.String("format", "json", "output format: json or yaml")
	publicURL := fs.String("server", "http://10.10.0.3:8081", "server URL advertised in the document")
	if err := fs.Parse(args); err != nil {
		slog.Error("parse args", "err", err)
		return 2
	}

	doc := server.Document(*publicURL)

	var (
		out []byte
		err error
	)
	switch *format {
	case "json":
		out, err = doc.JSON()
	case "yaml":
		out, err = doc.YAML()
	default:
		slog.Error("unknown format", "format", *format)
		return 2
	}
	if err != nil {
		slog.Error("render failed", "err", err)
		return 1
	}

	if _, err := fmt.Fprintf(stdout, "%s\n", out); err != nil {
		slog.Error("write failed", "err", err)
		return 1
	}
	return 0
}
