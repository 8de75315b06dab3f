// Package main is the quill language diagnostics runner: it opens the
// given files with their language servers, waits for diagnostics, and
// prints them. It doubles as the wiring example for internal/lsp while
// the editor surface is built out.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/lsp"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	configPath    string
	workspacePath string
	wait          time.Duration
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()
	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no files given")
		flag.Usage()
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	workspace := opts.workspacePath
	if workspace == "" {
		workspace, err = os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	client := lsp.NewClient(workspace)
	defer client.Shutdown()

	// User-defined servers are registered after the defaults but matter
	// anyway: fallback only reaches them when the defaults fail to spawn.
	for _, entry := range cfg.LSP.Servers {
		client.Manager().RegisterConfig(entry.ServerConfig())
	}

	opened := 0
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			continue
		}
		content, err := os.ReadFile(abs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			continue
		}
		if lsp.DetectLanguageID(abs) == "" {
			fmt.Fprintf(os.Stderr, "Skipping %s: unrecognized file type\n", path)
			continue
		}
		if err := client.OpenDocument(abs, string(content)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			continue
		}
		opened++
	}
	if opened == 0 {
		return 1
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	// Pump at frame cadence until the wait expires or a signal arrives.
	deadline := time.After(opts.wait)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

pump:
	for {
		select {
		case <-ticker.C:
			client.ProcessMessages()
			for {
				if _, ok := client.PollResponse(); !ok {
					break
				}
			}
		case <-deadline:
			break pump
		case <-signals:
			break pump
		}
	}

	return printDiagnostics(client)
}

func printDiagnostics(client *lsp.Client) int {
	all := client.GetAllDiagnostics()
	uris := make([]string, 0, len(all))
	for uri := range all {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	total := 0
	for _, uri := range uris {
		path := lsp.URIToFilePath(uri)
		for _, d := range all[uri] {
			fmt.Printf("%s:%d:%d: %s: %s\n",
				path, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Severity, d.Message)
			total++
		}
	}
	if total > 0 {
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", defaultConfigPath(), "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", defaultConfigPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&opts.workspacePath, "workspace", "", "Workspace/project directory")
	flag.StringVar(&opts.workspacePath, "w", "", "Workspace/project directory (shorthand)")
	flag.DurationVar(&opts.wait, "wait", 10*time.Second, "How long to wait for diagnostics")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Quill - language server diagnostics runner\n\n")
		fmt.Fprintf(os.Stderr, "Usage: quill [options] files...\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("Quill %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	return opts
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "quill", "config.toml")
}
