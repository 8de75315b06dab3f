// Package config loads the editor's TOML configuration and watches it
// for changes.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/quill/internal/lsp"
)

// Config is the full editor configuration.
type Config struct {
	Editor EditorConfig `toml:"editor"`
	LSP    LSPConfig    `toml:"lsp"`
}

// EditorConfig holds the text-editing options the LSP layer consumes.
type EditorConfig struct {
	TabSize      int  `toml:"tab_size"`
	InsertSpaces bool `toml:"insert_spaces"`
}

// LSPConfig holds language server settings.
type LSPConfig struct {
	// Servers are user-defined entries registered ahead of the built-in
	// table, so they win the fallback order for their language.
	Servers []ServerEntry `toml:"servers"`

	// SaveIncludesText sends document content with didSave.
	SaveIncludesText bool `toml:"save_includes_text"`
}

// ServerEntry is one [[lsp.servers]] table.
type ServerEntry struct {
	Name     string   `toml:"name"`
	Language string   `toml:"language"`
	Command  []string `toml:"command"`

	// Features, when non-empty, limits the server to the named
	// capabilities: completion, hover, definition, references, symbols,
	// workspace-symbols, formatting, rename, code-actions,
	// signature-help, diagnostics.
	Features []string `toml:"features"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor: EditorConfig{TabSize: 4, InsertSpaces: true},
		LSP:    LSPConfig{SaveIncludesText: false},
	}
}

// Load reads the config file at path, merged over defaults. A missing
// file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{Path: path, Err: err}
	}
	return cfg, nil
}

// ServerConfig converts a user entry to an lsp.ServerConfig.
func (e ServerEntry) ServerConfig() lsp.ServerConfig {
	cfg := lsp.NewServerConfig(e.Name, e.Language, e.Command...)
	if len(e.Features) > 0 {
		var mask lsp.Capabilities
		for _, f := range e.Features {
			switch f {
			case "completion":
				mask.Completion = true
			case "hover":
				mask.Hover = true
			case "definition":
				mask.Definition = true
			case "references":
				mask.References = true
			case "symbols":
				mask.DocumentSymbols = true
			case "workspace-symbols":
				mask.WorkspaceSymbols = true
			case "formatting":
				mask.Formatting = true
			case "rename":
				mask.Rename = true
			case "code-actions":
				mask.CodeActions = true
			case "signature-help":
				mask.SignatureHelp = true
			case "diagnostics":
				mask.Diagnostics = true
			}
		}
		cfg = cfg.WithMask(mask)
	}
	return cfg
}

// ParseError reports a malformed config file.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
