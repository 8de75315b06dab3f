package lsp

import (
	"path/filepath"
	"strings"
)

// --- Positions and ranges ---

// Position is a zero-based line/character position in a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [Start, End) span in a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location is a range inside a specific document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// TextEdit replaces a range with new text.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// WorkspaceEdit collects edits across multiple documents, keyed by URI.
type WorkspaceEdit struct {
	Changes map[string][]TextEdit `json:"changes"`
}

// --- Diagnostics ---

// DiagnosticSeverity follows the LSP numbering (1 = most severe).
type DiagnosticSeverity int

const (
	SeverityError       DiagnosticSeverity = 1
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
	SeverityHint        DiagnosticSeverity = 4
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Diagnostic is a single issue reported by a server for a document.
type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Code     string             `json:"code,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
}

// --- Completion ---

// CompletionItemKind follows the LSP numbering.
type CompletionItemKind int

const (
	CompletionKindText          CompletionItemKind = 1
	CompletionKindMethod        CompletionItemKind = 2
	CompletionKindFunction      CompletionItemKind = 3
	CompletionKindConstructor   CompletionItemKind = 4
	CompletionKindField         CompletionItemKind = 5
	CompletionKindVariable      CompletionItemKind = 6
	CompletionKindClass         CompletionItemKind = 7
	CompletionKindInterface     CompletionItemKind = 8
	CompletionKindModule        CompletionItemKind = 9
	CompletionKindProperty      CompletionItemKind = 10
	CompletionKindUnit          CompletionItemKind = 11
	CompletionKindValue         CompletionItemKind = 12
	CompletionKindEnum          CompletionItemKind = 13
	CompletionKindKeyword       CompletionItemKind = 14
	CompletionKindSnippet       CompletionItemKind = 15
	CompletionKindColor         CompletionItemKind = 16
	CompletionKindFile          CompletionItemKind = 17
	CompletionKindReference     CompletionItemKind = 18
	CompletionKindFolder        CompletionItemKind = 19
	CompletionKindEnumMember    CompletionItemKind = 20
	CompletionKindConstant      CompletionItemKind = 21
	CompletionKindStruct        CompletionItemKind = 22
	CompletionKindEvent         CompletionItemKind = 23
	CompletionKindOperator      CompletionItemKind = 24
	CompletionKindTypeParameter CompletionItemKind = 25
)

// Icon returns a single-character glyph for completion menus.
func (k CompletionItemKind) Icon() string {
	switch k {
	case CompletionKindMethod, CompletionKindFunction, CompletionKindConstructor:
		return "ƒ"
	case CompletionKindField, CompletionKindProperty:
		return "◆"
	case CompletionKindVariable:
		return "υ"
	case CompletionKindClass, CompletionKindStruct:
		return "Ϲ"
	case CompletionKindInterface:
		return "Ι"
	case CompletionKindModule:
		return "Μ"
	case CompletionKindEnum, CompletionKindEnumMember:
		return "Ε"
	case CompletionKindKeyword:
		return "κ"
	case CompletionKindSnippet:
		return "▸"
	case CompletionKindConstant:
		return "π"
	case CompletionKindFile, CompletionKindFolder:
		return "◫"
	default:
		return "·"
	}
}

// CompletionItem is a single completion suggestion.
type CompletionItem struct {
	Label         string             `json:"label"`
	Kind          CompletionItemKind `json:"kind,omitempty"`
	Detail        string             `json:"detail,omitempty"`
	Documentation string             `json:"documentation,omitempty"`
	InsertText    string             `json:"insertText,omitempty"`
	SortText      string             `json:"sortText,omitempty"`
	FilterText    string             `json:"filterText,omitempty"`
	Edit          *TextEdit          `json:"textEdit,omitempty"`
}

// --- Symbols ---

// SymbolKind follows the LSP numbering.
type SymbolKind int

const (
	SymbolKindFile          SymbolKind = 1
	SymbolKindModule        SymbolKind = 2
	SymbolKindNamespace     SymbolKind = 3
	SymbolKindPackage       SymbolKind = 4
	SymbolKindClass         SymbolKind = 5
	SymbolKindMethod        SymbolKind = 6
	SymbolKindProperty      SymbolKind = 7
	SymbolKindField         SymbolKind = 8
	SymbolKindConstructor   SymbolKind = 9
	SymbolKindEnum          SymbolKind = 10
	SymbolKindInterface     SymbolKind = 11
	SymbolKindFunction      SymbolKind = 12
	SymbolKindVariable      SymbolKind = 13
	SymbolKindConstant      SymbolKind = 14
	SymbolKindString        SymbolKind = 15
	SymbolKindNumber        SymbolKind = 16
	SymbolKindBoolean       SymbolKind = 17
	SymbolKindArray         SymbolKind = 18
	SymbolKindObject        SymbolKind = 19
	SymbolKindKey           SymbolKind = 20
	SymbolKindNull          SymbolKind = 21
	SymbolKindEnumMember    SymbolKind = 22
	SymbolKindStruct        SymbolKind = 23
	SymbolKindEvent         SymbolKind = 24
	SymbolKindOperator      SymbolKind = 25
	SymbolKindTypeParameter SymbolKind = 26
)

// Icon returns a single-character glyph for symbol outlines.
func (k SymbolKind) Icon() string {
	switch k {
	case SymbolKindFile, SymbolKindModule, SymbolKindNamespace, SymbolKindPackage:
		return "◫"
	case SymbolKindClass, SymbolKindStruct, SymbolKindInterface:
		return "Ϲ"
	case SymbolKindMethod, SymbolKindFunction, SymbolKindConstructor:
		return "ƒ"
	case SymbolKindProperty, SymbolKindField:
		return "◆"
	case SymbolKindEnum, SymbolKindEnumMember:
		return "Ε"
	case SymbolKindVariable, SymbolKindConstant:
		return "υ"
	default:
		return "·"
	}
}

// DocumentSymbol is one node in a document outline.
type DocumentSymbol struct {
	Name           string           `json:"name"`
	Kind           SymbolKind       `json:"kind"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

// --- Hover, signature help, code actions ---

// HoverInfo is hover documentation rendered to plain text/markdown.
type HoverInfo struct {
	Contents string `json:"contents"`
	Range    *Range `json:"range,omitempty"`
}

// ParameterInformation describes one parameter in a signature.
type ParameterInformation struct {
	Label         string `json:"label"`
	Documentation string `json:"documentation,omitempty"`
}

// SignatureInformation describes one callable signature.
type SignatureInformation struct {
	Label         string                 `json:"label"`
	Documentation string                 `json:"documentation,omitempty"`
	Parameters    []ParameterInformation `json:"parameters,omitempty"`
}

// SignatureHelp is the server's answer to a signature help request.
type SignatureHelp struct {
	Signatures      []SignatureInformation `json:"signatures"`
	ActiveSignature int                    `json:"activeSignature"`
	ActiveParameter int                    `json:"activeParameter"`
}

// CodeAction is a quick fix or refactoring offered by a server.
type CodeAction struct {
	Title   string         `json:"title"`
	Kind    string         `json:"kind,omitempty"`
	Edit    *WorkspaceEdit `json:"edit,omitempty"`
	Command string         `json:"command,omitempty"`
}

// --- Capabilities ---

// Capabilities records which features a server advertises.
type Capabilities struct {
	Completion       bool
	Hover            bool
	Definition       bool
	References       bool
	DocumentSymbols  bool
	WorkspaceSymbols bool
	Formatting       bool
	Rename           bool
	CodeActions      bool
	SignatureHelp    bool
	Diagnostics      bool
}

// AllCapabilities returns a set with every feature enabled.
func AllCapabilities() Capabilities {
	return Capabilities{
		Completion:       true,
		Hover:            true,
		Definition:       true,
		References:       true,
		DocumentSymbols:  true,
		WorkspaceSymbols: true,
		Formatting:       true,
		Rename:           true,
		CodeActions:      true,
		SignatureHelp:    true,
		Diagnostics:      true,
	}
}

// Intersect returns the features present in both sets.
func (c Capabilities) Intersect(other Capabilities) Capabilities {
	return Capabilities{
		Completion:       c.Completion && other.Completion,
		Hover:            c.Hover && other.Hover,
		Definition:       c.Definition && other.Definition,
		References:       c.References && other.References,
		DocumentSymbols:  c.DocumentSymbols && other.DocumentSymbols,
		WorkspaceSymbols: c.WorkspaceSymbols && other.WorkspaceSymbols,
		Formatting:       c.Formatting && other.Formatting,
		Rename:           c.Rename && other.Rename,
		CodeActions:      c.CodeActions && other.CodeActions,
		SignatureHelp:    c.SignatureHelp && other.SignatureHelp,
		Diagnostics:      c.Diagnostics && other.Diagnostics,
	}
}

// --- Server configuration ---

// ServerConfig describes how to launch one language server.
type ServerConfig struct {
	// Name identifies the server binary (e.g. "gopls").
	Name string

	// Language is the LSP language identifier this server handles.
	Language string

	// Command is the argv used to spawn the server.
	Command []string

	// FilePatterns are glob patterns of files the server applies to.
	FilePatterns []string

	// Mask, when non-nil, limits the advertised capabilities. Used for
	// servers run alongside a primary (ruff next to pyright).
	Mask *Capabilities
}

// NewServerConfig builds a config with no capability mask.
func NewServerConfig(name, language string, command ...string) ServerConfig {
	return ServerConfig{Name: name, Language: language, Command: command}
}

// WithMask returns a copy of the config limited to the given capabilities.
func (c ServerConfig) WithMask(mask Capabilities) ServerConfig {
	c.Mask = &mask
	return c
}

// --- Language detection ---

var languageByExtension = map[string]string{
	"rs":         "rust",
	"py":         "python",
	"pyi":        "python",
	"ts":         "typescript",
	"tsx":        "typescriptreact",
	"js":         "javascript",
	"mjs":        "javascript",
	"cjs":        "javascript",
	"jsx":        "javascriptreact",
	"go":         "go",
	"c":          "c",
	"h":          "c",
	"cpp":        "cpp",
	"cc":         "cpp",
	"cxx":        "cpp",
	"hpp":        "cpp",
	"hxx":        "cpp",
	"java":       "java",
	"kt":         "kotlin",
	"kts":        "kotlin",
	"rb":         "ruby",
	"php":        "php",
	"cs":         "csharp",
	"lua":        "lua",
	"zig":        "zig",
	"hs":         "haskell",
	"ml":         "ocaml",
	"mli":        "ocaml",
	"ex":         "elixir",
	"exs":        "elixir",
	"erl":        "erlang",
	"hrl":        "erlang",
	"jl":         "julia",
	"sh":         "shellscript",
	"bash":       "shellscript",
	"zsh":        "shellscript",
	"html":       "html",
	"htm":        "html",
	"css":        "css",
	"scss":       "scss",
	"less":       "less",
	"json":       "json",
	"jsonc":      "jsonc",
	"yaml":       "yaml",
	"yml":        "yaml",
	"toml":       "toml",
	"md":         "markdown",
	"markdown":   "markdown",
	"dockerfile": "dockerfile",
	"tf":         "terraform",
	"tfvars":     "terraform",
	"nix":        "nix",
	"sql":        "sql",
	"vue":        "vue",
	"svelte":     "svelte",
	"elm":        "elm",
	"scala":      "scala",
	"sbt":        "scala",
	"dart":       "dart",
	"clj":        "clojure",
	"cljs":       "clojure",
	"cljc":       "clojure",
	"edn":        "clojure",
	"f90":        "fortran",
	"f95":        "fortran",
	"f03":        "fortran",
	"f08":        "fortran",
	"d":          "d",
	"nim":        "nim",
	"v":          "v",
	"pl":         "perl",
	"pm":         "perl",
	"r":          "r",
	"graphql":    "graphql",
	"gql":        "graphql",
	"cmake":      "cmake",
	"groovy":     "groovy",
	"gradle":     "groovy",
	"swift":      "swift",
	"fs":         "fsharp",
	"fsi":        "fsharp",
	"fsx":        "fsharp",
	"ps1":        "powershell",
	"psm1":       "powershell",
	"psd1":       "powershell",
	"proto":      "proto",
	"asm":        "asm",
	"s":          "asm",
	"odin":       "odin",
}

// DetectLanguageID maps a file path to an LSP language identifier.
// Returns "" for unrecognized files.
func DetectLanguageID(path string) string {
	base := filepath.Base(path)
	switch base {
	case "Dockerfile", "Containerfile":
		return "dockerfile"
	case "CMakeLists.txt":
		return "cmake"
	case "Makefile", "makefile":
		return "makefile"
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	if ext == "" {
		return ""
	}
	return languageByExtension[ext]
}

// --- URIs ---

// FilePathToURI converts a filesystem path to a file:// URI.
func FilePathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return "file:///" + path
}

// URIToFilePath converts a file:// URI back to a filesystem path.
// Returns "" for non-file URIs.
func URIToFilePath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return ""
	}
	return strings.TrimPrefix(uri, "file://")
}
