package lsp

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// requestID is the process-wide request id counter. IDs start at 1 and are
// never reused, so a response can always be matched to exactly one request
// regardless of which server it came from.
var requestID atomic.Int64

// NextRequestID allocates the next request id.
func NextRequestID() int64 {
	return requestID.Add(1)
}

// MessageKind classifies a JSON-RPC message.
type MessageKind int

const (
	KindRequest MessageKind = iota
	KindResponse
	KindNotification
)

// String returns the kind name.
func (k MessageKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// Message is a single JSON-RPC 2.0 message in either direction.
// Requests carry ID and Method, responses ID and Result or Error,
// notifications Method only.
type Message struct {
	Kind   MessageKind
	ID     int64
	Method string
	Params json.RawMessage
	Result json.RawMessage
	Error  *ResponseError
}

// envelope is the wire shape of a message.
type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// Encode serializes the message with the LSP Content-Length header.
func (m Message) Encode() string {
	env := envelope{JSONRPC: "2.0", Method: m.Method, Params: m.Params}
	if m.Kind != KindNotification {
		id := m.ID
		env.ID = &id
	}
	if m.Kind == KindResponse {
		env.Result = m.Result
		env.Error = m.Error
	}
	data, err := json.Marshal(env)
	if err != nil {
		// Params and Result are pre-marshaled RawMessage; the envelope
		// itself cannot fail to marshal.
		data = []byte(`{"jsonrpc":"2.0"}`)
	}
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(data), data)
}

// DecodeMessage parses one JSON payload (header already stripped) and
// classifies it by field presence. Returns ok=false for malformed input.
func DecodeMessage(data []byte) (Message, bool) {
	var probe struct {
		ID     *int64          `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
		Result json.RawMessage `json:"result"`
		Error  *ResponseError  `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Message{}, false
	}

	switch {
	case probe.ID != nil && probe.Method != "":
		return Message{Kind: KindRequest, ID: *probe.ID, Method: probe.Method, Params: probe.Params}, true
	case probe.ID != nil:
		return Message{Kind: KindResponse, ID: *probe.ID, Result: probe.Result, Error: probe.Error}, true
	case probe.Method != "":
		return Message{Kind: KindNotification, Method: probe.Method, Params: probe.Params}, true
	default:
		return Message{}, false
	}
}

// mustMarshal marshals builder params. All builder params are
// marshalable by construction.
func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}

// NewRequest builds a request message.
func NewRequest(id int64, method string, params any) Message {
	m := Message{Kind: KindRequest, ID: id, Method: method}
	if params != nil {
		m.Params = mustMarshal(params)
	}
	return m
}

// NewNotification builds a notification message.
func NewNotification(method string, params any) Message {
	m := Message{Kind: KindNotification, Method: method}
	if params != nil {
		m.Params = mustMarshal(params)
	}
	return m
}

// NewResponse builds a response carrying a result. A nil result encodes
// as JSON null, which acknowledgement responses require.
func NewResponse(id int64, result any) Message {
	return Message{Kind: KindResponse, ID: id, Result: mustMarshal(result)}
}

// NewErrorResponse builds an error response.
func NewErrorResponse(id int64, code int, message string) Message {
	return Message{Kind: KindResponse, ID: id, Error: &ResponseError{Code: code, Message: message}}
}

// --- Wire parameter shapes ---

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type versionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type textDocumentPositionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// --- Lifecycle ---

// NewInitializeRequest builds the initialize request with the client
// capabilities this editor actually consumes.
func NewInitializeRequest(id int64, workspaceRoot, clientName string) Message {
	rootURI := FilePathToURI(workspaceRoot)
	params := map[string]any{
		"processId": nil,
		"clientInfo": map[string]any{
			"name": clientName,
		},
		"rootUri": rootURI,
		"workspaceFolders": []map[string]any{
			{"uri": rootURI, "name": "workspace"},
		},
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"synchronization": map[string]any{
					"didSave":           true,
					"willSave":          false,
					"willSaveWaitUntil": false,
				},
				"completion": map[string]any{
					"completionItem": map[string]any{
						"snippetSupport":          false,
						"documentationFormat":     []string{"plaintext", "markdown"},
						"deprecatedSupport":       false,
						"commitCharactersSupport": false,
					},
					"contextSupport": false,
				},
				"hover": map[string]any{
					"contentFormat": []string{"plaintext", "markdown"},
				},
				"signatureHelp": map[string]any{
					"signatureInformation": map[string]any{
						"documentationFormat": []string{"plaintext", "markdown"},
					},
				},
				"definition":     map[string]any{},
				"references":     map[string]any{},
				"documentSymbol": map[string]any{
					"hierarchicalDocumentSymbolSupport": true,
				},
				"formatting": map[string]any{},
				"rename":     map[string]any{},
				"codeAction": map[string]any{},
				"publishDiagnostics": map[string]any{
					"relatedInformation": false,
				},
			},
			"workspace": map[string]any{
				"symbol":        map[string]any{},
				"configuration": true,
				// pyright stops publishing diagnostics when the client
				// claims workspace-folder support, so disclaim it here.
				"workspaceFolders": false,
			},
		},
	}
	return NewRequest(id, "initialize", params)
}

// NewInitializedNotification builds the initialized notification.
func NewInitializedNotification() Message {
	return NewNotification("initialized", map[string]any{})
}

// NewShutdownRequest builds the shutdown request.
func NewShutdownRequest(id int64) Message {
	return NewRequest(id, "shutdown", nil)
}

// NewExitNotification builds the exit notification.
func NewExitNotification() Message {
	return NewNotification("exit", nil)
}

// --- Document sync ---

// NewDidOpenNotification announces an opened document with its full text.
func NewDidOpenNotification(uri, languageID string, version int, text string) Message {
	return NewNotification("textDocument/didOpen", map[string]any{
		"textDocument": textDocumentItem{URI: uri, LanguageID: languageID, Version: version, Text: text},
	})
}

// NewDidChangeNotification sends the full new text (full sync).
func NewDidChangeNotification(uri string, version int, text string) Message {
	return NewNotification("textDocument/didChange", map[string]any{
		"textDocument":   versionedTextDocumentIdentifier{URI: uri, Version: version},
		"contentChanges": []map[string]any{{"text": text}},
	})
}

// NewDidSaveNotification announces a save. Text is included only when
// includeText is set; some servers re-lint from the payload.
func NewDidSaveNotification(uri, text string, includeText bool) Message {
	params := map[string]any{
		"textDocument": textDocumentIdentifier{URI: uri},
	}
	if includeText {
		params["text"] = text
	}
	return NewNotification("textDocument/didSave", params)
}

// NewDidCloseNotification announces a closed document.
func NewDidCloseNotification(uri string) Message {
	return NewNotification("textDocument/didClose", map[string]any{
		"textDocument": textDocumentIdentifier{URI: uri},
	})
}

// --- Feature requests ---

// NewCompletionRequest asks for completions at a position (invoked manually).
func NewCompletionRequest(id int64, uri string, pos Position) Message {
	return NewRequest(id, "textDocument/completion", map[string]any{
		"textDocument": textDocumentIdentifier{URI: uri},
		"position":     pos,
		"context":      map[string]any{"triggerKind": 1},
	})
}

// NewHoverRequest asks for hover documentation at a position.
func NewHoverRequest(id int64, uri string, pos Position) Message {
	return NewRequest(id, "textDocument/hover", textDocumentPositionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     pos,
	})
}

// NewDefinitionRequest asks for the definition site of the symbol at a position.
func NewDefinitionRequest(id int64, uri string, pos Position) Message {
	return NewRequest(id, "textDocument/definition", textDocumentPositionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     pos,
	})
}

// NewReferencesRequest asks for all references to the symbol at a position.
func NewReferencesRequest(id int64, uri string, pos Position, includeDeclaration bool) Message {
	return NewRequest(id, "textDocument/references", map[string]any{
		"textDocument": textDocumentIdentifier{URI: uri},
		"position":     pos,
		"context":      map[string]any{"includeDeclaration": includeDeclaration},
	})
}

// NewDocumentSymbolsRequest asks for the document outline.
func NewDocumentSymbolsRequest(id int64, uri string) Message {
	return NewRequest(id, "textDocument/documentSymbol", map[string]any{
		"textDocument": textDocumentIdentifier{URI: uri},
	})
}

// NewWorkspaceSymbolsRequest asks for symbols across the workspace.
func NewWorkspaceSymbolsRequest(id int64, query string) Message {
	return NewRequest(id, "workspace/symbol", map[string]any{
		"query": query,
	})
}

// NewSignatureHelpRequest asks for signature help at a position.
func NewSignatureHelpRequest(id int64, uri string, pos Position) Message {
	return NewRequest(id, "textDocument/signatureHelp", textDocumentPositionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     pos,
	})
}

// NewFormattingRequest asks for whole-document formatting edits.
func NewFormattingRequest(id int64, uri string, tabSize int, insertSpaces bool) Message {
	return NewRequest(id, "textDocument/formatting", map[string]any{
		"textDocument": textDocumentIdentifier{URI: uri},
		"options": map[string]any{
			"tabSize":                tabSize,
			"insertSpaces":           insertSpaces,
			"trimTrailingWhitespace": true,
			"insertFinalNewline":     true,
		},
	})
}

// NewRenameRequest asks to rename the symbol at a position.
func NewRenameRequest(id int64, uri string, pos Position, newName string) Message {
	return NewRequest(id, "textDocument/rename", map[string]any{
		"textDocument": textDocumentIdentifier{URI: uri},
		"position":     pos,
		"newName":      newName,
	})
}

// NewCodeActionRequest asks for code actions over a range.
func NewCodeActionRequest(id int64, uri string, rng Range, diagnostics []Diagnostic) Message {
	if diagnostics == nil {
		diagnostics = []Diagnostic{}
	}
	return NewRequest(id, "textDocument/codeAction", map[string]any{
		"textDocument": textDocumentIdentifier{URI: uri},
		"range":        rng,
		"context":      map[string]any{"diagnostics": diagnostics},
	})
}
