package lsp

import (
	"sync"

	"github.com/tidwall/gjson"
)

// responseQueueSize bounds the poll queue. The editor drains it every
// frame; overflow drops the oldest-waiting delivery rather than blocking
// the pump.
const responseQueueSize = 64

// ResponseKind tags which request a Response answers.
type ResponseKind int

const (
	ResponseKindCompletions ResponseKind = iota
	ResponseKindHover
	ResponseKindDefinition
	ResponseKindReferences
	ResponseKindSymbols
	ResponseKindFormatting
	ResponseKindRename
	ResponseKindCodeActions
	ResponseKindError
)

// Response is one parsed answer delivered through the poll queue. ID is
// the request id returned when the request was made; the field matching
// Kind carries the payload.
type Response struct {
	ID   int64
	Kind ResponseKind

	Completions []CompletionItem
	Hover       *HoverInfo
	Locations   []Location
	Symbols     []DocumentSymbol
	Edits       []TextEdit
	Edit        *WorkspaceEdit
	Actions     []CodeAction
	Err         string
}

// DocumentInfo tracks one open document.
type DocumentInfo struct {
	URI        string
	LanguageID string
	Version    int
}

// Client is the editor-facing facade over the server manager: it tracks
// open documents, issues feature requests, and queues parsed responses
// for the frame loop to poll. All methods run on the editor's main
// goroutine; only the diagnostics cache is shared with anything else.
type Client struct {
	manager   *Manager
	documents map[string]*DocumentInfo

	responses chan Response

	diagMu      sync.Mutex
	diagnostics map[string][]Diagnostic
}

// NewClient builds a client with the default server table registered.
func NewClient(workspaceRoot string, opts ...ManagerOption) *Client {
	c := &Client{
		documents:   make(map[string]*DocumentInfo),
		responses:   make(chan Response, responseQueueSize),
		diagnostics: make(map[string][]Diagnostic),
	}
	opts = append([]ManagerOption{WithDiagnosticsHandler(c.storeDiagnostics)}, opts...)
	c.manager = NewManager(workspaceRoot, opts...)
	c.manager.RegisterDefaultConfigs()
	return c
}

// Manager exposes the underlying server manager (config registration,
// explicit server control).
func (c *Client) Manager() *Manager { return c.manager }

func (c *Client) storeDiagnostics(uri string, diags []Diagnostic) {
	c.diagMu.Lock()
	c.diagnostics[uri] = diags
	c.diagMu.Unlock()
}

// --- Document lifecycle ---

// OpenDocument starts tracking a document and announces it to the
// language's server. Unrecognized file types and already-open documents
// are no-ops; didOpen is sent at most once per tracked document.
func (c *Client) OpenDocument(path, content string) error {
	languageID := DetectLanguageID(path)
	if languageID == "" {
		return nil
	}
	if _, open := c.documents[path]; open {
		return nil
	}

	doc := &DocumentInfo{URI: FilePathToURI(path), LanguageID: languageID, Version: 1}
	c.documents[path] = doc

	notif := NewDidOpenNotification(doc.URI, doc.LanguageID, doc.Version, content)
	return c.manager.SendNotification(doc.LanguageID, notif)
}

// DocumentChanged sends the full new content with the next version.
// Untracked documents are ignored.
func (c *Client) DocumentChanged(path, content string) error {
	doc, open := c.documents[path]
	if !open {
		return nil
	}
	doc.Version++
	notif := NewDidChangeNotification(doc.URI, doc.Version, content)
	return c.manager.SendNotification(doc.LanguageID, notif)
}

// DocumentSaved announces a save. When includeText is set the saved
// content rides along for servers that re-lint from the payload.
func (c *Client) DocumentSaved(path, content string, includeText bool) error {
	doc, open := c.documents[path]
	if !open {
		return nil
	}
	notif := NewDidSaveNotification(doc.URI, content, includeText)
	return c.manager.SendNotification(doc.LanguageID, notif)
}

// CloseDocument stops tracking a document and drops its diagnostics.
func (c *Client) CloseDocument(path string) error {
	doc, open := c.documents[path]
	if !open {
		return nil
	}
	delete(c.documents, path)

	c.diagMu.Lock()
	delete(c.diagnostics, doc.URI)
	c.diagMu.Unlock()

	return c.manager.SendNotification(doc.LanguageID, NewDidCloseNotification(doc.URI))
}

// IsOpen reports whether the document is currently tracked.
func (c *Client) IsOpen(path string) bool {
	_, open := c.documents[path]
	return open
}

// DocumentVersion returns the tracked version, or 0 when not open.
func (c *Client) DocumentVersion(path string) int {
	doc, open := c.documents[path]
	if !open {
		return 0
	}
	return doc.Version
}

// --- Feature requests ---

// deliver queues a response, dropping the oldest queued delivery when the
// editor has fallen behind.
func (c *Client) deliver(resp Response) {
	for {
		select {
		case c.responses <- resp:
			return
		default:
			select {
			case <-c.responses:
			default:
			}
		}
	}
}

func (c *Client) send(doc *DocumentInfo, msg Message, parse func(result gjson.Result) Response) error {
	cb := func(id int64, result gjson.Result, rpcErr *ResponseError) {
		if rpcErr != nil {
			c.deliver(Response{ID: id, Kind: ResponseKindError, Err: rpcErr.Message})
			return
		}
		resp := parse(result)
		resp.ID = id
		c.deliver(resp)
	}
	return c.manager.SendRequest(doc.LanguageID, msg, cb)
}

// RequestCompletions asks for completions at a position. Returns the
// request id matched by the eventual Response.
func (c *Client) RequestCompletions(path string, line, character int) (int64, error) {
	doc, open := c.documents[path]
	if !open {
		return 0, ErrDocumentNotOpen
	}
	id := NextRequestID()
	msg := NewCompletionRequest(id, doc.URI, Position{Line: line, Character: character})
	err := c.send(doc, msg, func(result gjson.Result) Response {
		return Response{Kind: ResponseKindCompletions, Completions: ParseCompletionItems(result)}
	})
	return id, err
}

// RequestHover asks for hover documentation at a position.
func (c *Client) RequestHover(path string, line, character int) (int64, error) {
	doc, open := c.documents[path]
	if !open {
		return 0, ErrDocumentNotOpen
	}
	id := NextRequestID()
	msg := NewHoverRequest(id, doc.URI, Position{Line: line, Character: character})
	err := c.send(doc, msg, func(result gjson.Result) Response {
		resp := Response{Kind: ResponseKindHover}
		if info, ok := ParseHover(result); ok {
			resp.Hover = &info
		}
		return resp
	})
	return id, err
}

// RequestDefinition asks for the definition of the symbol at a position.
func (c *Client) RequestDefinition(path string, line, character int) (int64, error) {
	doc, open := c.documents[path]
	if !open {
		return 0, ErrDocumentNotOpen
	}
	id := NextRequestID()
	msg := NewDefinitionRequest(id, doc.URI, Position{Line: line, Character: character})
	err := c.send(doc, msg, func(result gjson.Result) Response {
		return Response{Kind: ResponseKindDefinition, Locations: ParseLocations(result)}
	})
	return id, err
}

// RequestReferences asks for all references to the symbol at a position.
func (c *Client) RequestReferences(path string, line, character int, includeDeclaration bool) (int64, error) {
	doc, open := c.documents[path]
	if !open {
		return 0, ErrDocumentNotOpen
	}
	id := NextRequestID()
	msg := NewReferencesRequest(id, doc.URI, Position{Line: line, Character: character}, includeDeclaration)
	err := c.send(doc, msg, func(result gjson.Result) Response {
		return Response{Kind: ResponseKindReferences, Locations: ParseLocations(result)}
	})
	return id, err
}

// RequestDocumentSymbols asks for the document outline.
func (c *Client) RequestDocumentSymbols(path string) (int64, error) {
	doc, open := c.documents[path]
	if !open {
		return 0, ErrDocumentNotOpen
	}
	id := NextRequestID()
	msg := NewDocumentSymbolsRequest(id, doc.URI)
	err := c.send(doc, msg, func(result gjson.Result) Response {
		return Response{Kind: ResponseKindSymbols, Symbols: ParseDocumentSymbols(result)}
	})
	return id, err
}

// RequestFormatting asks for whole-document formatting edits.
func (c *Client) RequestFormatting(path string, tabSize int, insertSpaces bool) (int64, error) {
	doc, open := c.documents[path]
	if !open {
		return 0, ErrDocumentNotOpen
	}
	id := NextRequestID()
	msg := NewFormattingRequest(id, doc.URI, tabSize, insertSpaces)
	err := c.send(doc, msg, func(result gjson.Result) Response {
		return Response{Kind: ResponseKindFormatting, Edits: ParseTextEdits(result)}
	})
	return id, err
}

// RequestRename asks to rename the symbol at a position across the
// workspace.
func (c *Client) RequestRename(path string, line, character int, newName string) (int64, error) {
	doc, open := c.documents[path]
	if !open {
		return 0, ErrDocumentNotOpen
	}
	id := NextRequestID()
	msg := NewRenameRequest(id, doc.URI, Position{Line: line, Character: character}, newName)
	err := c.send(doc, msg, func(result gjson.Result) Response {
		edit := ParseWorkspaceEdit(result)
		return Response{Kind: ResponseKindRename, Edit: &edit}
	})
	return id, err
}

// RequestCodeActions asks for code actions over a range. Cached
// diagnostics for the document provide the request context.
func (c *Client) RequestCodeActions(path string, startLine, startChar, endLine, endChar int) (int64, error) {
	doc, open := c.documents[path]
	if !open {
		return 0, ErrDocumentNotOpen
	}
	rng := Range{
		Start: Position{Line: startLine, Character: startChar},
		End:   Position{Line: endLine, Character: endChar},
	}
	id := NextRequestID()
	msg := NewCodeActionRequest(id, doc.URI, rng, c.GetDiagnostics(path))
	err := c.send(doc, msg, func(result gjson.Result) Response {
		return Response{Kind: ResponseKindCodeActions, Actions: ParseCodeActions(result)}
	})
	return id, err
}

// --- Polling and diagnostics ---

// PollResponse returns the next parsed response without blocking.
func (c *Client) PollResponse() (Response, bool) {
	select {
	case resp := <-c.responses:
		return resp, true
	default:
		return Response{}, false
	}
}

// ProcessMessages pumps every server. Call once per editor frame.
func (c *Client) ProcessMessages() {
	c.manager.ProcessMessages()
}

// GetDiagnostics returns the cached diagnostics for a document.
func (c *Client) GetDiagnostics(path string) []Diagnostic {
	uri := FilePathToURI(path)
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	diags := c.diagnostics[uri]
	if len(diags) == 0 {
		return nil
	}
	out := make([]Diagnostic, len(diags))
	copy(out, diags)
	return out
}

// GetAllDiagnostics returns a snapshot of every document's diagnostics,
// keyed by URI.
func (c *Client) GetAllDiagnostics() map[string][]Diagnostic {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	out := make(map[string][]Diagnostic, len(c.diagnostics))
	for uri, diags := range c.diagnostics {
		cp := make([]Diagnostic, len(diags))
		copy(cp, diags)
		out[uri] = cp
	}
	return out
}

// HasServer reports whether a ready server exists for the language.
func (c *Client) HasServer(language string) bool {
	return c.manager.HasServer(language)
}

// HasServerForFile reports whether a ready server exists for the file's
// detected language.
func (c *Client) HasServerForFile(path string) bool {
	languageID := DetectLanguageID(path)
	if languageID == "" {
		return false
	}
	return c.manager.HasServer(languageID)
}

// Shutdown stops every server and drops all document state.
func (c *Client) Shutdown() {
	c.manager.StopAll()
	c.documents = make(map[string]*DocumentInfo)

	c.diagMu.Lock()
	c.diagnostics = make(map[string][]Diagnostic)
	c.diagMu.Unlock()
}
