package lsp

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func TestNextRequestIDMonotonic(t *testing.T) {
	prev := NextRequestID()
	if prev < 1 {
		t.Fatalf("NextRequestID() = %d, want >= 1", prev)
	}
	for i := 0; i < 100; i++ {
		id := NextRequestID()
		if id <= prev {
			t.Fatalf("NextRequestID() = %d after %d, want strictly increasing", id, prev)
		}
		prev = id
	}
}

func TestNextRequestIDUniqueUnderConcurrency(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 200

	var mu sync.Mutex
	seen := make(map[int64]bool)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				id := NextRequestID()
				mu.Lock()
				if seen[id] {
					mu.Unlock()
					t.Errorf("NextRequestID() returned %d twice", id)
					return
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

// splitFrame separates the Content-Length header from the JSON payload.
func splitFrame(t *testing.T, frame string) (header, body string) {
	t.Helper()
	idx := strings.Index(frame, "\r\n\r\n")
	if idx < 0 {
		t.Fatalf("frame missing header separator: %q", frame)
	}
	return frame[:idx], frame[idx+4:]
}

func TestEncodeFraming(t *testing.T) {
	msg := NewRequest(42, "textDocument/hover", map[string]any{"key": "value"})
	frame := msg.Encode()

	header, body := splitFrame(t, frame)
	want := fmt.Sprintf("Content-Length: %d", len(body))
	if header != want {
		t.Errorf("header = %q, want %q", header, want)
	}
	if !gjson.Valid(body) {
		t.Fatalf("body is not valid JSON: %q", body)
	}
	if v := gjson.Get(body, "jsonrpc").String(); v != "2.0" {
		t.Errorf("jsonrpc = %q, want 2.0", v)
	}
	if v := gjson.Get(body, "id").Int(); v != 42 {
		t.Errorf("id = %d, want 42", v)
	}
	if v := gjson.Get(body, "method").String(); v != "textDocument/hover" {
		t.Errorf("method = %q, want textDocument/hover", v)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"request", NewRequest(7, "textDocument/definition", map[string]any{"a": 1})},
		{"notification", NewNotification("initialized", map[string]any{})},
		{"response", NewResponse(9, map[string]any{"ok": true})},
		{"error response", NewErrorResponse(11, CodeMethodNotFound, "nope")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, body := splitFrame(t, tt.msg.Encode())
			got, ok := DecodeMessage([]byte(body))
			if !ok {
				t.Fatalf("DecodeMessage() ok = false")
			}
			if got.Kind != tt.msg.Kind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.msg.Kind)
			}
			if got.ID != tt.msg.ID {
				t.Errorf("ID = %d, want %d", got.ID, tt.msg.ID)
			}
			if got.Method != tt.msg.Method {
				t.Errorf("Method = %q, want %q", got.Method, tt.msg.Method)
			}
			if (got.Error == nil) != (tt.msg.Error == nil) {
				t.Errorf("Error = %v, want %v", got.Error, tt.msg.Error)
			}
		})
	}
}

func TestDecodeMessageClassification(t *testing.T) {
	request, _ := sjson.Set(`{"jsonrpc":"2.0"}`, "id", 3)
	request, _ = sjson.Set(request, "method", "workspace/configuration")

	response, _ := sjson.Set(`{"jsonrpc":"2.0"}`, "id", 5)
	response, _ = sjson.SetRaw(response, "result", `{"x":1}`)

	errResponse, _ := sjson.Set(`{"jsonrpc":"2.0"}`, "id", 6)
	errResponse, _ = sjson.SetRaw(errResponse, "error", `{"code":-32601,"message":"not found"}`)

	notification, _ := sjson.Set(`{"jsonrpc":"2.0"}`, "method", "window/logMessage")

	tests := []struct {
		name     string
		data     string
		ok       bool
		kind     MessageKind
		id       int64
		hasError bool
	}{
		{"server request", request, true, KindRequest, 3, false},
		{"response", response, true, KindResponse, 5, false},
		{"error response", errResponse, true, KindResponse, 6, true},
		{"notification", notification, true, KindNotification, 0, false},
		{"empty object", `{"jsonrpc":"2.0"}`, false, 0, 0, false},
		{"malformed", `{"jsonrpc":`, false, 0, 0, false},
		{"not json", `hello`, false, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := DecodeMessage([]byte(tt.data))
			if ok != tt.ok {
				t.Fatalf("DecodeMessage() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if msg.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", msg.Kind, tt.kind)
			}
			if msg.ID != tt.id {
				t.Errorf("ID = %d, want %d", msg.ID, tt.id)
			}
			if (msg.Error != nil) != tt.hasError {
				t.Errorf("Error = %v, hasError want %v", msg.Error, tt.hasError)
			}
		})
	}
}

func TestNewResponseNullResult(t *testing.T) {
	_, body := splitFrame(t, NewResponse(8, nil).Encode())
	if !strings.Contains(body, `"result":null`) {
		t.Errorf("body = %q, want explicit null result", body)
	}
	if v := gjson.Get(body, "id").Int(); v != 8 {
		t.Errorf("id = %d, want 8", v)
	}
}

func TestInitializeRequestShape(t *testing.T) {
	msg := NewInitializeRequest(1, "/work/project", "quill")
	_, body := splitFrame(t, msg.Encode())

	if v := gjson.Get(body, "params.rootUri").String(); v != "file:///work/project" {
		t.Errorf("rootUri = %q", v)
	}
	if v := gjson.Get(body, "params.clientInfo.name").String(); v != "quill" {
		t.Errorf("clientInfo.name = %q", v)
	}

	// Claiming workspace-folder support makes pyright stop publishing
	// diagnostics, so the capability must be disclaimed explicitly.
	folders := gjson.Get(body, "params.capabilities.workspace.workspaceFolders")
	if !folders.Exists() || folders.Bool() {
		t.Errorf("capabilities.workspace.workspaceFolders = %v, want false", folders)
	}
}

func TestDidOpenNotificationShape(t *testing.T) {
	msg := NewDidOpenNotification("file:///a.go", "go", 1, "package a\n")
	_, body := splitFrame(t, msg.Encode())

	if v := gjson.Get(body, "method").String(); v != "textDocument/didOpen" {
		t.Errorf("method = %q", v)
	}
	if gjson.Get(body, "id").Exists() {
		t.Errorf("notification carries an id: %s", body)
	}
	doc := gjson.Get(body, "params.textDocument")
	if doc.Get("uri").String() != "file:///a.go" ||
		doc.Get("languageId").String() != "go" ||
		doc.Get("version").Int() != 1 ||
		doc.Get("text").String() != "package a\n" {
		t.Errorf("textDocument = %s", doc.Raw)
	}
}

func TestDidSaveNotificationOptionalText(t *testing.T) {
	_, withText := splitFrame(t, NewDidSaveNotification("file:///a.go", "body", true).Encode())
	if v := gjson.Get(withText, "params.text").String(); v != "body" {
		t.Errorf("params.text = %q, want body", v)
	}

	_, withoutText := splitFrame(t, NewDidSaveNotification("file:///a.go", "body", false).Encode())
	if gjson.Get(withoutText, "params.text").Exists() {
		t.Errorf("params.text present when includeText = false: %s", withoutText)
	}
}

func TestReferencesRequestIncludeDeclaration(t *testing.T) {
	msg := NewReferencesRequest(4, "file:///a.go", Position{Line: 2, Character: 3}, true)
	_, body := splitFrame(t, msg.Encode())
	if !gjson.Get(body, "params.context.includeDeclaration").Bool() {
		t.Errorf("includeDeclaration not set: %s", body)
	}
}

func TestFormattingRequestOptions(t *testing.T) {
	msg := NewFormattingRequest(4, "file:///a.go", 8, false)
	_, body := splitFrame(t, msg.Encode())
	opts := gjson.Get(body, "params.options")
	if opts.Get("tabSize").Int() != 8 {
		t.Errorf("tabSize = %d, want 8", opts.Get("tabSize").Int())
	}
	if opts.Get("insertSpaces").Bool() {
		t.Errorf("insertSpaces = true, want false")
	}
	if !opts.Get("trimTrailingWhitespace").Bool() || !opts.Get("insertFinalNewline").Bool() {
		t.Errorf("options = %s", opts.Raw)
	}
}
