package lsp

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// ResponseCallback receives the outcome of one request. Exactly one of
// result/rpcErr is meaningful; the callback runs at most once.
type ResponseCallback func(id int64, result gjson.Result, rpcErr *ResponseError)

// DiagnosticsHandler receives published diagnostics for a document.
type DiagnosticsHandler func(uri string, diagnostics []Diagnostic)

// Router matches server messages to the code waiting on them. It is
// confined to the goroutine that pumps its server; only the diagnostics
// handler may hand data across goroutines.
type Router struct {
	pending     map[int64]ResponseCallback
	diagnostics DiagnosticsHandler
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{pending: make(map[int64]ResponseCallback)}
}

// SetDiagnosticsHandler installs the diagnostics sink.
func (r *Router) SetDiagnosticsHandler(h DiagnosticsHandler) {
	r.diagnostics = h
}

// RegisterCallback arms a one-shot callback for a request id.
func (r *Router) RegisterCallback(id int64, cb ResponseCallback) {
	r.pending[id] = cb
}

// PendingCount returns the number of requests still awaiting a response.
func (r *Router) PendingCount() int { return len(r.pending) }

// HasPending reports whether any request is awaiting a response.
func (r *Router) HasPending() bool { return len(r.pending) > 0 }

// HandleMessage routes one decoded server message. When the server sent a
// request of its own, the reply to write back is returned with ok=true.
func (r *Router) HandleMessage(msg Message) (Message, bool) {
	switch msg.Kind {
	case KindResponse:
		r.handleResponse(msg)
	case KindNotification:
		r.handleNotification(msg)
	case KindRequest:
		return r.handleServerRequest(msg), true
	}
	return Message{}, false
}

// handleResponse invokes and removes the callback for the id. Responses
// with no registered callback (stale, or already answered) are dropped.
func (r *Router) handleResponse(msg Message) {
	cb, ok := r.pending[msg.ID]
	if !ok {
		return
	}
	delete(r.pending, msg.ID)
	cb(msg.ID, gjson.ParseBytes(msg.Result), msg.Error)
}

func (r *Router) handleNotification(msg Message) {
	switch msg.Method {
	case "textDocument/publishDiagnostics":
		if r.diagnostics == nil {
			return
		}
		uri, diags := ParseDiagnostics(gjson.ParseBytes(msg.Params))
		if uri != "" {
			r.diagnostics(uri, diags)
		}
	default:
		// window/logMessage, window/showMessage, $/progress and the rest
		// carry nothing the editor surfaces.
	}
}

// handleServerRequest acknowledges the few server-to-client requests
// well-behaved servers expect answers to. Anything else gets a
// method-not-found error so the server does not wait forever.
func (r *Router) handleServerRequest(msg Message) Message {
	switch msg.Method {
	case "workspace/configuration":
		// An empty array keeps servers on their defaults.
		return NewResponse(msg.ID, []json.RawMessage{})
	case "client/registerCapability", "client/unregisterCapability":
		return NewResponse(msg.ID, nil)
	case "window/workDoneProgress/create":
		return NewResponse(msg.ID, nil)
	default:
		return NewErrorResponse(msg.ID, CodeMethodNotFound, "method not found: "+msg.Method)
	}
}
