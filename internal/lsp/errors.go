package lsp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Standard errors returned by the LSP subsystem.
var (
	// ErrNoServer indicates no server is configured for the language.
	ErrNoServer = errors.New("no server configured for language")

	// ErrServerStopped indicates the server process is no longer running.
	ErrServerStopped = errors.New("server process stopped")

	// ErrDocumentNotOpen indicates the document is not open.
	ErrDocumentNotOpen = errors.New("document not open")

	// ErrEmptyCommand indicates a server config with no command to run.
	ErrEmptyCommand = errors.New("empty server command")

	// ErrProcessExited indicates the child process has already exited.
	ErrProcessExited = errors.New("process exited")
)

// ResponseError represents a JSON-RPC error returned by a server.
type ResponseError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// LSP-specific errors
	CodeServerNotInitialized = -32002
	CodeRequestCancelled     = -32800
	CodeContentModified      = -32801
)

// ServerError wraps an error with the language it occurred for.
type ServerError struct {
	Language string
	Err      error
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server %s: %v", e.Language, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServerError) Unwrap() error {
	return e.Err
}
