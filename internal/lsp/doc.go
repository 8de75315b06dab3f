// Package lsp implements the editor's Language Server Protocol client.
//
// The design is pump-based: each server process has a single reader
// goroutine that forwards raw stdout bytes over a channel, and everything
// else — framing, decoding, routing, parsing — happens on the editor's
// main goroutine when ProcessMessages runs each frame. Requests never
// block for their answers; callers get back a request id and receive the
// parsed result later through the client's poll queue.
//
// The Manager keeps an ordered fallback list of server configs per
// language and starts servers lazily the first time a document needs
// one. The Client sits on top, tracking open documents and exposing the
// feature requests the editor surfaces (completion, hover, definition,
// references, symbols, formatting, rename, code actions) plus the
// diagnostics published by servers.
package lsp
