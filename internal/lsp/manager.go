package lsp

import (
	"errors"
	"sort"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultClientName = "quill"

	// Readiness wait inside SendRequest: pump + sleep, bounded.
	defaultReadyPollLimit    = 50
	defaultReadyPollInterval = 100 * time.Millisecond

	// Grace between the shutdown request and the exit notification.
	shutdownGrace = 100 * time.Millisecond
)

// Manager owns every running language server. Configs are registered per
// language as an ordered fallback list; servers start lazily on first use.
// All methods must be called from the editor's main goroutine — the only
// concurrent actors are the per-process reader goroutines, which hand off
// raw bytes and nothing else.
type Manager struct {
	workspaceRoot string
	clientName    string

	configs map[string][]ServerConfig
	servers map[string][]*ManagedServer

	diagnostics DiagnosticsHandler

	pollLimit    int
	pollInterval time.Duration
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDiagnosticsHandler installs the sink wired into every server's router.
func WithDiagnosticsHandler(h DiagnosticsHandler) ManagerOption {
	return func(m *Manager) { m.diagnostics = h }
}

// WithReadyPoll overrides the readiness wait bounds. Tests shorten these.
func WithReadyPoll(interval time.Duration, limit int) ManagerOption {
	return func(m *Manager) {
		m.pollInterval = interval
		m.pollLimit = limit
	}
}

// WithClientName overrides the client name reported in initialize.
func WithClientName(name string) ManagerOption {
	return func(m *Manager) { m.clientName = name }
}

// NewManager creates a manager rooted at the workspace directory. No
// configs are registered; call RegisterDefaultConfigs or RegisterConfig.
func NewManager(workspaceRoot string, opts ...ManagerOption) *Manager {
	m := &Manager{
		workspaceRoot: workspaceRoot,
		clientName:    defaultClientName,
		configs:       make(map[string][]ServerConfig),
		servers:       make(map[string][]*ManagedServer),
		pollLimit:     defaultReadyPollLimit,
		pollInterval:  defaultReadyPollInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WorkspaceRoot returns the workspace directory servers are rooted at.
func (m *Manager) WorkspaceRoot() string { return m.workspaceRoot }

// RegisterConfig appends a server config to its language's fallback list.
// Registration order is the order candidates are tried.
func (m *Manager) RegisterConfig(cfg ServerConfig) {
	m.configs[cfg.Language] = append(m.configs[cfg.Language], cfg)
}

// RegisteredLanguages lists every language with at least one config.
func (m *Manager) RegisteredLanguages() []string {
	langs := make([]string, 0, len(m.configs))
	for lang := range m.configs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// StartServer starts the first candidate for the language that spawns
// successfully. Later candidates are only tried when earlier ones fail.
func (m *Manager) StartServer(language string) error {
	cfgs := m.configs[language]
	if len(cfgs) == 0 {
		return &ServerError{Language: language, Err: ErrNoServer}
	}

	var firstErr error
	for _, cfg := range cfgs {
		if _, err := m.startWithConfig(cfg); err == nil {
			return nil
		} else if firstErr == nil {
			firstErr = err
		}
	}
	return &ServerError{Language: language, Err: firstErr}
}

// StartAllServers starts every candidate for the language, tolerating
// individual failures as long as at least one server comes up. Used for
// languages served by complementary servers (pyright plus ruff).
func (m *Manager) StartAllServers(language string) error {
	cfgs := m.configs[language]
	if len(cfgs) == 0 {
		return &ServerError{Language: language, Err: ErrNoServer}
	}

	started := 0
	var errs []error
	for _, cfg := range cfgs {
		if _, err := m.startWithConfig(cfg); err != nil {
			errs = append(errs, err)
		} else {
			started++
		}
	}
	if started == 0 {
		return &ServerError{Language: language, Err: errors.Join(errs...)}
	}
	return nil
}

// startWithConfig spawns one server unless the same (language, name) pair
// is already running, and begins the initialize handshake.
func (m *Manager) startWithConfig(cfg ServerConfig) (*ManagedServer, error) {
	for _, srv := range m.servers[cfg.Language] {
		if srv.Config.Name == cfg.Name && srv.State != StateStopped && srv.Process.IsRunning() {
			return srv, nil
		}
	}

	proc, err := SpawnProcess(cfg.Command)
	if err != nil {
		return nil, err
	}

	srv := newManagedServer(cfg, proc)
	if m.diagnostics != nil {
		srv.Router.SetDiagnosticsHandler(m.diagnostics)
	}

	init := NewInitializeRequest(NextRequestID(), m.workspaceRoot, m.clientName)
	if err := proc.Send(init.Encode()); err != nil {
		proc.Kill()
		return nil, err
	}
	srv.State = StateInitializing

	m.servers[cfg.Language] = append(m.servers[cfg.Language], srv)
	return srv, nil
}

// GetOrStart returns a live server for the language, starting one if
// needed. The first live instance wins; extras only receive documents.
func (m *Manager) GetOrStart(language string) (*ManagedServer, error) {
	for _, srv := range m.servers[language] {
		if srv.State != StateStopped && srv.Process.IsRunning() {
			return srv, nil
		}
	}
	if err := m.StartServer(language); err != nil {
		return nil, err
	}
	// Crashed instances linger in the list until an explicit stop; take
	// the one that just started, not slot zero.
	for _, srv := range m.servers[language] {
		if srv.State != StateStopped && srv.Process.IsRunning() {
			return srv, nil
		}
	}
	return nil, &ServerError{Language: language, Err: ErrServerStopped}
}

// GetServerWithCapability returns the first live server for the language
// whose capabilities satisfy the predicate.
func (m *Manager) GetServerWithCapability(language string, pred func(Capabilities) bool) (*ManagedServer, bool) {
	for _, srv := range m.servers[language] {
		if srv.State == StateReady && srv.Process.IsRunning() && pred(srv.Capabilities) {
			return srv, true
		}
	}
	return nil, false
}

// HasServer reports whether a ready server exists for the language.
func (m *Manager) HasServer(language string) bool {
	for _, srv := range m.servers[language] {
		if srv.State == StateReady {
			return true
		}
	}
	return false
}

// SendRequest registers the callback and writes the request. If the
// server is mid-handshake the call pumps messages for a bounded interval
// first; when the bound expires the request is written anyway and the
// server answers or errors once it finishes initializing.
func (m *Manager) SendRequest(language string, msg Message, cb ResponseCallback) error {
	srv, err := m.GetOrStart(language)
	if err != nil {
		return err
	}

	if srv.State != StateReady {
		for i := 0; i < m.pollLimit; i++ {
			m.pumpServer(srv)
			if srv.State == StateReady {
				break
			}
			time.Sleep(m.pollInterval)
		}
	}

	if msg.Kind == KindRequest && cb != nil {
		srv.Router.RegisterCallback(msg.ID, cb)
	}
	return srv.Process.Send(msg.Encode())
}

// SendNotification writes a notification without waiting for readiness.
// didOpen sent before the handshake completes is deferred and flushed on
// the ready transition; everything else goes straight out.
func (m *Manager) SendNotification(language string, msg Message) error {
	srv, err := m.GetOrStart(language)
	if err != nil {
		return err
	}

	if srv.State != StateReady && msg.Method == "textDocument/didOpen" {
		srv.DeferNotification(msg)
		return nil
	}
	return srv.Process.Send(msg.Encode())
}

// ProcessMessages drains and routes everything every server has produced.
// Called once per editor frame.
func (m *Manager) ProcessMessages() {
	for _, servers := range m.servers {
		for _, srv := range servers {
			m.pumpServer(srv)
		}
	}
}

// pumpServer decodes and routes every complete frame the server has
// buffered. The initialize response is intercepted while the handshake is
// outstanding; replies owed to server-initiated requests are written back
// before the next frame is taken.
func (m *Manager) pumpServer(srv *ManagedServer) {
	for {
		payload, ok := srv.Process.TryReceive()
		if !ok {
			return
		}
		msg, ok := DecodeMessage([]byte(payload))
		if !ok {
			continue
		}

		if srv.State == StateInitializing && msg.Kind == KindResponse && msg.Error == nil {
			_ = srv.completeInitialize(gjson.ParseBytes(msg.Result))
			continue
		}

		if reply, ok := srv.Router.HandleMessage(msg); ok {
			_ = srv.Process.Send(reply.Encode())
		}
	}
}

// StopServer shuts down every instance for the language: shutdown
// request, short grace, exit notification, then kill. Errors on the way
// out are ignored; the processes are going away regardless.
func (m *Manager) StopServer(language string) {
	for _, srv := range m.servers[language] {
		srv.State = StateShuttingDown

		shutdown := NewShutdownRequest(NextRequestID())
		_ = srv.Process.Send(shutdown.Encode())

		time.Sleep(shutdownGrace)

		_ = srv.Process.Send(NewExitNotification().Encode())
		srv.Process.Kill()
		srv.State = StateStopped
	}
	delete(m.servers, language)
}

// StopAll stops every running server.
func (m *Manager) StopAll() {
	for language := range m.servers {
		m.StopServer(language)
	}
}
