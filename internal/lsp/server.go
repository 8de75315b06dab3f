package lsp

import (
	"github.com/tidwall/gjson"
)

// ServerState tracks a managed server through its lifecycle.
type ServerState int32

const (
	// StateStarting means the process is spawned but initialize has not
	// been sent yet.
	StateStarting ServerState = iota

	// StateInitializing means initialize was sent and the handshake
	// response is outstanding.
	StateInitializing

	// StateReady means the handshake completed and requests may flow.
	StateReady

	// StateShuttingDown means shutdown was requested.
	StateShuttingDown

	// StateStopped means the process is gone.
	StateStopped
)

// String returns the state name.
func (s ServerState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ManagedServer is one running language server instance together with
// everything needed to talk to it. It is owned by the Manager and only
// touched from the pump goroutine.
type ManagedServer struct {
	Config       ServerConfig
	Process      *Process
	State        ServerState
	Capabilities Capabilities
	Router       *Router

	// deferred holds didOpen notifications sent before the handshake
	// finished. They are flushed in order, once, on entering StateReady.
	deferred []Message
}

func newManagedServer(config ServerConfig, proc *Process) *ManagedServer {
	return &ManagedServer{
		Config:  config,
		Process: proc,
		State:   StateStarting,
		Router:  NewRouter(),
	}
}

// DeferNotification queues a didOpen for delivery once the server is ready.
func (s *ManagedServer) DeferNotification(msg Message) {
	s.deferred = append(s.deferred, msg)
}

// completeInitialize finishes the handshake: record capabilities, move to
// StateReady, confirm with the initialized notification, and flush every
// deferred didOpen in the order it was queued.
func (s *ManagedServer) completeInitialize(result gjson.Result) error {
	caps := ParseCapabilities(result)
	if s.Config.Mask != nil {
		caps = caps.Intersect(*s.Config.Mask)
	}
	s.Capabilities = caps
	s.State = StateReady

	if err := s.Process.Send(NewInitializedNotification().Encode()); err != nil {
		return err
	}

	queued := s.deferred
	s.deferred = nil
	for _, msg := range queued {
		if err := s.Process.Send(msg.Encode()); err != nil {
			return err
		}
	}
	return nil
}
