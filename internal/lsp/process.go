package lsp

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// readChunkSize is the stdout read buffer size for the reader goroutine.
const readChunkSize = 8192

// Process supervises one language server child process. A single reader
// goroutine forwards raw stdout chunks over a channel; all header parsing
// and framing happens on the caller's goroutine, so received bytes are
// never touched concurrently.
type Process struct {
	id    string
	cmd   *exec.Cmd
	stdin io.WriteCloser

	chunks chan []byte
	buf    []byte // undelivered bytes, owned by the receiving goroutine

	done     chan struct{}
	exited   chan struct{}
	eof      atomic.Bool
	exitCode atomic.Int32
	killOnce sync.Once
}

// SpawnProcess starts a language server from its argv. The command is
// resolved via PATH; no shell is involved.
func SpawnProcess(command []string) (*Process, error) {
	if len(command) == 0 {
		return nil, ErrEmptyCommand
	}

	cmd := exec.Command(command[0], command[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", command[0], err)
	}

	p := &Process{
		id:     uuid.New().String(),
		cmd:    cmd,
		stdin:  stdin,
		chunks: make(chan []byte, 64),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	go p.readLoop(stdout)
	go func() {
		// Server diagnostics on stderr are not part of the protocol.
		_, _ = io.Copy(io.Discard, stderr)
	}()
	go p.waitLoop()

	return p, nil
}

// readLoop forwards stdout chunks to the receive channel. It never parses.
func (p *Process) readLoop(stdout io.Reader) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case p.chunks <- chunk:
			case <-p.done:
				return
			}
		}
		if err != nil {
			p.eof.Store(true)
			return
		}
	}
}

// waitLoop reaps the child and records its exit.
func (p *Process) waitLoop() {
	err := p.cmd.Wait()
	if exitErr, ok := err.(*exec.ExitError); ok {
		p.exitCode.Store(int32(exitErr.ExitCode()))
	}
	close(p.exited)
}

// ID returns the unique instance id assigned at spawn.
func (p *Process) ID() string { return p.id }

// PID returns the operating system process id.
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// IsRunning reports whether the child has not yet exited.
func (p *Process) IsRunning() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// Send writes one already-framed message to the server's stdin.
func (p *Process) Send(data string) error {
	if !p.IsRunning() {
		return ErrProcessExited
	}
	if _, err := io.WriteString(p.stdin, data); err != nil {
		return fmt.Errorf("write to server: %w", err)
	}
	return nil
}

// TryReceive returns the next complete message payload without blocking.
// Partial frames stay buffered until the rest arrives.
func (p *Process) TryReceive() (string, bool) {
	p.drainChunks()
	return p.nextFrame()
}

// ReceiveTimeout waits up to d for a complete message payload.
func (p *Process) ReceiveTimeout(d time.Duration) (string, bool) {
	deadline := time.Now().Add(d)
	for {
		if payload, ok := p.TryReceive(); ok {
			return payload, true
		}
		if p.eof.Load() && len(p.chunks) == 0 {
			return "", false
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", false
		}
		select {
		case chunk := <-p.chunks:
			p.buf = append(p.buf, chunk...)
		case <-time.After(remaining):
			return "", false
		case <-p.done:
			return "", false
		}
	}
}

// drainChunks moves everything the reader has produced into the frame buffer.
func (p *Process) drainChunks() {
	for {
		select {
		case chunk := <-p.chunks:
			p.buf = append(p.buf, chunk...)
		default:
			return
		}
	}
}

// nextFrame extracts at most one Content-Length framed payload from the
// buffer. Header names are matched case-insensitively; unknown headers
// are ignored.
func (p *Process) nextFrame() (string, bool) {
	headerEnd := bytes.Index(p.buf, []byte("\r\n\r\n"))
	if headerEnd < 0 {
		return "", false
	}

	contentLength := -1
	for _, line := range strings.Split(string(p.buf[:headerEnd]), "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				contentLength = n
			}
		}
	}
	if contentLength < 0 {
		// Malformed header block; discard it so the stream can resync.
		p.buf = append([]byte(nil), p.buf[headerEnd+4:]...)
		return "", false
	}

	bodyStart := headerEnd + 4
	if len(p.buf) < bodyStart+contentLength {
		return "", false
	}

	payload := string(p.buf[bodyStart : bodyStart+contentLength])
	p.buf = append([]byte(nil), p.buf[bodyStart+contentLength:]...)
	return payload, true
}

// Kill terminates the child. Safe to call more than once; errors from an
// already-dead process are ignored.
func (p *Process) Kill() {
	p.killOnce.Do(func() {
		close(p.done)
		_ = p.stdin.Close()
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
	})
}

// ExitCode returns the recorded exit code, valid once the child exited.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}
