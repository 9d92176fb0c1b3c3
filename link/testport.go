package link

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// TestPort implements Porter with configurable behaviour for tests:
// scripted read data, injectable write errors, and a record of everything
// written.
type TestPort struct {
	mu sync.Mutex

	readData  []byte
	readIndex int
	written   bytes.Buffer
	writeErr  error
	closed    bool
}

// NewTestPort creates a test port that will serve the given bytes to
// Read calls.
func NewTestPort(readData []byte) *TestPort {
	return &TestPort{readData: append([]byte(nil), readData...)}
}

func (p *TestPort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, io.EOF
	}
	if p.readIndex >= len(p.readData) {
		// A real port with a read timeout returns zero bytes.
		return 0, nil
	}
	n := copy(buf, p.readData[p.readIndex:])
	p.readIndex += n
	return n, nil
}

func (p *TestPort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(data)
}

func (p *TestPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *TestPort) SetReadTimeout(time.Duration) error { return nil }

// Written returns a copy of everything written to the port.
func (p *TestPort) Written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.written.Bytes()...)
}

// QueueRead appends more bytes for subsequent Read calls.
func (p *TestPort) QueueRead(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readData = append(p.readData, data...)
}

// SetWriteError makes subsequent writes fail with err.
func (p *TestPort) SetWriteError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}
