package link

import (
	"fmt"
	"log"
	"sync"
	"time"

	"rescuecam/protocol"
)

const (
	defaultReadTimeout = 200 * time.Millisecond
	maxReconnects      = 3
	reconnectBackoff   = 250 * time.Millisecond
	readChunk          = 64
)

// ErrNotConnected is returned when a send is attempted while the link is
// in its degraded (disconnected) state.
var ErrNotConnected = fmt.Errorf("serial link not connected")

// Link is the duplex serial channel to the controller. One loop goroutine
// owns it exclusively; the mutex only guards against a late Close from a
// signal handler.
type Link struct {
	path string
	baud int
	open Opener

	mu      sync.Mutex
	port    Porter
	rxTail  []byte // partial frame carried between polls
	dropped int    // frames rejected by checksum/framing since open
}

// New creates a link for the given port path and baud rate without
// opening it; the first Connect or send opens the device.
func New(path string, baud int, open Opener) *Link {
	if open == nil {
		open = OpenSerial
	}
	return &Link{path: path, baud: baud, open: open}
}

// Connect opens the port with a bounded number of attempts and a short
// backoff. A failure leaves the link degraded; sends return
// ErrNotConnected and the caller retries next cycle.
func (l *Link) Connect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connectLocked()
}

func (l *Link) connectLocked() error {
	if l.port != nil {
		return nil
	}
	var lastErr error
	for attempt := 0; attempt < maxReconnects; attempt++ {
		port, err := l.open(l.path, l.baud)
		if err == nil {
			port.SetReadTimeout(defaultReadTimeout)
			l.port = port
			l.rxTail = nil
			l.dropped = 0
			return nil
		}
		lastErr = err
		time.Sleep(reconnectBackoff)
	}
	return fmt.Errorf("open %s: %w", l.path, lastErr)
}

// Connected reports whether the port is currently open.
func (l *Link) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.port != nil
}

// Send writes one encoded frame. On a write error the port is dropped so
// the next Send reconnects; this cycle's command is simply lost, which
// the protocol tolerates.
func (l *Link) Send(frame []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port == nil {
		if err := l.connectLocked(); err != nil {
			return ErrNotConnected
		}
	}
	if _, err := l.port.Write(frame); err != nil {
		log.Printf("[LINK] write failed, dropping port: %v", err)
		l.closeLocked()
		return err
	}
	return nil
}

// PollFeedback performs one short-timeout read and decodes the first
// valid feedback frame from the accumulated receive buffer. Corrupt or
// partial frames are dropped silently; ok is false until a complete valid
// frame arrives.
func (l *Link) PollFeedback() (protocol.Feedback, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port == nil {
		return protocol.Feedback{}, false
	}

	buf := make([]byte, readChunk)
	n, err := l.port.Read(buf)
	if err != nil {
		log.Printf("[LINK] read failed, dropping port: %v", err)
		l.closeLocked()
		return protocol.Feedback{}, false
	}
	if n > 0 {
		l.rxTail = append(l.rxTail, buf[:n]...)
	}
	if len(l.rxTail) == 0 {
		return protocol.Feedback{}, false
	}

	fb, consumed, ok := protocol.DecodeFeedback(l.rxTail)
	if !ok && consumed == len(l.rxTail) && len(l.rxTail) >= protocol.CommandFrameLen {
		l.dropped++
	}
	l.rxTail = l.rxTail[consumed:]
	// Cap the tail so a controller spewing garbage cannot grow it.
	if len(l.rxTail) > 4*protocol.CommandFrameLen {
		l.rxTail = l.rxTail[len(l.rxTail)-protocol.CommandFrameLen:]
	}
	return fb, ok
}

// DroppedFrames reports how many invalid frames were discarded since the
// port was last opened.
func (l *Link) DroppedFrames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Close releases the port.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *Link) closeLocked() error {
	if l.port == nil {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	return err
}
