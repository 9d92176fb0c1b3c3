// Package link owns the duplex serial channel to the motor and gripper
// controller: a thin port abstraction so the pipeline can be tested
// without hardware, plus bounded reconnect handling.
package link

import (
	"io"
	"time"

	"go.bug.st/serial"
)

// Porter is the minimal interface the pipeline needs from a serial port.
// The abstraction enables unit testing without a real device.
type Porter interface {
	io.ReadWriter
	io.Closer
	// SetReadTimeout bounds how long a Read may block.
	SetReadTimeout(timeout time.Duration) error
}

// Opener is a function that opens a port at the given path and baud rate.
// Injecting it keeps port creation out of the Link for tests.
type Opener func(path string, baud int) (Porter, error)

// realPort adapts go.bug.st/serial to Porter.
type realPort struct {
	serial.Port
}

func (p realPort) SetReadTimeout(timeout time.Duration) error {
	return p.Port.SetReadTimeout(timeout)
}

// OpenSerial opens a real 8N1 serial port. It is the production Opener.
func OpenSerial(path string, baud int) (Porter, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	return realPort{Port: port}, nil
}
