package link

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescuecam/protocol"
)

func testOpener(port *TestPort, failures int) Opener {
	attempts := 0
	return func(path string, baud int) (Porter, error) {
		attempts++
		if attempts <= failures {
			return nil, errors.New("device busy")
		}
		return port, nil
	}
}

func TestLinkSendWritesFrames(t *testing.T) {
	t.Parallel()
	port := NewTestPort(nil)
	l := New("/dev/ttyUSB0", 115200, testOpener(port, 0))

	frame := protocol.EncodeTarget(10, -10, protocol.IDRedBall, 600)
	require.NoError(t, l.Send(frame))
	require.NoError(t, l.Send(protocol.EncodeGrasp(true)))

	written := port.Written()
	assert.Equal(t, append(append([]byte(nil), frame...), protocol.EncodeGrasp(true)...), written)
}

func TestLinkReconnectsWithBackoff(t *testing.T) {
	t.Parallel()
	port := NewTestPort(nil)
	l := New("/dev/ttyUSB0", 115200, testOpener(port, 2))

	require.NoError(t, l.Connect(), "third attempt succeeds within the retry budget")
	assert.True(t, l.Connected())
}

func TestLinkDegradesWhenPortNeverOpens(t *testing.T) {
	t.Parallel()
	l := New("/dev/ttyUSB0", 115200, func(string, int) (Porter, error) {
		return nil, errors.New("no such device")
	})

	require.Error(t, l.Connect())
	assert.False(t, l.Connected())
	assert.ErrorIs(t, l.Send(protocol.EncodeStop()), ErrNotConnected)
}

func TestLinkDropsPortOnWriteError(t *testing.T) {
	t.Parallel()
	port := NewTestPort(nil)
	l := New("/dev/ttyUSB0", 115200, testOpener(port, 0))
	require.NoError(t, l.Connect())

	port.SetWriteError(errors.New("unplugged"))
	assert.Error(t, l.Send(protocol.EncodeStop()))
	assert.False(t, l.Connected(), "write failure drops the port for the next cycle")
}

func TestLinkPollFeedback(t *testing.T) {
	t.Parallel()

	t.Run("decodes a valid frame", func(t *testing.T) {
		t.Parallel()
		feedback := []byte{0xAA, protocol.CmdGrasp, 0x01, 0x02, 0xBB}
		port := NewTestPort(feedback)
		l := New("/dev/ttyUSB0", 115200, testOpener(port, 0))
		require.NoError(t, l.Connect())

		fb, ok := l.PollFeedback()
		require.True(t, ok)
		assert.Equal(t, protocol.Feedback{Type: protocol.CmdGrasp, State: 1}, fb)
	})

	t.Run("reassembles a frame split across polls", func(t *testing.T) {
		t.Parallel()
		feedback := []byte{0xAA, protocol.CmdPlace, 0x02, 0x04, 0xBB}
		port := NewTestPort(feedback[:2])
		l := New("/dev/ttyUSB0", 115200, testOpener(port, 0))
		require.NoError(t, l.Connect())

		_, ok := l.PollFeedback()
		assert.False(t, ok, "half a frame is not a frame")

		port.QueueRead(feedback[2:])
		fb, ok := l.PollFeedback()
		require.True(t, ok)
		assert.Equal(t, protocol.Feedback{Type: protocol.CmdPlace, State: 2}, fb)
	})

	t.Run("corrupt frame is dropped silently", func(t *testing.T) {
		t.Parallel()
		corrupt := []byte{0xAA, protocol.CmdGrasp, 0x01, 0x99, 0xBB}
		port := NewTestPort(corrupt)
		l := New("/dev/ttyUSB0", 115200, testOpener(port, 0))
		require.NoError(t, l.Connect())

		_, ok := l.PollFeedback()
		assert.False(t, ok)
	})

	t.Run("quiet line yields nothing", func(t *testing.T) {
		t.Parallel()
		port := NewTestPort(nil)
		l := New("/dev/ttyUSB0", 115200, testOpener(port, 0))
		require.NoError(t, l.Connect())

		_, ok := l.PollFeedback()
		assert.False(t, ok)
	})
}
