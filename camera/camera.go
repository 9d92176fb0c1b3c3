// Package camera wraps the capture device: it applies exposure presets at
// open time and recovers from transient device failures with a bounded
// reopen-and-backoff policy. Exhausting the retries is fatal to the run.
package camera

import (
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"
)

const (
	maxReopenAttempts = 5
	reopenBackoff     = 300 * time.Millisecond
	settleDelay       = 200 * time.Millisecond
)

// ErrCameraLost is returned once reopen attempts are exhausted; the
// caller is expected to terminate the run.
var ErrCameraLost = fmt.Errorf("camera lost after reopen attempts exhausted")

// Manager owns the capture handle exclusively for the loop thread.
type Manager struct {
	deviceID int
	width    int
	height   int
	preset   Preset

	cap *gocv.VideoCapture
}

// Open opens the capture device, applies the resolution and the exposure
// preset, and returns the manager.
func Open(deviceID, width, height int, preset Preset) (*Manager, error) {
	m := &Manager{deviceID: deviceID, width: width, height: height, preset: preset}
	if err := m.open(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) open() error {
	cap, err := gocv.OpenVideoCapture(m.deviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", m.deviceID, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return fmt.Errorf("camera %d did not open", m.deviceID)
	}
	cap.Set(gocv.VideoCaptureFrameWidth, float64(m.width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(m.height))
	m.preset.apply(cap)
	m.cap = cap
	return nil
}

// Read fills frame with the next capture. On failure the device is
// released and reopened with backoff; ErrCameraLost is returned once the
// attempts run out.
func (m *Manager) Read(frame *gocv.Mat) error {
	for attempt := 0; attempt <= maxReopenAttempts; attempt++ {
		if m.cap != nil {
			if m.cap.Read(frame) && !frame.Empty() {
				return nil
			}
			log.Printf("[CAMERA] empty read from device %d, reopening", m.deviceID)
			m.cap.Close()
			m.cap = nil
		}
		if attempt == maxReopenAttempts {
			break
		}
		time.Sleep(reopenBackoff)
		if err := m.open(); err != nil {
			log.Printf("[CAMERA] reopen attempt %d failed: %v", attempt+1, err)
			continue
		}
		time.Sleep(settleDelay)
	}
	return ErrCameraLost
}

// ApplyPreset switches exposure presets on the live device.
func (m *Manager) ApplyPreset(preset Preset) {
	m.preset = preset
	if m.cap != nil {
		preset.apply(m.cap)
	}
}

// Close releases the capture handle.
func (m *Manager) Close() error {
	if m.cap == nil {
		return nil
	}
	err := m.cap.Close()
	m.cap = nil
	return err
}
