// Package protocol implements the binary wire format spoken to the motor
// and gripper controller. Target reports are 10-byte frames, actuator
// commands are 5-byte frames; all multi-byte integers are little-endian
// and every frame carries a mod-256 checksum over its interior bytes.
package protocol

import (
	"encoding/binary"

	"rescuecam/tracking"
)

const (
	StartByte = 0xAA
	EndByte   = 0xBB

	// TargetFrameLen is start + dx(2) + dy(2) + class + distance(2) +
	// checksum + end.
	TargetFrameLen = 10

	// CommandFrameLen is start + id + param + checksum + end.
	CommandFrameLen = 5
)

// Class ids on the wire. Zone ids let the controller distinguish a drop
// zone report from a ball report.
const (
	IDRedBall  = 0
	IDBlueBall = 1
	IDYellow   = 2 // hazard target
	IDBlack    = 3 // core target
	IDRedZone  = 4
	IDBlueZone = 5
)

// ClassID maps a detected color class to its wire id.
func ClassID(c tracking.ColorClass) (uint8, bool) {
	switch c {
	case tracking.ClassRed:
		return IDRedBall, true
	case tracking.ClassBlue:
		return IDBlueBall, true
	case tracking.ClassYellow:
		return IDYellow, true
	case tracking.ClassBlack:
		return IDBlack, true
	default:
		return 0, false
	}
}

// ZoneID maps a team color to the wire id of its drop zone.
func ZoneID(c tracking.ColorClass) (uint8, bool) {
	switch c {
	case tracking.ClassRed:
		return IDRedZone, true
	case tracking.ClassBlue:
		return IDBlueZone, true
	default:
		return 0, false
	}
}

// EncodeTarget builds a target-report frame. dx and dy are the pixel
// offsets from frame center (dy positive upward), clamped to the signed
// 16-bit range; distance is millimeters, clamped to the unsigned 16-bit
// range. Output is deterministic for fixed inputs.
func EncodeTarget(dx, dy int, classID uint8, distanceMm int) []byte {
	dx16 := clampI16(dx)
	dy16 := clampI16(dy)
	dist16 := clampU16(distanceMm)

	frame := make([]byte, 0, TargetFrameLen)
	frame = append(frame, StartByte)
	frame = binary.LittleEndian.AppendUint16(frame, uint16(dx16))
	frame = binary.LittleEndian.AppendUint16(frame, uint16(dy16))
	frame = append(frame, classID)
	frame = binary.LittleEndian.AppendUint16(frame, dist16)
	frame = append(frame, checksum(frame[1:]))
	frame = append(frame, EndByte)
	return frame
}

// checksum is the unsigned sum of the payload bytes modulo 256.
func checksum(payload []byte) byte {
	var sum int
	for _, b := range payload {
		sum += int(b)
	}
	return byte(sum & 0xFF)
}

func clampI16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func clampU16(v int) uint16 {
	if v > 65535 {
		return 65535
	}
	if v < 0 {
		return 0
	}
	return uint16(v)
}
