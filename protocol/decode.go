package protocol

// Feedback is a decoded controller status frame. The controller reuses the
// 5-byte command layout to report back: Type is the command id the status
// refers to and State is its parameter byte.
type Feedback struct {
	Type  byte
	State byte
}

// DecodeFeedback scans buf for the first complete, valid feedback frame.
// It returns the decoded frame and the number of bytes consumed from the
// front of buf (including any garbage skipped before the start byte).
// A corrupt or partial frame is dropped silently: ok is false and the
// caller retries on a later poll with more data.
func DecodeFeedback(buf []byte) (fb Feedback, consumed int, ok bool) {
	for i := 0; i < len(buf); i++ {
		if buf[i] != StartByte {
			continue
		}
		if len(buf)-i < CommandFrameLen {
			// Partial frame: keep the tail for the next poll.
			return Feedback{}, i, false
		}
		frame := buf[i : i+CommandFrameLen]
		if frame[CommandFrameLen-1] != EndByte {
			continue
		}
		if checksum(frame[1:3]) != frame[3] {
			// Framing looked right but the payload is corrupt; skip
			// past this start byte and keep scanning.
			continue
		}
		return Feedback{Type: frame[1], State: frame[2]}, i + CommandFrameLen, true
	}
	return Feedback{}, len(buf), false
}
