package protocol

// Actuator command ids.
const (
	CmdGrasp  = 0x01
	CmdPlace  = 0x02
	CmdRotate = 0x03
)

// rotateStop is the midpoint of the mapped rotate parameter; the
// controller interprets it as "hold still".
const rotateStop = 128

// encodeCommand builds a 5-byte command frame.
func encodeCommand(id, param byte) []byte {
	return []byte{StartByte, id, param, checksum([]byte{id, param}), EndByte}
}

// EncodeGrasp commands the gripper: close when grab is true, open when
// false.
func EncodeGrasp(grab bool) []byte {
	var flag byte
	if grab {
		flag = 1
	}
	return encodeCommand(CmdGrasp, flag)
}

// EncodePlace commands a release into the given slot (0-4).
func EncodePlace(slot int) []byte {
	if slot < 0 {
		slot = 0
	}
	if slot > 4 {
		slot = 4
	}
	return encodeCommand(CmdPlace, byte(slot))
}

// EncodeRotate commands a rotation at a signed percentage speed in
// [-100, 100]. The speed maps linearly onto one unsigned byte:
// 0 is full counter-clockwise, 128 is stop, 255 is full clockwise.
func EncodeRotate(speedPct int) []byte {
	if speedPct > 100 {
		speedPct = 100
	}
	if speedPct < -100 {
		speedPct = -100
	}
	mapped := rotateStop + int(float64(speedPct)*1.27)
	return encodeCommand(CmdRotate, byte(mapped))
}

// EncodeStop is a rotate at zero speed; the controller holds position.
func EncodeStop() []byte {
	return EncodeRotate(0)
}
