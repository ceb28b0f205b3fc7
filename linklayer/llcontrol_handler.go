package linklayer

import "github.com/bleperiph/gatt/internal/logx"

// localFeatures is the 8-byte LE feature-support bitmask this link
// layer reports in LL_FEATURE_RSP: only the LE Ping bit (bit 4) is set.
// Encryption, 2M PHY, and data length extension are reported
// unsupported since this layer has no encryption engine and defers
// PHY/payload-length capability entirely to the Radio driver, which
// this package never queries for feature-bit purposes.
var localFeatures = [8]byte{0x10, 0, 0, 0, 0, 0, 0, 0}

const (
	localVersionNumber = 0x0A // Bluetooth 5.1
	localCompanyID     = 0xFFFF
	localSubVersion    = 0x0001
)

// handleLLControl processes one received LL Control PDU (opcode plus
// parameters) and returns the opcode and parameters of a response PDU
// to transmit on a subsequent connection event, if any. Side effects
// (arming a channel map or connection-parameter update, disconnecting
// on LL_TERMINATE_IND) are applied directly to sm.conn.
func (sm *StateMachine) handleLLControl(opcode byte, params []byte) (respOpcode byte, respParams []byte, hasResp bool) {
	c := sm.conn
	switch opcode {
	case LLConnectionUpdateInd:
		if len(params) < 11 {
			return LLUnknownRsp, []byte{opcode}, true
		}
		p := connUpdateParams{
			WindowSize:         int(params[0]),
			WindowOffset:       int(le16(params[1:3])),
			Interval:           int(le16(params[3:5])),
			SlaveLatency:       int(le16(params[5:7])),
			SupervisionTimeout: int(le16(params[7:9])),
		}
		instant := le16(params[9:11])
		if !c.ArmConnectionUpdate(p, instant) {
			sm.disconnect("instant_passed")
		}
		return 0, nil, false

	case LLChannelMapInd:
		if len(params) < 7 {
			return LLUnknownRsp, []byte{opcode}, true
		}
		used := make([]int, 0, NumDataChannels)
		for i := 0; i < NumDataChannels; i++ {
			if params[i/8]&(1<<uint(i%8)) != 0 {
				used = append(used, i)
			}
		}
		newMap := NewChannelMap(used, c.ChannelMap.Hop())
		instant := le16(params[5:7])
		if !c.ArmChannelMapUpdate(newMap, instant) {
			sm.disconnect("instant_passed")
		}
		return 0, nil, false

	case LLTerminateInd:
		reason := byte(0)
		if len(params) > 0 {
			reason = params[0]
		}
		logx.Get().WithField("error_code", reason).Debug("link layer: peer terminated connection")
		sm.disconnect("remote_terminate")
		return 0, nil, false

	case LLFeatureReq:
		return LLFeatureRsp, localFeatures[:], true

	case LLVersionInd:
		resp := sm.versionIndResponse()
		return LLVersionInd, resp, resp != nil

	case LLPingReq:
		return LLPingRsp, nil, true

	case LLLengthReq:
		maxLen := sm.radio.MaxSupportedPayloadLength()
		resp := make([]byte, 8)
		putLE16(resp[0:2], uint16(maxLen))
		putLE16(resp[2:4], uint16(maxLen*8+59))
		putLE16(resp[4:6], uint16(maxLen))
		putLE16(resp[6:8], uint16(maxLen*8+59))
		return LLLengthRsp, resp, true

	case LLEncReq, LLEncRsp, LLStartEncReq, LLStartEncRsp, LLPauseEncReq, LLPauseEncRsp:
		// Encryption is negotiated by the Security Manager and the
		// Radio driver's hardware encryption engine, neither of which
		// this package implements; report the procedure unsupported.
		return LLUnknownRsp, []byte{opcode}, true

	default:
		return LLUnknownRsp, []byte{opcode}, true
	}
}

// versionIndResponse returns this side's LL_VERSION_IND parameters the
// first time it is asked, and nil on any subsequent request since the
// version exchange runs at most once per connection.
func (sm *StateMachine) versionIndResponse() []byte {
	if sm.conn.sentVersionInd {
		return nil
	}
	sm.conn.sentVersionInd = true
	resp := make([]byte, 5)
	resp[0] = localVersionNumber
	putLE16(resp[1:3], localCompanyID)
	putLE16(resp[3:5], localSubVersion)
	return resp
}

func putLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}
