package linklayer

// LL control PDU opcodes, per spec.md §4.7 and the Bluetooth core spec.
const (
	LLConnectionUpdateInd = 0x00
	LLChannelMapInd       = 0x01
	LLTerminateInd        = 0x02
	LLEncReq              = 0x03
	LLEncRsp              = 0x04
	LLStartEncReq         = 0x05
	LLStartEncRsp         = 0x06
	LLUnknownRsp          = 0x07
	LLFeatureReq          = 0x08
	LLFeatureRsp          = 0x09
	LLPauseEncReq         = 0x0A
	LLPauseEncRsp         = 0x0B
	LLVersionInd          = 0x0C
	LLPingReq             = 0x12
	LLPingRsp             = 0x13
	LLLengthReq           = 0x14
	LLLengthRsp           = 0x15
)

// Data channel PDU header LLID values (bits 0-1 of the header's first
// byte), per the Bluetooth core spec.
const (
	llidContinuation = 0x01 // continuation fragment of an L2CAP message
	llidL2CAPStart   = 0x02 // start (or complete, unfragmented) L2CAP message
	llidControl      = 0x03 // LL Control PDU
)
