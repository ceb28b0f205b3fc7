// Package att implements the Attribute Protocol engine: request/response
// dispatch, MTU negotiation, and the find/read/write opcodes described
// in spec.md §4.3, layered over an attr.Table.
package att

// ATT opcodes, per spec.md §4.3 and grounded in the teacher's const.go.
const (
	opError              = 0x01
	opMTUReq             = 0x02
	opMTUResp            = 0x03
	opFindInfoReq        = 0x04
	opFindInfoResp       = 0x05
	opFindByTypeValueReq = 0x06
	opFindByTypeValueResp = 0x07
	opReadByTypeReq      = 0x08
	opReadByTypeResp     = 0x09
	opReadReq            = 0x0A
	opReadResp           = 0x0B
	opReadBlobReq        = 0x0C
	opReadBlobResp       = 0x0D
	opReadMultiReq       = 0x0E
	opReadMultiResp      = 0x0F
	opReadByGroupReq     = 0x10
	opReadByGroupResp    = 0x11
	opWriteReq           = 0x12
	opWriteResp          = 0x13
	opPrepareWriteReq    = 0x16
	opPrepareWriteResp   = 0x17
	opExecuteWriteReq    = 0x18
	opExecuteWriteResp   = 0x19
	opHandleValueNotify  = 0x1B
	opHandleValueInd     = 0x1D
	opHandleValueConfirm = 0x1E
	opWriteCmd           = 0x52
	opSignedWriteCmd     = 0xD2
)

// ATT error codes, per the Bluetooth core spec (grounded in the
// teacher's const.go attEcode* constants).
const (
	ecodeInvalidHandle       = 0x01
	ecodeReadNotPermitted    = 0x02
	ecodeWriteNotPermitted   = 0x03
	ecodeInvalidPDU          = 0x04
	ecodeInsufficientAuthn   = 0x05
	ecodeRequestNotSupported = 0x06
	ecodeInvalidOffset       = 0x07
	ecodeAttrNotFound        = 0x0A
	ecodeAttrNotLong         = 0x0B
	ecodeInvalidAttrValueLen = 0x0D
	ecodeInsufficientEncr    = 0x0F
	ecodeUnsupportedGroupType = 0x10
)

// finding16Format/finding128Format are the two entry formats Find
// Information Response may use (spec.md §4.3: "never mixing").
const (
	finding16Format  = 0x01
	finding128Format = 0x02
)
