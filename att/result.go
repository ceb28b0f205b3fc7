package att

import "github.com/bleperiph/gatt/attr"

// errorCodeFor maps an attr.AccessResult to its ATT error code, per
// spec.md §7 ("Access failures ... mapped 1:1 to ATT error codes").
func errorCodeFor(r attr.AccessResult) byte {
	switch r {
	case attr.ResultInvalidOffset:
		return ecodeInvalidOffset
	case attr.ResultWriteNotPermitted:
		return ecodeWriteNotPermitted
	case attr.ResultReadNotPermitted:
		return ecodeReadNotPermitted
	case attr.ResultInvalidAttributeValueLength:
		return ecodeInvalidAttrValueLen
	case attr.ResultAttributeNotLong:
		return ecodeAttrNotLong
	case attr.ResultInsufficientEncryption:
		return ecodeInsufficientEncr
	case attr.ResultInsufficientAuthentication:
		return ecodeInsufficientAuthn
	default:
		return ecodeRequestNotSupported
	}
}
