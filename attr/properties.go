package attr

// Properties are the GATT characteristic property bits, in the order
// assigned by the Bluetooth spec (Broadcast is bit 0).
type Properties uint8

const (
	PropBroadcast Properties = 1 << iota
	PropRead
	PropWriteNoResponse
	PropWrite
	PropNotify
	PropIndicate
	PropSignedWrite
	PropExtended
)

func (p Properties) Has(bit Properties) bool { return p&bit != 0 }
