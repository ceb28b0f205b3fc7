package attr

import "github.com/bleperiph/gatt/uuid"

// ReadFunc serves a characteristic or descriptor read. It must honor
// offset per spec.md §4.1: if offset is beyond the value's length it
// should report ResultInvalidOffset; otherwise it copies into out
// (starting logically at offset) and returns how many bytes it wrote.
// The same function serves a plain Read Request (offset 0) and a Read
// Blob Request (offset > 0).
type ReadFunc func(offset uint16, out []byte) (n int, result AccessResult)

// WriteFunc serves a characteristic or descriptor write. For a Write
// Request or Write Command, data is the full write payload. For an
// Execute Write, the ATT engine calls WriteFunc once per queued
// prepared-write chunk, in queue order, with that chunk's bytes only;
// the chunk's offset is not passed.
type WriteFunc func(data []byte) AccessResult

// staticRead returns a ReadFunc serving a fixed byte slice, used by
// StaticValue and by characteristics/descriptors constructed with a
// plain value instead of handlers.
func staticRead(value []byte) ReadFunc {
	return func(offset uint16, out []byte) (int, AccessResult) {
		if int(offset) > len(value) {
			return 0, ResultInvalidOffset
		}
		return copy(out, value[offset:]), ResultSuccess
	}
}

// StaticValue returns a ReadFunc over an immutable byte constant,
// generalizing the read-only-characteristic-over-a-static-value pattern
// used throughout the profile services supplemented into SPEC_FULL.md
// §5 (Device Name/Appearance, and the DIS/sensor-location shaped
// services this package does not itself ship).
func StaticValue(value []byte) ReadFunc { return staticRead(value) }

// Characteristic is a GATT characteristic: a declaration attribute, a
// value attribute, and optionally a CCCD and descriptors, per spec.md
// §3. Characteristics are built with AddCharacteristic and are immutable
// once the owning Table has been built.
type Characteristic struct {
	uuid   uuid.UUID
	props  Properties
	secure Properties // subset of props requiring an encrypted link

	value    []byte // static value; nil if rhandler/whandler serve it
	rhandler ReadFunc
	whandler WriteFunc

	userDescription string
	descs           []*Descriptor

	notifyPriority int // higher sends first; meaningful only if notify/indicate enabled

	service *Service

	// filled in by BuildTable
	declHandle  uint16
	valueHandle uint16
	cccdHandle  uint16 // 0 if this characteristic has no CCCD
	cccdIndex   int    // index into the Table's CCCDStore/NotifyQueue, -1 if none
	fixedHandle uint16 // 0 unless SetFixedHandle was called
}

// UUID returns the characteristic's UUID.
func (c *Characteristic) UUID() uuid.UUID { return c.uuid }

// Handle returns the characteristic's value handle (the handle clients
// read/write/subscribe to). Valid only after the owning Table has been
// built.
func (c *Characteristic) Handle() uint16 { return c.valueHandle }

// DeclarationHandle returns the characteristic declaration's own handle
// (valueHandle - 1 in a densely packed table, but not assumed to be so
// when fixed handles are in play).
func (c *Characteristic) DeclarationHandle() uint16 { return c.declHandle }

// CCCDIndex returns this characteristic's slot index into the owning
// Table's CCCDStore and NotifyQueue, or -1 if it declares neither notify
// nor indicate.
func (c *Characteristic) CCCDIndex() int { return c.cccdIndex }

// SetValue gives the characteristic a static, read-only value, served
// without calling into application code.
func (c *Characteristic) SetValue(b []byte) *Characteristic {
	c.value = b
	c.props |= PropRead
	return c
}

// HandleRead makes the characteristic support Read/Read Blob requests,
// routed to f.
func (c *Characteristic) HandleRead(f ReadFunc) *Characteristic {
	c.props |= PropRead
	c.rhandler = f
	return c
}

// HandleWrite makes the characteristic support Write Request and Write
// Command, routed to f. The handler does not see which variant was
// used; the engine suppresses the response automatically for Write
// Command.
func (c *Characteristic) HandleWrite(f WriteFunc) *Characteristic {
	c.props |= PropWrite | PropWriteNoResponse
	c.whandler = f
	return c
}

// EnableNotify declares that the characteristic supports notifications,
// giving it a CCCD. priority orders it against other notifying/
// indicating characteristics in the same connection's NotifyQueue;
// higher values are delivered first.
func (c *Characteristic) EnableNotify(priority int) *Characteristic {
	c.props |= PropNotify
	c.notifyPriority = priority
	return c
}

// EnableIndicate declares that the characteristic supports indications,
// giving it a CCCD (shared with EnableNotify if both are called).
func (c *Characteristic) EnableIndicate(priority int) *Characteristic {
	c.props |= PropIndicate
	c.notifyPriority = priority
	return c
}

// SetSecure marks the given property bits as requiring an encrypted
// link; an access attempted over an unencrypted connection is rejected
// with ResultInsufficientEncryption.
func (c *Characteristic) SetSecure(bits Properties) *Characteristic {
	c.secure |= bits
	return c
}

// SetUserDescription adds a Characteristic User Description descriptor
// (0x2901) with the given static text.
func (c *Characteristic) SetUserDescription(s string) *Characteristic {
	c.userDescription = s
	return c
}

// AddDescriptor attaches an additional, caller-defined descriptor.
func (c *Characteristic) AddDescriptor(d *Descriptor) *Characteristic {
	c.descs = append(c.descs, d)
	return c
}

// SetFixedHandle pins this characteristic's declaration to a specific
// attribute handle instead of letting BuildTable assign the next
// sequential one (spec.md §3: "handles are unique and assigned in table
// order unless a fixed-handle attribute overrides them"). BuildTable
// reports an error if two attributes end up sharing a handle.
func (c *Characteristic) SetFixedHandle(n uint16) *Characteristic {
	c.fixedHandle = n
	return c
}
