package attr

import (
	"github.com/bleperiph/gatt/uuid"
	"github.com/pkg/errors"
)

// Well-known attribute-type UUIDs, exported for the ATT/L2CAP engine to
// use when encoding discovery responses.
var (
	UUIDPrimaryServiceType   = uuid.New16(0x2800)
	UUIDSecondaryServiceType = uuid.New16(0x2801)
	UUIDCharacteristicType   = uuid.New16(0x2803)
	UUIDCCCDType             = uuid.New16(0x2902)
	UUIDUserDescriptionType  = uuid.New16(0x2901)
)

var (
	uuidCCCD            = UUIDCCCDType
	uuidUserDescription  = UUIDUserDescriptionType
	uuidGAPService       = uuid.New16(0x1800)
	uuidGATTService      = uuid.New16(0x1801)
	uuidDeviceName       = uuid.New16(0x2A00)
	uuidAppearance       = uuid.New16(0x2A01)
	uuidServiceChanged   = uuid.New16(0x2A05)
)

// EntryKind classifies one row of the built attribute table.
type EntryKind int

const (
	KindService EntryKind = iota
	KindSecondaryService
	KindCharacteristicDecl
	KindCharacteristicValue
	KindCCCD
	KindUserDescription
	KindUserDescriptor
)

// Entry is a read-only view of one table row, exposing exactly the
// metadata the ATT engine needs to serve discovery and group-read
// opcodes without reaching into characteristic/descriptor internals.
type Entry struct {
	Handle      uint16
	Kind        EntryKind
	UUID        uuid.UUID
	GroupEnd    uint16 // valid for KindService/KindSecondaryService
	Properties  Properties
	ValueHandle uint16 // valid for KindCharacteristicDecl
	CCCDIndex   int    // valid for KindCharacteristicValue/KindCCCD with notify/indicate; else -1
	SecureRead  bool
	SecureWrite bool
}

// entry is the internal record backing an Entry, additionally carrying
// the backreference needed to actually perform reads/writes.
type entry struct {
	Entry
	char *Characteristic // set for KindCharacteristicDecl/Value/CCCD
	desc *Descriptor     // set for KindUserDescriptor
}

// Table is the compile-time-composed, position-indexed attribute table
// described in spec.md §3/§4.1. It is built once (BuildTable) and is
// immutable thereafter; all mutable per-connection state (the CCCD
// store, the notification queue, the write-queue arena) lives outside
// it, sized by NotifiableCount/Priorities.
type Table struct {
	entries    []entry
	byHandle   map[uint16]int
	notifiable []*Characteristic // indexed by CCCDIndex
}

// BuildTable assembles a Table from name (exposed via the default GAP
// service's Device Name characteristic) and the caller's services. The
// two default services (Generic Access 0x1800, Generic Attribute 0x1801)
// are always prepended, matching the teacher's defaultServices and
// spec.md §4.1's grounding note. Handles start at 1 and are assigned in
// table order, except for characteristics pinned with SetFixedHandle.
func BuildTable(name string, services []*Service) (*Table, error) {
	all := append(defaultServices(name), services...)

	t := &Table{byHandle: map[uint16]int{}}
	next := uint16(1)

	for _, svc := range all {
		groupStart := next
		kind := KindService
		if svc.secondary {
			kind = KindSecondaryService
		}
		svcEntry := entry{Entry: Entry{Handle: next, Kind: kind, UUID: svc.uuid, CCCDIndex: -1}}
		t.entries = append(t.entries, svcEntry)
		next++

		for _, c := range svc.chars {
			declHandle := next
			if c.fixedHandle != 0 {
				declHandle = c.fixedHandle
			}
			c.declHandle = declHandle
			c.valueHandle = declHandle + 1

			t.entries = append(t.entries, entry{
				Entry: Entry{
					Handle:      declHandle,
					Kind:        KindCharacteristicDecl,
					UUID:        c.uuid,
					Properties:  c.props,
					ValueHandle: c.valueHandle,
					CCCDIndex:   -1,
				},
				char: c,
			})

			valEntry := entry{
				Entry: Entry{
					Handle:      c.valueHandle,
					Kind:        KindCharacteristicValue,
					UUID:        c.uuid,
					Properties:  c.props,
					CCCDIndex:   -1,
					SecureRead:  c.secure.Has(PropRead),
					SecureWrite: c.secure.Has(PropWrite) || c.secure.Has(PropWriteNoResponse),
				},
				char: c,
			}
			next = c.valueHandle + 1

			if c.props.Has(PropNotify) || c.props.Has(PropIndicate) {
				c.cccdIndex = len(t.notifiable)
				t.notifiable = append(t.notifiable, c)
				valEntry.CCCDIndex = c.cccdIndex
			}
			t.entries = append(t.entries, valEntry)

			if c.cccdIndex >= 0 {
				c.cccdHandle = next
				t.entries = append(t.entries, entry{
					Entry: Entry{
						Handle:    next,
						Kind:      KindCCCD,
						UUID:      uuidCCCD,
						CCCDIndex: c.cccdIndex,
					},
					char: c,
				})
				next++
			}

			if c.userDescription != "" {
				t.entries = append(t.entries, entry{
					Entry: Entry{Handle: next, Kind: KindUserDescription, UUID: uuidUserDescription, CCCDIndex: -1},
					char:  c,
				})
				next++
			}

			for _, d := range c.descs {
				d.handle = next
				t.entries = append(t.entries, entry{
					Entry: Entry{Handle: next, Kind: KindUserDescriptor, UUID: d.uuid, CCCDIndex: -1},
					desc:  d,
				})
				next++
			}
		}

		groupEnd := next - 1
		for i := range t.entries {
			if t.entries[i].Handle == groupStart {
				t.entries[i].GroupEnd = groupEnd
			}
		}
	}

	for i, e := range t.entries {
		if existing, dup := t.byHandle[e.Handle]; dup {
			return nil, errors.Errorf("attr: handle %d assigned to both entry %d and entry %d (fixed-handle collision)", e.Handle, existing, i)
		}
		t.byHandle[e.Handle] = i
	}

	return t, nil
}

// Count returns the number of rows in the table.
func (t *Table) Count() int { return len(t.entries) }

// At returns the entry at the given handle.
func (t *Table) At(handle uint16) (Entry, bool) {
	i, ok := t.byHandle[handle]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i].Entry, true
}

// Subrange returns entries with handles in [start, end], in table order.
// It never panics on out-of-range bounds; it simply returns what
// overlaps.
func (t *Table) Subrange(start, end uint16) []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.Handle >= start && e.Handle <= end {
			out = append(out, e.Entry)
		}
	}
	return out
}

// MaxHandle returns the highest assigned handle, or 0 for an empty table.
func (t *Table) MaxHandle() uint16 {
	var max uint16
	for _, e := range t.entries {
		if e.Handle > max {
			max = e.Handle
		}
	}
	return max
}

// NotifiableCount returns the number of characteristics that declare
// notify or indicate, i.e. the size a connection's CCCDStore/NotifyQueue
// must be constructed with.
func (t *Table) NotifiableCount() int { return len(t.notifiable) }

// NotifiablePriorities returns the per-characteristic priority list, in
// CCCDIndex order, for NewNotifyQueue.
func (t *Table) NotifiablePriorities() []int {
	p := make([]int, len(t.notifiable))
	for i, c := range t.notifiable {
		p[i] = c.notifyPriority
	}
	return p
}

// CharacteristicValueHandle returns the value handle of the
// characteristic at the given CCCD index, for constructing notification
// PDUs.
func (t *Table) CharacteristicValueHandle(cccdIndex int) uint16 {
	return t.notifiable[cccdIndex].valueHandle
}

// ReadNotifiableValue fetches the current value of the characteristic at
// cccdIndex into out, for building a notification/indication PDU. It
// calls the same ReadFunc a Read Request would, with offset 0.
func (t *Table) ReadNotifiableValue(cccdIndex int, out []byte) (int, AccessResult) {
	c := t.notifiable[cccdIndex]
	return t.readCharacteristicValue(c, 0, out)
}

func (t *Table) readCharacteristicValue(c *Characteristic, offset uint16, out []byte) (int, AccessResult) {
	if !c.props.Has(PropRead) {
		return 0, ResultReadNotPermitted
	}
	if c.rhandler != nil {
		return c.rhandler(offset, out)
	}
	return staticRead(c.value)(offset, out)
}

// Access performs the access described by args against the attribute at
// args.Handle, dispatching on the entry's kind exactly as spec.md §4.1
// describes. cccd is the requesting connection's CCCD store; it must
// have been constructed with NotifiableCount()/NotifiablePriorities()
// sized to this table.
func (t *Table) Access(cccd *CCCDStore, args *AccessArgs) AccessResult {
	i, ok := t.byHandle[args.Handle]
	if !ok {
		return ResultReadNotPermitted // caller maps unknown handle before calling Access; defensive default
	}
	e := &t.entries[i]

	switch e.Kind {
	case KindService, KindSecondaryService:
		return t.accessGroupDecl(e, args)
	case KindCharacteristicDecl:
		return t.accessCharDecl(e, args)
	case KindCharacteristicValue:
		return t.accessCharValue(e, args)
	case KindCCCD:
		return t.accessCCCD(e, cccd, args)
	case KindUserDescription:
		return t.accessUserDescription(e, args)
	case KindUserDescriptor:
		return t.accessUserDescriptor(e, args)
	default:
		return ResultRequestNotSupported
	}
}

func (t *Table) accessGroupDecl(e *entry, args *AccessArgs) AccessResult {
	if args.Type != AccessRead {
		return ResultWriteNotPermitted
	}
	v := e.UUID.Bytes()
	if int(args.Offset) > len(v) {
		return ResultInvalidOffset
	}
	args.WriteOutput(v)
	return ResultSuccess
}

func (t *Table) accessCharDecl(e *entry, args *AccessArgs) AccessResult {
	if args.Type != AccessRead {
		return ResultWriteNotPermitted
	}
	body := make([]byte, 0, 3+e.UUID.Len())
	body = append(body, byte(e.Properties))
	body = append(body, byte(e.ValueHandle), byte(e.ValueHandle>>8))
	body = append(body, e.UUID.Bytes()...)
	if int(args.Offset) > len(body) {
		return ResultInvalidOffset
	}
	args.WriteOutput(body)
	return ResultSuccess
}

func (t *Table) accessCharValue(e *entry, args *AccessArgs) AccessResult {
	c := e.char
	switch args.Type {
	case AccessRead:
		if !c.props.Has(PropRead) {
			return ResultReadNotPermitted
		}
		if e.SecureRead && !args.Security.Encrypted {
			return ResultInsufficientEncryption
		}
		n, res := t.readCharacteristicValue(c, args.Offset, args.Output)
		args.OutputLen = n
		return res
	case AccessWrite, AccessPrepareWrite:
		if !c.props.Has(PropWrite) && !c.props.Has(PropWriteNoResponse) {
			return ResultWriteNotPermitted
		}
		if e.SecureWrite && !args.Security.Encrypted {
			return ResultInsufficientEncryption
		}
		if c.whandler == nil {
			return ResultWriteNotPermitted
		}
		if args.Type == AccessPrepareWrite {
			return ResultSuccess
		}
		return c.whandler(args.Input)
	default:
		return ResultRequestNotSupported
	}
}

func (t *Table) accessCCCD(e *entry, cccd *CCCDStore, args *AccessArgs) AccessResult {
	slot := cccd.Slot(e.CCCDIndex)
	args.ClientConfig = &slot

	switch args.Type {
	case AccessRead:
		var v byte
		if slot.Notify() {
			v |= cccdNotifyBit
		}
		if slot.Indicate() {
			v |= cccdIndicateBit
		}
		if args.Offset > 2 {
			return ResultInvalidOffset
		}
		args.WriteOutput([]byte{v, 0})
		return ResultSuccess
	case AccessWrite:
		if len(args.Input) != 2 {
			return ResultInvalidAttributeValueLength
		}
		v := args.Input[0]
		slot.Set(v&cccdNotifyBit != 0, v&cccdIndicateBit != 0)
		return ResultSuccess
	default:
		return ResultRequestNotSupported
	}
}

func (t *Table) accessUserDescription(e *entry, args *AccessArgs) AccessResult {
	if args.Type != AccessRead {
		return ResultWriteNotPermitted
	}
	n, res := staticRead([]byte(e.char.userDescription))(args.Offset, args.Output)
	args.OutputLen = n
	return res
}

func (t *Table) accessUserDescriptor(e *entry, args *AccessArgs) AccessResult {
	d := e.desc
	switch args.Type {
	case AccessRead:
		if d.rhandler != nil {
			n, res := d.rhandler(args.Offset, args.Output)
			args.OutputLen = n
			return res
		}
		n, res := staticRead(d.value)(args.Offset, args.Output)
		args.OutputLen = n
		return res
	case AccessWrite, AccessPrepareWrite:
		if d.whandler == nil {
			return ResultWriteNotPermitted
		}
		if args.Type == AccessPrepareWrite {
			return ResultSuccess
		}
		return d.whandler(args.Input)
	default:
		return ResultRequestNotSupported
	}
}

// defaultServices builds the always-present Generic Access (0x1800) and
// Generic Attribute (0x1801) services, matching the teacher's
// defaultServices and supplemented (SPEC_FULL.md §5) with an inert
// Service Changed characteristic declaration slot.
func defaultServices(name string) []*Service {
	gap := NewService(uuidGAPService)
	gap.AddCharacteristic(uuidDeviceName).SetValue([]byte(name))
	gap.AddCharacteristic(uuidAppearance).SetValue([]byte{0x00, 0x00})

	gatt := NewService(uuidGATTService)
	gatt.AddCharacteristic(uuidServiceChanged).SetValue(nil)

	return []*Service{gap, gatt}
}
