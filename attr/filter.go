package attr

import "github.com/bleperiph/gatt/uuid"

// FindServiceByUUID returns the first service in declaration order whose
// UUID equals u, and whether one was found. This is a convenience for
// the engine's Find By Type Value handling of the primary/secondary
// service group type, supplemented into SPEC_FULL.md §6.
func FindServiceByUUID(services []*Service, u uuid.UUID) (*Service, bool) {
	for _, s := range services {
		if s.uuid.Equal(u) {
			return s, true
		}
	}
	return nil, false
}

// FindCharacteristicByUUID returns the first characteristic across
// services (searched in declaration order) whose UUID equals u.
func FindCharacteristicByUUID(services []*Service, u uuid.UUID) (*Characteristic, bool) {
	for _, s := range services {
		for _, c := range s.chars {
			if c.uuid.Equal(u) {
				return c, true
			}
		}
	}
	return nil, false
}

// CharacteristicsOf returns svc's characteristics that have the given
// property bit set, e.g. CharacteristicsOf(svc, PropNotify) for the set
// of characteristics a connection's NotifyQueue must consider.
func CharacteristicsOf(svc *Service, prop Properties) []*Characteristic {
	var out []*Characteristic
	for _, c := range svc.chars {
		if c.props.Has(prop) {
			out = append(out, c)
		}
	}
	return out
}
