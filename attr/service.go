package attr

import "github.com/bleperiph/gatt/uuid"

// Service is a GATT service: a primary- or secondary-service declaration
// followed by its characteristics' attributes, per spec.md §3.
// Characteristics must be added before the owning Table is built.
type Service struct {
	uuid      uuid.UUID
	secondary bool
	chars     []*Characteristic
}

// NewService creates a primary service with the given UUID.
func NewService(u uuid.UUID) *Service {
	return &Service{uuid: u}
}

// NewSecondaryService creates a secondary service with the given UUID.
func NewSecondaryService(u uuid.UUID) *Service {
	return &Service{uuid: u, secondary: true}
}

// UUID returns the service's UUID.
func (s *Service) UUID() uuid.UUID { return s.uuid }

// AddCharacteristic adds and returns a new characteristic with the given
// UUID. It panics if the service already contains a characteristic with
// the same UUID — mirroring the teacher's check, this is a programming
// error caught at assembly time, not a runtime condition.
func (s *Service) AddCharacteristic(u uuid.UUID) *Characteristic {
	for _, c := range s.chars {
		if c.uuid.Equal(u) {
			panic("attr: service already contains a characteristic with uuid " + u.String())
		}
	}
	c := &Characteristic{service: s, uuid: u, cccdIndex: -1}
	s.chars = append(s.chars, c)
	return c
}

// Characteristics returns the service's characteristics in declaration
// order.
func (s *Service) Characteristics() []*Characteristic { return s.chars }
