package gatt

import "github.com/pkg/errors"

// ErrAlreadyServing is returned by AddService, and by a second call to
// Serve, once the server has started.
var ErrAlreadyServing = errors.New("gatt: server is already serving")

// ErrNotServing is returned by Close when the server was never started.
var ErrNotServing = errors.New("gatt: server is not serving")

// ErrPacketTooLong is returned when a caller-supplied advertising or
// scan response packet exceeds adv.MaxPacketLength.
var ErrPacketTooLong = errors.New("gatt: advertising/scan response packet longer than 31 bytes")
