// Package gatt assembles the attribute table, ATT protocol engine,
// L2CAP dispatcher, and link-layer state machine into a single BLE
// peripheral GATT server.
package gatt

import (
	"github.com/pkg/errors"

	"github.com/bleperiph/gatt/adv"
	"github.com/bleperiph/gatt/att"
	"github.com/bleperiph/gatt/attr"
	"github.com/bleperiph/gatt/internal/logx"
	"github.com/bleperiph/gatt/l2cap"
	"github.com/bleperiph/gatt/linklayer"
	"github.com/bleperiph/gatt/uuid"
)

// Server is a single-connection BLE GATT peripheral. Create one with
// NewServer, add services with AddService, then call Serve with a
// Radio implementation to start advertising.
type Server struct {
	Name string

	// Connect/Disconnect are optional callbacks invoked as a connection
	// is established/torn down.
	Connect    func(c Conn)
	Disconnect func(c Conn)

	addr BDAddr

	cfg      config
	services []*attr.Service

	table  *attr.Table
	engine *att.Engine
	disp   *l2cap.Dispatcher
	sm     *linklayer.StateMachine

	serving bool
}

// NewServer creates a GATT server advertising under name, configured by
// opts (see WithServerMTU, WithAdvertisingInterval, and friends).
func NewServer(name string, opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{Name: name, cfg: cfg}
}

// AddService registers a service with the server. All services must be
// added before Serve is called.
func (s *Server) AddService(svc *attr.Service) error {
	if s.serving {
		return ErrAlreadyServing
	}
	s.services = append(s.services, svc)
	return nil
}

// Serve builds the attribute table, ATT engine, L2CAP dispatcher, and
// link-layer state machine, then starts advertising on radio. It
// returns as soon as advertising has started; from then on the radio's
// callbacks drive the state machine.
func (s *Server) Serve(radio linklayer.Radio) error {
	if s.serving {
		return ErrAlreadyServing
	}

	table, err := attr.BuildTable(s.Name, s.services)
	if err != nil {
		return errors.Wrap(err, "gatt: building attribute table")
	}
	s.table = table
	s.engine = att.NewEngine(table, s.cfg.serverMTU, s.cfg.writeQueueSize)
	s.disp = l2cap.NewDispatcher(s.engine)

	advPDU, err := s.buildAdvertisingPDU()
	if err != nil {
		return err
	}
	scanRspPDU, err := s.buildScanResponsePDU()
	if err != nil {
		return err
	}

	acceptInitiator := s.cfg.addressFilter
	if !s.cfg.connectable {
		acceptInitiator = func([6]byte, bool) bool { return false }
	}
	llCfg := linklayer.Config{
		AdvPDU:              advPDU,
		ScanRspPDU:          scanRspPDU,
		Connectable:         s.cfg.connectable,
		AdvertisingInterval: s.cfg.advertisingInterval,
		AcceptInitiator:     acceptInitiator,
	}
	s.sm = linklayer.NewStateMachine(radio, llCfg, s.disp)
	s.sm.OnConnect(func() {
		if s.Connect != nil {
			s.Connect(newConn(s, s.addr))
		}
	})
	s.sm.OnDisconnect(func(reason string) {
		logx.Get().WithField("reason", reason).Info("gatt: connection ended")
		s.engine.NotifyQueue().Reset()
		if s.Disconnect != nil {
			s.Disconnect(newConn(s, s.addr))
		}
		s.sm.StartAdvertising()
	})

	s.serving = true
	s.sm.StartAdvertising()
	return nil
}

// Close stops advertising and disconnects any active connection.
func (s *Server) Close() error {
	if !s.serving {
		return ErrNotServing
	}
	s.sm.Terminate("server_closed")
	s.serving = false
	return nil
}

func (s *Server) buildAdvertisingPDU() ([]byte, error) {
	if s.cfg.advertisingPacket != nil {
		if len(s.cfg.advertisingPacket) > adv.MaxPacketLength {
			return nil, ErrPacketTooLong
		}
		return s.cfg.advertisingPacket, nil
	}
	b := adv.NewBuilder()
	b.AppendFlags(adv.FlagGeneralDiscoverable | adv.FlagLEOnly)
	uuids := make([]uuid.UUID, 0, len(s.services))
	for _, svc := range s.services {
		uuids = append(uuids, svc.UUID())
	}
	b.AppendServiceUUIDs(uuids)
	return b.Bytes(), nil
}

func (s *Server) buildScanResponsePDU() ([]byte, error) {
	if s.cfg.scanResponse != nil {
		if len(s.cfg.scanResponse) > adv.MaxPacketLength {
			return nil, ErrPacketTooLong
		}
		return s.cfg.scanResponse, nil
	}
	if s.Name == "" {
		return nil, nil
	}
	b := adv.NewBuilder()
	b.AppendName(s.Name)
	return b.Bytes(), nil
}
