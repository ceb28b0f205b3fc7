// Package gatt implements a Bluetooth Low Energy peripheral: the link
// layer (advertising, connection establishment, channel hopping), the
// L2CAP/ATT protocol engine (fragmentation, MTU negotiation, the full
// request/response protocol, notifications/indications), and a
// compile-time-composable GATT attribute database.
//
// Radio hardware and pairing are out of scope: callers supply a
// linklayer.Radio implementation, and encryption state is pushed into
// the attribute table via attr.SecurityAttrs.
//
// USAGE
//
//	srv := gatt.NewServer("gophergatt", gatt.WithServerMTU(185))
//
//	svc := attr.NewService(uuid.New16(0x180D))
//	count := 0
//	ch := svc.AddCharacteristic(uuid.New16(0x2A37))
//	ch.HandleRead(attr.ReadFunc(func(offset uint16, out []byte) (int, attr.AccessResult) {
//		count++
//		return copy(out, []byte{byte(count)}), attr.ResultSuccess
//	}))
//	srv.AddService(svc)
//
//	if err := srv.Serve(myRadio); err != nil {
//		log.Fatal(err)
//	}
package gatt
