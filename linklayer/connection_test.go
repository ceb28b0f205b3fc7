package linklayer

import "testing"

func newTestConnection() *Connection {
	cm := NewChannelMap([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 9)
	return NewConnection(0x8E89BED6, 0x555555, cm, 6, 3, 40, 0, 1000)
}

func TestNextChannelStartsAtFirstUsedChannel(t *testing.T) {
	c := newTestConnection()
	if got := c.NextChannel(); got != 0 {
		t.Fatalf("first event should use the first mapped channel, got %d", got)
	}
	if c.EventCounter() != 1 {
		t.Fatalf("event counter should advance to 1, got %d", c.EventCounter())
	}
}

func TestNextChannelHopsThereafter(t *testing.T) {
	c := newTestConnection()
	first := c.NextChannel()
	second := c.NextChannel()
	want := c.ChannelMap.NextChannel(first)
	if second != want {
		t.Fatalf("got %d, want %d", second, want)
	}
}

func TestArmChannelMapUpdateRejectsPastInstant(t *testing.T) {
	c := newTestConnection()
	c.NextChannel()
	c.NextChannel()
	c.NextChannel() // eventCounter now 3
	newMap := NewChannelMap([]int{20, 21, 22, 23, 24, 25}, 11)
	if c.ArmChannelMapUpdate(newMap, 1) {
		t.Fatalf("an instant already passed should be rejected")
	}
}

func TestArmChannelMapUpdateActivatesAtInstant(t *testing.T) {
	c := newTestConnection()
	newMap := NewChannelMap([]int{20, 21, 22, 23, 24, 25}, 11)
	if !c.ArmChannelMapUpdate(newMap, 2) {
		t.Fatalf("future instant should be accepted")
	}
	c.NextChannel() // processes event 0
	c.NextChannel() // processes event 1
	if c.ChannelMap == newMap {
		t.Fatalf("new map must not activate before its instant")
	}
	c.NextChannel() // processes event 2, which is the instant
	if c.ChannelMap != newMap {
		t.Fatalf("new map should activate once the instant is reached")
	}
}

func TestOnReceivedSNDeliversOnMatchingExpectedSN(t *testing.T) {
	c := newTestConnection()
	accepted := c.OnReceivedSN(false, c.TxSN())
	if !accepted {
		t.Fatalf("a PDU matching next expected SN should be delivered")
	}
	if c.NextRxSN() != true {
		t.Fatalf("next expected SN should flip after delivery")
	}
}

func TestOnReceivedSNRejectsRetransmit(t *testing.T) {
	c := newTestConnection()
	c.OnReceivedSN(false, c.TxSN())
	if accepted := c.OnReceivedSN(false, c.TxSN()); accepted {
		t.Fatalf("a retransmitted SN should not be delivered twice")
	}
}

func TestAdvanceTxSNTogglesAndMarksUnacked(t *testing.T) {
	c := newTestConnection()
	before := c.TxSN()
	c.AdvanceTxSN()
	if c.TxSN() == before {
		t.Fatalf("tx SN should toggle")
	}
	if !c.LastUnacked() {
		t.Fatalf("AdvanceTxSN should mark the transmission unacknowledged")
	}
}
