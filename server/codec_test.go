package server

import (
	"testing"

	"github.com/gorilla/websocket"
)

func TestDecodeClientMessageJSON(t *testing.T) {
	msg, err := DecodeClientMessage(websocket.TextMessage, []byte(`{"type":"move","x":150,"y":120}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != MsgMove || msg.X != 150 || msg.Y != 120 {
		t.Fatalf("unexpected message %+v", msg)
	}

	msg, err = DecodeClientMessage(websocket.TextMessage, []byte(`{"type":"selectClass","classType":"mage"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.ClassType == nil || *msg.ClassType != "mage" {
		t.Fatalf("expected classType mage, got %v", msg.ClassType)
	}
}

func TestDecodeClientMessageRejectsGarbage(t *testing.T) {
	cases := []struct {
		name  string
		frame int
		data  string
	}{
		{"not json", websocket.TextMessage, `hello`},
		{"class not a string", websocket.TextMessage, `{"type":"selectClass","classType":42}`},
		{"not msgpack", websocket.BinaryMessage, "\xc1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeClientMessage(tc.frame, []byte(tc.data)); err == nil {
				t.Fatalf("expected decode error")
			}
		})
	}
}

func TestDecodeClientMessageMsgpack(t *testing.T) {
	class := "rogue"
	in := ClientMessage{Type: MsgShoot, X: 3.5, Y: -2, Angle: 1.25, ClassType: &class}
	b, err := Msgpack.Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeClientMessage(websocket.BinaryMessage, b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Type != MsgShoot || out.X != 3.5 || out.Y != -2 || out.Angle != 1.25 {
		t.Fatalf("unexpected message %+v", out)
	}
	if out.ClassType == nil || *out.ClassType != class {
		t.Fatalf("expected classType %q, got %v", class, out.ClassType)
	}
}

func TestMsgpackUsesJSONFieldNames(t *testing.T) {
	b, err := Msgpack.Encode(newItemPicked("item-1", "p1"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var m map[string]any
	if err := Msgpack.Decode(b, &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["type"] != EvtItemPicked || m["itemId"] != "item-1" || m["playerId"] != "p1" {
		t.Fatalf("unexpected fields %v", m)
	}
}

func TestInventoryMsgpackNullSlots(t *testing.T) {
	var inv Inventory
	inv[0] = ItemGold
	inv[3] = ItemPotion

	b, err := Msgpack.Encode(inv)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw []any
	if err := Msgpack.Decode(b, &raw); err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	if len(raw) != InventorySlots {
		t.Fatalf("expected %d slots, got %d", InventorySlots, len(raw))
	}
	if raw[0] != string(ItemGold) || raw[1] != nil || raw[3] != string(ItemPotion) {
		t.Fatalf("unexpected slots %v", raw)
	}

	var back Inventory
	if err := Msgpack.Decode(b, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != inv {
		t.Fatalf("inventory changed: %v != %v", back, inv)
	}
}

func TestCodecByName(t *testing.T) {
	for name, want := range map[string]Codec{"": JSON, "json": JSON, "msgpack": Msgpack} {
		got, err := CodecByName(name)
		if err != nil || got != want {
			t.Fatalf("CodecByName(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := CodecByName("protobuf"); err == nil {
		t.Fatalf("expected error for unknown codec")
	}
	if JSON.FrameType() != websocket.TextMessage || Msgpack.FrameType() != websocket.BinaryMessage {
		t.Fatalf("unexpected frame types")
	}
}
