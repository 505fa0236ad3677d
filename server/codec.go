package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec 一种线上编码：JSON 文本帧或 MessagePack 二进制帧
type Codec interface {
	Name() string
	FrameType() int
	Encode(v any) ([]byte, error)
	Decode(b []byte, v any) error
}

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

type jsonCodec struct{}

func (jsonCodec) Name() string                 { return CodecJSON }
func (jsonCodec) FrameType() int               { return websocket.TextMessage }
func (jsonCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Decode(b []byte, v any) error { return json.Unmarshal(b, v) }

// msgpackCodec 复用 json 标签，两种编码字段名一致
type msgpackCodec struct{}

func (msgpackCodec) Name() string   { return CodecMsgpack }
func (msgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (msgpackCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Decode(b []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

var (
	JSON    Codec = jsonCodec{}
	Msgpack Codec = msgpackCodec{}
)

// CodecByName 按查询参数选择编码，空串为 JSON
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return JSON, nil
	case CodecMsgpack:
		return Msgpack, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// DecodeClientMessage 文本帧按 JSON、二进制帧按 MessagePack 解码
func DecodeClientMessage(frameType int, b []byte) (ClientMessage, error) {
	var msg ClientMessage
	codec := JSON
	if frameType == websocket.BinaryMessage {
		codec = Msgpack
	}
	if err := codec.Decode(b, &msg); err != nil {
		return msg, fmt.Errorf("decode %s frame: %w", codec.Name(), err)
	}
	return msg, nil
}

// Frame 一条已编码、待写出的消息
type Frame struct {
	Type int
	Data []byte
}

// EncodeMsgpack 与 JSON 一致：空格编码为 nil
func (inv Inventory) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(InventorySlots); err != nil {
		return err
	}
	for _, slot := range inv {
		var err error
		if slot == "" {
			err = enc.EncodeNil()
		} else {
			err = enc.EncodeString(string(slot))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (inv *Inventory) DecodeMsgpack(dec *msgpack.Decoder) error {
	var in []*string
	if err := dec.Decode(&in); err != nil {
		return err
	}
	*inv = Inventory{}
	for i := 0; i < len(in) && i < InventorySlots; i++ {
		if in[i] != nil {
			inv[i] = ItemType(*in[i])
		}
	}
	return nil
}
