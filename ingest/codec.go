package ingest

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec defines the serialization contract for exception messages.
type Codec interface {
	// Encode serializes a message to bytes.
	Encode(m *Message) ([]byte, error)

	// Decode deserializes bytes into a message.
	Decode(data []byte) (*Message, error)

	// Name returns the codec identifier.
	Name() string
}

// Codec names for content-type negotiation.
const (
	CodecNameJSON    = "json"
	CodecNameMsgpack = "msgpack"
)

// GetCodec returns a codec by name. Unknown names fall back to JSON.
func GetCodec(name string) Codec {
	switch name {
	case CodecNameMsgpack:
		return &MsgpackCodec{}
	default:
		return &JSONCodec{}
	}
}

// JSONCodec encodes and decodes messages as JSON.
type JSONCodec struct{}

func (c *JSONCodec) Encode(m *Message) ([]byte, error) {
	return json.Marshal(m)
}

func (c *JSONCodec) Decode(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *JSONCodec) Name() string { return CodecNameJSON }

// MsgpackCodec encodes and decodes messages as MessagePack.
type MsgpackCodec struct{}

func (c *MsgpackCodec) Encode(m *Message) ([]byte, error) {
	return msgpack.Marshal(m)
}

func (c *MsgpackCodec) Decode(data []byte) (*Message, error) {
	var m Message
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *MsgpackCodec) Name() string { return CodecNameMsgpack }
