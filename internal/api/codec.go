package api

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Every WebSocket message is a diff batch: an ordered array of changes the
// client replays in sequence. The codec decides how that array is framed on
// the wire. JSON is the default; clients that connect with ?codec=msgpack
// get binary frames instead, which cuts payload size roughly in half for
// grid-heavy fullState messages.

// Codec serializes diff batches and deserializes client intents.
type Codec interface {
	Name() string
	MessageType() int
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Intent is a single client command. Unknown actions are ignored.
type Intent struct {
	Action    string `json:"action" msgpack:"action"`
	Direction string `json:"direction,omitempty" msgpack:"direction,omitempty"`
	Nickname  string `json:"nickname,omitempty" msgpack:"nickname,omitempty"`
}

// Client intent actions.
const (
	ActionJoin      = "join"
	ActionMove      = "move"
	ActionPlaceBomb = "placeBomb"
)

// CodecFor resolves the negotiated codec name. Anything other than
// "msgpack" falls back to JSON.
func CodecFor(name string) Codec {
	if name == "msgpack" {
		return msgpackCodec{}
	}
	return jsonCodec{}
}

type jsonCodec struct{}

func (jsonCodec) Name() string     { return "json" }
func (jsonCodec) MessageType() int { return websocket.TextMessage }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string     { return "msgpack" }
func (msgpackCodec) MessageType() int { return websocket.BinaryMessage }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
