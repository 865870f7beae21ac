package api

import (
	"testing"

	"bombgrid/internal/game"

	"github.com/gorilla/websocket"
)

// TestCodecNegotiation verifies name resolution and frame types
func TestCodecNegotiation(t *testing.T) {
	if CodecFor("msgpack").Name() != "msgpack" {
		t.Error("msgpack should resolve to the msgpack codec")
	}
	if CodecFor("json").Name() != "json" {
		t.Error("json should resolve to the json codec")
	}
	if CodecFor("").Name() != "json" {
		t.Error("missing codec param should fall back to json")
	}
	if CodecFor("protobuf").Name() != "json" {
		t.Error("unknown codec should fall back to json")
	}

	if CodecFor("json").MessageType() != websocket.TextMessage {
		t.Error("json frames should be text")
	}
	if CodecFor("msgpack").MessageType() != websocket.BinaryMessage {
		t.Error("msgpack frames should be binary")
	}
}

// TestCodecIntentRoundTrip verifies intents survive both codecs
func TestCodecIntentRoundTrip(t *testing.T) {
	for _, codec := range []Codec{CodecFor("json"), CodecFor("msgpack")} {
		in := Intent{Action: ActionMove, Direction: "left"}

		data, err := codec.Marshal(in)
		if err != nil {
			t.Fatalf("%s marshal: %v", codec.Name(), err)
		}

		var out Intent
		if err := codec.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s unmarshal: %v", codec.Name(), err)
		}
		if out.Action != ActionMove || out.Direction != "left" {
			t.Errorf("%s round trip lost data: %+v", codec.Name(), out)
		}
	}
}

// TestCodecBatchEncoding verifies a diff batch encodes under both codecs
func TestCodecBatchEncoding(t *testing.T) {
	batch := []game.Diff{
		{Type: game.DiffPlayerMoved, Payload: game.MovePayload{ID: "c1", X: 2, Y: 1, Facing: game.DirRight}},
		{Type: game.DiffBombPlaced, Payload: game.BombPayload{ID: "bomb_000001", OwnerID: "c1", X: 2, Y: 1, FuseMs: 3000}},
	}

	for _, codec := range []Codec{CodecFor("json"), CodecFor("msgpack")} {
		data, err := codec.Marshal(batch)
		if err != nil {
			t.Fatalf("%s marshal: %v", codec.Name(), err)
		}

		var decoded []struct {
			Type game.DiffType `json:"type" msgpack:"type"`
		}
		if err := codec.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("%s unmarshal: %v", codec.Name(), err)
		}
		if len(decoded) != 2 {
			t.Fatalf("%s: expected 2 diffs, got %d", codec.Name(), len(decoded))
		}
		if decoded[0].Type != game.DiffPlayerMoved || decoded[1].Type != game.DiffBombPlaced {
			t.Errorf("%s: diff order not preserved", codec.Name())
		}
	}
}
