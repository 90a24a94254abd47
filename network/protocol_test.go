package network

import (
	"encoding/json"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"type":"placeBomb","payload":{"row":3,"column":4,"strength":2}}`))
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if env.Type != MsgPlaceBomb {
		t.Errorf("Expected type %q, got %q", MsgPlaceBomb, env.Type)
	}

	var req PlaceBombRequest
	if err := json.Unmarshal(env.Payload, &req); err != nil {
		t.Fatalf("Payload should round-trip into the request struct: %v", err)
	}
	if req.Row != 3 || req.Column != 4 || req.Strength != 2 {
		t.Errorf("Unexpected request: %+v", req)
	}
}

func TestParseEnvelopeMalformed(t *testing.T) {
	cases := []string{
		`not json at all`,
		`{"payload":{}}`,
		`{"type":""}`,
		``,
	}
	for _, raw := range cases {
		if _, err := ParseEnvelope([]byte(raw)); err != ErrMalformedEnvelope {
			t.Errorf("ParseEnvelope(%q) should report ErrMalformedEnvelope, got %v", raw, err)
		}
	}
}

func TestParseEnvelopeMissingPayload(t *testing.T) {
	// A type with no payload is a valid frame; handlers decide what to do.
	env, err := ParseEnvelope([]byte(`{"type":"joinAny"}`))
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if env.Type != MsgJoinAny {
		t.Errorf("Expected type %q, got %q", MsgJoinAny, env.Type)
	}
}

func TestStartConfigColorIsNullOnWire(t *testing.T) {
	data, err := json.Marshal(GameStartPayload{Configs: []StartConfig{{ID: 0}}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"configs":[{"id":0,"color":null}]}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, string(data))
	}
}
