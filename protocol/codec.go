package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the frame encoding. JSON goes out as websocket text frames,
// msgpack as binary frames.
type Format uint8

const (
	FormatJSON Format = iota
	FormatMsgpack
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "msgpack":
		return FormatMsgpack, nil
	}
	return 0, fmt.Errorf("unknown wire format %q", s)
}

func (f Format) String() string {
	if f == FormatMsgpack {
		return "msgpack"
	}
	return "json"
}

func (f Format) Binary() bool {
	return f == FormatMsgpack
}

type jsonEnvelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

type msgpackEnvelope struct {
	T string             `json:"t"`
	P msgpack.RawMessage `json:"p"`
}

// Encode is the JSON encoder kept for callers that do not care about format.
func Encode(t string, payload any) ([]byte, error) {
	return FormatJSON.Encode(t, payload)
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	return FormatJSON.DecodeEnvelope(b)
}

func (f Format) Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("trying to encode envelope with empty type")
	}
	if payload == nil {
		return nil, fmt.Errorf("trying to encode nil payload")
	}
	if f == FormatMsgpack {
		pb, err := msgpackMarshal(payload)
		if err != nil {
			return nil, err
		}
		return msgpackMarshal(msgpackEnvelope{T: t, P: pb})
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonEnvelope{T: t, P: pb})
}

func (f Format) DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("decode envelope: empty frame")
	}
	if f == FormatMsgpack {
		var e msgpackEnvelope
		if err := msgpackUnmarshal(b, &e); err != nil {
			return Envelope{}, err
		}
		return Envelope{T: e.T, P: e.P, Format: f}, nil
	}
	var e jsonEnvelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, err
	}
	return Envelope{T: e.T, P: e.P, Format: f}, nil
}

// DecodePayload decodes env.P into a T. Intents with no payload (dash, start)
// never call this.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	if env.Format == FormatMsgpack {
		err := msgpackUnmarshal(env.P, &out)
		return out, err
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}

// msgpack reuses the json struct tags so payload types are declared once.
func msgpackMarshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func msgpackUnmarshal(b []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
