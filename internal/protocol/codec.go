package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var ErrEmptyMessage = errors.New("empty message")

// Codec frames {type, data} envelopes for one transport.
type Codec interface {
	Name() string
	Encode(t MessageType, payload any) ([]byte, error)
	Decode(data []byte) (*Envelope, error)
}

// Envelope is a decoded frame whose payload is bound on demand.
type Envelope struct {
	Type MessageType
	raw  []byte
	bind func(raw []byte, v any) error
}

// Bind decodes the payload into v. A missing payload leaves v untouched.
func (e *Envelope) Bind(v any) error {
	if len(e.raw) == 0 {
		return nil
	}
	if err := e.bind(e.raw, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

type JSONCodec struct{}

type jsonFrame struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (JSONCodec) Name() string {
	return "json"
}

func (JSONCodec) Encode(t MessageType, payload any) ([]byte, error) {
	frame := jsonFrame{Type: t}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", t, err)
		}
		frame.Data = data
	}

	out, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s frame: %w", t, err)
	}
	return out, nil
}

func (JSONCodec) Decode(data []byte) (*Envelope, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	var frame jsonFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	if frame.Type == "" {
		return nil, fmt.Errorf("frame has no type")
	}

	raw := []byte(frame.Data)
	if string(raw) == "null" {
		raw = nil
	}

	return &Envelope{Type: frame.Type, raw: raw, bind: json.Unmarshal}, nil
}

type MsgpackCodec struct{}

type msgpackFrame struct {
	Type MessageType        `msgpack:"type"`
	Data msgpack.RawMessage `msgpack:"data,omitempty"`
}

func (MsgpackCodec) Name() string {
	return "msgpack"
}

func (MsgpackCodec) Encode(t MessageType, payload any) ([]byte, error) {
	frame := msgpackFrame{Type: t}
	if payload != nil {
		data, err := msgpack.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", t, err)
		}
		frame.Data = data
	}

	out, err := msgpack.Marshal(&frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s frame: %w", t, err)
	}
	return out, nil
}

func (MsgpackCodec) Decode(data []byte) (*Envelope, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	var frame msgpackFrame
	if err := msgpack.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	if frame.Type == "" {
		return nil, fmt.Errorf("frame has no type")
	}

	return &Envelope{Type: frame.Type, raw: []byte(frame.Data), bind: msgpack.Unmarshal}, nil
}
