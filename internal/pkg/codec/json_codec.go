package codec

import (
	"encoding/json"
	"fmt"

	"github.com/JrMarcco/connector/pkg/message"
	"google.golang.org/protobuf/encoding/protojson"
)

var _ Codec = (*JsonCodec)(nil)

// JsonCodec 使用 {"kind": "...", "payload": {...}} 的结构编码消息，payload 为 protojson 格式。
// 主要用于浏览器客户端调试。
type JsonCodec struct {
	marshalOpts   protojson.MarshalOptions
	unmarshalOpts protojson.UnmarshalOptions
}

type jsonEnvelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func (c *JsonCodec) Name() string {
	return "json"
}

func (c *JsonCodec) Marshal(msg message.Message) ([]byte, error) {
	switch msg.(type) {
	case *message.ChatMsg, *message.InternalMsg, *message.AckMsg:
	default:
		return nil, fmt.Errorf("failed to marshal message: %w: %T", message.ErrUnknownKind, msg)
	}

	payload, err := c.marshalOpts.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return json.Marshal(jsonEnvelope{Kind: msg.Kind().String(), Payload: payload})
}

func (c *JsonCodec) Unmarshal(data []byte) (message.Message, error) {
	var envelope jsonEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	var msg message.Message
	switch envelope.Kind {
	case message.KindChat.String():
		msg = &message.ChatMsg{}
	case message.KindInternal.String():
		msg = &message.InternalMsg{}
	case message.KindAck.String():
		msg = &message.AckMsg{}
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidPayload, message.ErrUnknownKind, envelope.Kind)
	}

	if len(envelope.Payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}
	if err := c.unmarshalOpts.Unmarshal(envelope.Payload, msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return msg, nil
}

func NewJsonCodec() *JsonCodec {
	return &JsonCodec{
		// 字段名与 proto 定义一致 ( snake_case )，便于与 transfer 侧日志对照。
		marshalOpts:   protojson.MarshalOptions{UseProtoNames: true},
		unmarshalOpts: protojson.UnmarshalOptions{DiscardUnknown: true},
	}
}
