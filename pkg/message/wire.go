package message

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Encode 将消息编码为一帧。
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil message", ErrUnknownKind)
	}

	switch m.Kind() {
	case KindChat, KindInternal, KindAck:
	default:
		return nil, fmt.Errorf("%w: unsupported message type %T", ErrUnknownKind, m)
	}

	b := make([]byte, 1, 1+proto.Size(m))
	b[0] = byte(m.Kind())

	b, err := proto.MarshalOptions{}.MarshalAppend(b, m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", m.Kind(), err)
	}
	return b, nil
}

// Decode 从一帧中解码出消息。
// 返回的具体类型为 *ChatMsg、*InternalMsg 或 *AckMsg。
func Decode(frame []byte) (Message, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}

	var m Message
	switch Kind(frame[0]) {
	case KindChat:
		m = &ChatMsg{}
	case KindInternal:
		m = &InternalMsg{}
	case KindAck:
		m = &AckMsg{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, Kind(frame[0]))
	}

	if err := proto.Unmarshal(frame[1:], m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}
	return m, nil
}
