package codec

import (
	"fmt"

	"github.com/JrMarcco/connector/pkg/message"
)

var _ Codec = (*ProtoCodec)(nil)

// ProtoCodec 与上行连接使用相同的帧格式：1 字节类型标记 + protobuf wire 编码的消息体。
type ProtoCodec struct{}

func (c *ProtoCodec) Name() string {
	return "proto"
}

func (c *ProtoCodec) Marshal(msg message.Message) ([]byte, error) {
	frame, err := message.Encode(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return frame, nil
}

func (c *ProtoCodec) Unmarshal(data []byte) (message.Message, error) {
	msg, err := message.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return msg, nil
}

func NewProtoCodec() *ProtoCodec {
	return &ProtoCodec{}
}
