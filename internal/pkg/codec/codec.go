package codec

import (
	"errors"

	"github.com/JrMarcco/connector/pkg/message"
)

//go:generate mockgen -source=./codec.go -destination=./mock/codec.mock.go -package=codecmock -typed Codec

var ErrInvalidPayload = errors.New("invalid codec payload")

// Codec 是客户端消息编码/解码接口。
// 注:
//
//	Codec 只用于客户端 ( 业务前端 ) 与 connector 之间的 websocket 消息。
//	connector 与 transfer 之间固定使用 message.Encode / message.Decode。
type Codec interface {
	Name() string
	Marshal(msg message.Message) ([]byte, error)
	Unmarshal(data []byte) (message.Message, error)
}
