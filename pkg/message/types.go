// Package message 定义了 connector 与 transfer、client 之间收发的消息帧。
//
// 每一帧由一个字节的 Kind 标识和 protobuf 编码的消息体组成：
//
//	+------+---------------------------+
//	| kind | body ( protobuf )         |
//	+------+---------------------------+
//
// 消息体定义见 api/proto/message/v1/message.proto。
package message

//go:generate protoc -I ../../api/proto --go_out=. --go_opt=paths=source_relative message/v1/message.proto

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
)

var (
	ErrEmptyFrame         = errors.New("empty frame")
	ErrUnknownKind        = errors.New("unknown message kind")
	ErrMalformedFrame     = errors.New("malformed frame")
	ErrInvalidOrigin      = errors.New("invalid message origin")
	ErrInvalidDestination = errors.New("invalid message destination")
)

// Kind 为消息帧的类型标识，即帧的第一个字节。
type Kind uint8

const (
	KindUnknown  Kind = 0x00
	KindChat     Kind = 0x01
	KindInternal Kind = 0x02
	KindAck      Kind = 0x03
)

func (k Kind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindInternal:
		return "internal"
	case KindAck:
		return "ack"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Message 是所有消息帧的抽象。
type Message interface {
	proto.Message

	Kind() Kind
	Origin() Module
	Destination() Module
}

var (
	_ Message = (*InternalMsg)(nil)
	_ Message = (*ChatMsg)(nil)
	_ Message = (*AckMsg)(nil)
)

func (x *InternalMsg) Kind() Kind          { return KindInternal }
func (x *InternalMsg) Origin() Module      { return x.GetFrom() }
func (x *InternalMsg) Destination() Module { return x.GetDest() }

func (x *ChatMsg) Kind() Kind          { return KindChat }
func (x *ChatMsg) Origin() Module      { return x.GetFrom() }
func (x *ChatMsg) Destination() Module { return x.GetDest() }

func (x *AckMsg) Kind() Kind          { return KindAck }
func (x *AckMsg) Origin() Module      { return x.GetFrom() }
func (x *AckMsg) Destination() Module { return x.GetDest() }

// CheckFrom 校验消息来源。
func CheckFrom(m Message, from Module) error {
	if m.Origin() != from {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidOrigin, from, m.Origin())
	}
	return nil
}

// CheckDest 校验消息目标。
func CheckDest(m Message, dest Module) error {
	if m.Destination() != dest {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidDestination, dest, m.Destination())
	}
	return nil
}
