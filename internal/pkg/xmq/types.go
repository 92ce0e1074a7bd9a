// Package xmq 定义 connector 投递到消息队列的消息。
package xmq

type Headers map[string]string

type Message struct {
	Headers Headers

	Topic string
	Key   []byte
	Val   []byte
}
