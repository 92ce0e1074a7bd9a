package produce

import (
	"context"

	"github.com/JrMarcco/connector/internal/pkg/xmq"
	"github.com/cespare/xxhash/v2"
	"github.com/segmentio/kafka-go"
)

type Producer interface {
	Produce(ctx context.Context, msg *xmq.Message) error
}

var _ kafka.Balancer = (*XXHashBalancer)(nil)

// XXHashBalancer 按消息 key 的 xxhash 选择分区。
// 同一 key ( 用户 id ) 的消息总是写入同一分区，保证单个用户的离线消息有序。
// key 为空时退化为轮询。
type XXHashBalancer struct {
	fallback kafka.RoundRobin
}

func (b *XXHashBalancer) Balance(msg kafka.Message, partitions ...int) int {
	if len(msg.Key) == 0 {
		return b.fallback.Balance(msg, partitions...)
	}
	return partitions[partitionFromKey(msg.Key, len(partitions))]
}

func partitionFromKey(key []byte, partitions int) int {
	return int(xxhash.Sum64(key) % uint64(partitions))
}
