// Package idgen 提供 connector 使用的 ID 生成器。
package idgen

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// connectorID 在进程启动时生成，进程生命周期内保持不变。
var connectorID = uuid.NewString()

// ConnectorID 返回当前进程的 connector id。
func ConnectorID() string {
	return connectorID
}

//go:generate mockgen -source=./idgen.go -destination=./mock/idgen.mock.go -package=idgenmock -typed Generator

// Generator 是单调递增 ID 生成器。
type Generator interface {
	NextID() int64
}

const (
	sequenceBits = 12
	sequenceMask = 1<<sequenceBits - 1
)

var _ Generator = (*MonotonicGenerator)(nil)

// MonotonicGenerator 生成形如 ( 毫秒时间戳 << 12 | 序号 ) 的 ID。
// 同一毫秒内序号用尽或时钟回拨时，借用下一个时间戳，保证严格单调递增。
type MonotonicGenerator struct {
	last atomic.Int64
	now  func() time.Time
}

func (g *MonotonicGenerator) NextID() int64 {
	for {
		last := g.last.Load()

		next := g.now().UnixMilli() << sequenceBits
		if next <= last {
			next = last + 1
		}

		if g.last.CompareAndSwap(last, next) {
			return next
		}
	}
}

func NewMonotonicGenerator() *MonotonicGenerator {
	return NewMonotonicGeneratorWithClock(time.Now)
}

func NewMonotonicGeneratorWithClock(now func() time.Time) *MonotonicGenerator {
	return &MonotonicGenerator{now: now}
}

var defaultGenerator = NewMonotonicGenerator()

// NextID 使用进程级默认生成器生成 ID。
func NextID() int64 {
	return defaultGenerator.NextID()
}

// GeneratorFunc 将普通函数适配为 Generator。
type GeneratorFunc func() int64

func (f GeneratorFunc) NextID() int64 {
	return f()
}
