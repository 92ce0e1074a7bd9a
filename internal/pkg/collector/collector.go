// Package collector 提供一次性的响应收集器。
//
// ResponseCollector 绑定一个超时时间，等待一条上游响应。
// 收集器只能被完成一次 ( Complete 或 Fail )，之后的完成操作均为空操作。
package collector

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrTimeout   = errors.New("response collector timeout")
	ErrReclaimed = errors.New("response collector reclaimed after deadline")
)

type ResponseCollector[T any] struct {
	timeout  time.Duration
	deadline time.Time

	mu        sync.Mutex
	completed bool
	val       T
	err       error
	callbacks []func(T, error)

	done chan struct{}
}

// Complete 使用 val 完成收集器。
// 返回 false 表示收集器已经被完成过。
func (c *ResponseCollector[T]) Complete(val T) bool {
	return c.finish(val, nil)
}

// Fail 使用 err 完成收集器。
func (c *ResponseCollector[T]) Fail(err error) bool {
	var zero T
	return c.finish(zero, err)
}

func (c *ResponseCollector[T]) finish(val T, err error) bool {
	c.mu.Lock()
	if c.completed {
		c.mu.Unlock()
		return false
	}

	c.completed = true
	c.val = val
	c.err = err
	callbacks := c.callbacks
	c.callbacks = nil
	close(c.done)
	c.mu.Unlock()

	// 回调在完成方的 goroutine 中同步执行，且不持有锁。
	for _, cb := range callbacks {
		cb(val, err)
	}
	return true
}

// OnComplete 注册完成回调。
// 如果收集器已经完成，回调会在当前 goroutine 中立即执行。
func (c *ResponseCollector[T]) OnComplete(fn func(val T, err error)) {
	c.mu.Lock()
	if !c.completed {
		c.callbacks = append(c.callbacks, fn)
		c.mu.Unlock()
		return
	}

	val, err := c.val, c.err
	c.mu.Unlock()
	fn(val, err)
}

// Wait 阻塞直到收集器完成、超过截止时间或 ctx 结束。
func (c *ResponseCollector[T]) Wait(ctx context.Context) (T, error) {
	// 已完成的收集器直接返回结果，不受截止时间影响。
	select {
	case <-c.done:
		return c.result()
	default:
	}

	timer := time.NewTimer(time.Until(c.deadline))
	defer timer.Stop()

	var zero T
	select {
	case <-c.done:
		return c.result()
	case <-timer.C:
		return zero, ErrTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *ResponseCollector[T]) result() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.val, c.err
}

func (c *ResponseCollector[T]) Done() <-chan struct{} {
	return c.done
}

func (c *ResponseCollector[T]) Timeout() time.Duration {
	return c.timeout
}

func (c *ResponseCollector[T]) Deadline() time.Time {
	return c.deadline
}

// Expired 判断收集器是否已经超过截止时间且仍未完成。
func (c *ResponseCollector[T]) Expired(now time.Time) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	return !now.Before(c.deadline)
}

func New[T any](timeout time.Duration) *ResponseCollector[T] {
	return NewAt[T](time.Now(), timeout)
}

// NewAt 以 now 为起点计算截止时间。
func NewAt[T any](now time.Time, timeout time.Duration) *ResponseCollector[T] {
	return &ResponseCollector[T]{
		timeout:  timeout,
		deadline: now.Add(timeout),
		done:     make(chan struct{}),
	}
}
