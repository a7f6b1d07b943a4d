// Package handle provides a reference-counted shared handle. The last holder
// to release its handle destroys the value.
package handle

import (
	"SingletonLab/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// control 共享控制块
type control[T any] struct {
	id      uuid.UUID
	value   *T
	refs    atomic.Int64
	destroy func(*T)
}

// Shared 共享所有权句柄。每个 Shared 只能 Release 一次，需要更多持有者时使用 Clone。
type Shared[T any] struct {
	c        *control[T]
	released atomic.Bool
}

// New 创建引用计数为 1 的句柄，destroy 在最后一个句柄释放时调用一次
func New[T any](v *T, destroy func(*T)) *Shared[T] {
	c := &control[T]{
		id:      uuid.New(),
		value:   v,
		destroy: destroy,
	}
	c.refs.Store(1)
	return &Shared[T]{c: c}
}

// Get 返回被管理的值。句柄释放后返回 nil。
// 不持有句柄而保存该指针的调用方不受引用计数保护。
func (s *Shared[T]) Get() *T {
	if s == nil || s.released.Load() {
		return nil
	}
	return s.c.value
}

// ID 控制块标识，同一实例的所有句柄相同
func (s *Shared[T]) ID() uuid.UUID {
	return s.c.id
}

// UseCount 当前引用数
func (s *Shared[T]) UseCount() int64 {
	return s.c.refs.Load()
}

// Same 两个句柄是否共享同一个控制块
func (s *Shared[T]) Same(other *Shared[T]) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.c == other.c
}

// Clone 增加引用计数并返回新的句柄。计数已归零时返回 ErrReleased。
func (s *Shared[T]) Clone() (*Shared[T], error) {
	if s.released.Load() {
		return nil, errors.ErrReleased
	}
	for {
		n := s.c.refs.Load()
		if n <= 0 {
			return nil, errors.ErrReleased
		}
		if s.c.refs.CompareAndSwap(n, n+1) {
			return &Shared[T]{c: s.c}, nil
		}
	}
}

// Release 释放该句柄，重复调用无效果。返回值表示本次释放是否销毁了实例。
func (s *Shared[T]) Release() bool {
	if s == nil || !s.released.CompareAndSwap(false, true) {
		return false
	}
	if s.c.refs.Dec() != 0 {
		return false
	}
	if s.c.destroy != nil {
		s.c.destroy(s.c.value)
	}
	return true
}
