// Package global is an explicitly managed single-instance registry.
//
// Each Go type owns one slot. New* installs an instance built from arbitrary
// constructor arguments, Get reads it without constructing, and Delete
// destroys it. Nothing here is built implicitly and nothing is locked: the
// caller sequences New, Get and Delete (for example during subsystem startup
// and shutdown). Concurrent New calls for the same type race, and must be
// serialized by the caller. Only the lookup of a type's slot is safe for
// concurrent use.
//
// New on an occupied slot is a lifecycle bug and panics instead of replacing
// the live instance.
package global

import (
	"io"
	"reflect"
	"sync"

	"SingletonLab/pkg/errors"
	"SingletonLab/pkg/metrics"

	"github.com/sirupsen/logrus"
)

// Registry 按类型划分槽位的注册表
type Registry struct {
	slots sync.Map // reflect.Type -> *Slot[T]
}

var std = NewRegistry()

// NewRegistry 创建独立的注册表，适合通过依赖注入传递而不是使用进程级注册表
func NewRegistry() *Registry {
	return &Registry{}
}

// Default 返回进程级注册表
func Default() *Registry {
	return std
}

// Slot 单个类型的槽位。读写不加锁。
type Slot[T any] struct {
	name string
	ptr  *T
}

// SlotOf 返回 r 中类型 T 的槽位，同一类型总是返回同一个槽位
func SlotOf[T any](r *Registry) *Slot[T] {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if s, ok := r.slots.Load(key); ok {
		return s.(*Slot[T])
	}
	s, _ := r.slots.LoadOrStore(key, &Slot[T]{name: key.String()})
	return s.(*Slot[T])
}

// Name 类型名
func (s *Slot[T]) Name() string {
	return s.name
}

// Get 返回当前实例，不存在时返回 nil
func (s *Slot[T]) Get() *T {
	return s.ptr
}

// New 调用 ctor 并安装结果。槽位已被占用时 panic。
func (s *Slot[T]) New(ctor func() *T) {
	if s.ptr != nil {
		metrics.Global().Violation(s.name)
		logrus.WithField("type", s.name).Error("New called while an instance exists")
		panic(errors.ErrLifecycleViolation.WithContext("type", s.name))
	}
	if ctor == nil {
		panic(errors.ErrNilConstructor.WithContext("type", s.name))
	}
	s.Install(ctor())
}

// Install 安装调用方已经构造好的实例，约束与 New 相同
func (s *Slot[T]) Install(v *T) {
	if s.ptr != nil {
		metrics.Global().Violation(s.name)
		logrus.WithField("type", s.name).Error("Install called while an instance exists")
		panic(errors.ErrLifecycleViolation.WithContext("type", s.name))
	}
	if v == nil {
		panic(errors.WithCodef(errors.CodeConstructFailed, "global: constructor for %s returned nil", s.name))
	}
	s.ptr = v
	metrics.Global().Constructed(metrics.KindGlobal, s.name, 0)
	logrus.WithField("type", s.name).Debug("New")
}

// Delete 销毁当前实例并清空槽位，槽位为空时什么也不做。
// 实例实现 io.Closer 时调用 Close，其错误被返回。
func (s *Slot[T]) Delete() error {
	v := s.ptr
	if v == nil {
		return nil
	}
	s.ptr = nil

	var err error
	if c, ok := any(v).(io.Closer); ok {
		err = c.Close()
	}
	metrics.Global().Destroyed(metrics.KindGlobal, s.name)
	entry := logrus.WithField("type", s.name)
	if err != nil {
		entry.WithError(err).Warn("Delete: close failed")
	} else {
		entry.Debug("Delete")
	}
	return err
}

// Get 返回进程级注册表中 T 的实例，不存在时返回 nil
func Get[T any]() *T {
	return SlotOf[T](std).Get()
}

// New 在进程级注册表中构造 T
func New[T any](ctor func() *T) {
	SlotOf[T](std).New(ctor)
}

// New1 转发一个构造参数
func New1[T, A any](ctor func(A) *T, a A) {
	SlotOf[T](std).New(func() *T { return ctor(a) })
}

// New2 转发两个构造参数
func New2[T, A, B any](ctor func(A, B) *T, a A, b B) {
	SlotOf[T](std).New(func() *T { return ctor(a, b) })
}

// New3 转发三个构造参数
func New3[T, A, B, C any](ctor func(A, B, C) *T, a A, b B, c C) {
	SlotOf[T](std).New(func() *T { return ctor(a, b, c) })
}

// Install 在进程级注册表中安装已构造的实例
func Install[T any](v *T) {
	SlotOf[T](std).Install(v)
}

// Delete 销毁进程级注册表中 T 的实例
func Delete[T any]() error {
	return SlotOf[T](std).Delete()
}
