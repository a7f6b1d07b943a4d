package lazy

import (
	"SingletonLab/pkg/errors"
	"SingletonLab/pkg/metrics"
	"SingletonLab/pkg/teardown"

	"go.uber.org/atomic"
)

// Static 延迟构造的单实例持有者，首次 Get 时构造，之后无锁返回。
// 构造成功后析构函数被压入析构栈，按构造完成的逆序销毁。
type Static[T any] struct {
	_ NoCopy

	kind   string
	name   string
	ctor   func() (*T, error)
	once   Once
	value  *T
	closed atomic.Bool
	stack  *teardown.Stack
}

// NewStatic 创建持有者，不会立即构造
func NewStatic[T any](name string, ctor func() (*T, error), opts ...Option) *Static[T] {
	return newStatic(metrics.KindStatic, name, ctor, opts...)
}

func newStatic[T any](kind, name string, ctor func() (*T, error), opts ...Option) *Static[T] {
	if ctor == nil {
		panic(errors.ErrNilConstructor.WithContext("name", name))
	}
	o := buildOptions(opts)
	return &Static[T]{
		kind:  kind,
		name:  name,
		ctor:  ctor,
		stack: o.stack,
	}
}

// Name 单例名
func (s *Static[T]) Name() string {
	return s.name
}

// Get 返回唯一实例，必要时构造。构造失败时返回错误，下次调用重试。
func (s *Static[T]) Get() (*T, error) {
	if s.once.Done() {
		// closed 在销毁前置位，观察到 Done 之后再检查
		if s.closed.Load() {
			return nil, errors.TornDown(s.name)
		}
		metrics.Global().FastPath(s.kind, s.name)
		return s.value, nil
	}
	if s.closed.Load() {
		return nil, errors.TornDown(s.name)
	}
	if err := s.once.Do(s.init); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, errors.TornDown(s.name)
	}
	return s.value, nil
}

// MustGet 与 Get 相同，失败时 panic
func (s *Static[T]) MustGet() *T {
	v, err := s.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Loaded 实例是否已构造且未销毁
func (s *Static[T]) Loaded() bool {
	return s.once.Done() && !s.closed.Load()
}

func (s *Static[T]) init() error {
	if s.closed.Load() {
		return errors.TornDown(s.name)
	}
	v, err := build(s.kind, s.name, s.ctor)
	if err != nil {
		return err
	}
	s.value = v
	// 析构栈已执行过时 Push 立即销毁实例，Get 随后返回 ErrTornDown
	_ = s.stack.Push(s.name, s.destroy)
	return nil
}

func (s *Static[T]) destroy() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return destroy(s.kind, s.name, s.value)
}
