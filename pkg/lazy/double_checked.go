package lazy

import (
	"sync"

	"SingletonLab/pkg/errors"
	"SingletonLab/pkg/handle"
	"SingletonLab/pkg/logger"
	"SingletonLab/pkg/metrics"
	"SingletonLab/pkg/teardown"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// DoubleChecked 双检锁单例，Get 返回共享所有权句柄。
//
// 根句柄通过原子指针发布（Load 为 acquire，Store 为 release），
// 因此无锁快路径看到非 nil 指针时实例一定已经构造完成。
// 持有者自身持有一个引用，析构栈执行时释放；最后一个句柄 Release 时实例被销毁。
// 调用方如果只保存 handle.Get() 返回的裸指针而不持有句柄，其生命周期不受保护。
type DoubleChecked[T any] struct {
	_ NoCopy

	name   string
	ctor   func() (*T, error)
	root   atomic.Pointer[handle.Shared[T]]
	mu     sync.Mutex
	closed atomic.Bool
	stack  *teardown.Stack
}

// NewDoubleChecked 创建持有者，不会立即构造
func NewDoubleChecked[T any](name string, ctor func() (*T, error), opts ...Option) *DoubleChecked[T] {
	if ctor == nil {
		panic(errors.ErrNilConstructor.WithContext("name", name))
	}
	o := buildOptions(opts)
	return &DoubleChecked[T]{
		name:  name,
		ctor:  ctor,
		stack: o.stack,
	}
}

// Name 单例名
func (d *DoubleChecked[T]) Name() string {
	return d.name
}

// Get 返回指向唯一实例的新句柄，调用方用完后应 Release
func (d *DoubleChecked[T]) Get() (*handle.Shared[T], error) {
	if root := d.root.Load(); root != nil {
		if h, err := root.Clone(); err == nil {
			metrics.Global().FastPath(metrics.KindDoubleChecked, d.name)
			return h, nil
		}
	}

	h, fresh, err := d.getSlow()
	if err != nil {
		return nil, err
	}
	if fresh {
		// 在锁外注册，析构栈已执行时 Push 会立即调用 teardown
		_ = d.stack.Push(d.name, d.teardown)
	}
	return h, nil
}

func (d *DoubleChecked[T]) getSlow() (*handle.Shared[T], bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed.Load() {
		return nil, false, errors.TornDown(d.name)
	}
	// 其他 goroutine 可能在第一次检查之后完成了构造
	if root := d.root.Load(); root != nil {
		h, err := root.Clone()
		return h, false, err
	}

	v, err := build(metrics.KindDoubleChecked, d.name, d.ctor)
	if err != nil {
		return nil, false, err
	}
	root := handle.New(v, d.destroy)
	h, err := root.Clone()
	if err != nil {
		return nil, false, err
	}
	d.root.Store(root)
	return h, true, nil
}

// Loaded 实例是否已构造且持有者未析构
func (d *DoubleChecked[T]) Loaded() bool {
	return d.root.Load() != nil
}

// teardown 释放持有者的根引用，之后的 Get 返回 ErrTornDown
func (d *DoubleChecked[T]) teardown() error {
	d.mu.Lock()
	d.closed.Store(true)
	root := d.root.Swap(nil)
	d.mu.Unlock()

	if root != nil {
		root.Release()
	}
	return nil
}

func (d *DoubleChecked[T]) destroy(v *T) {
	if err := destroy(metrics.KindDoubleChecked, d.name, v); err != nil {
		logger.Warn("destroy failed", zap.String("name", d.name), zap.Error(err))
	}
}
