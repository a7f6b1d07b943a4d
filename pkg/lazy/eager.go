package lazy

import (
	"reflect"
	"sync"

	"SingletonLab/pkg/metrics"
)

// Eager 在声明时立即构造的持有者，适合声明为包级变量。
// 构造顺序依赖包初始化顺序；构造失败会在初始化阶段 panic。
type Eager[T any] struct {
	_ NoCopy

	name  string
	value *T
}

// NewEager 立即构造实例并注册析构
func NewEager[T any](name string, ctor func() (*T, error), opts ...Option) *Eager[T] {
	o := buildOptions(opts)
	v, err := build(metrics.KindEager, name, ctor)
	if err != nil {
		panic(err)
	}
	_ = o.stack.Push(name, func() error {
		return destroy(metrics.KindEager, name, v)
	})
	return &Eager[T]{name: name, value: v}
}

// Get 返回实例
func (e *Eager[T]) Get() *T {
	return e.value
}

var typed sync.Map // reflect.Type -> *Static[T]

// Typed 返回类型 T 的全局零值实例，首次调用时构造。
// 适用于无需构造参数、也不要求限制构造者的类型。
func Typed[T any]() *T {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if s, ok := typed.Load(key); ok {
		return s.(*Static[T]).MustGet()
	}
	s, _ := typed.LoadOrStore(key, NewStatic(key.String(), func() (*T, error) {
		return new(T), nil
	}))
	return s.(*Static[T]).MustGet()
}
