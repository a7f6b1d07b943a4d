package lazy

import (
	"reflect"
	"sync"

	"SingletonLab/pkg/errors"
	"SingletonLab/pkg/logger"
	"SingletonLab/pkg/metrics"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Token 类型 T 的构造凭证。只有 Base[T] 在执行构造函数期间能铸造有效的 Token[T]，
// 零值 Token 以及构造结束后保留下来的 Token 都无法通过 Verify。
// Token[A] 与 Token[B] 之间不能相互转换，为其他类型铸造的凭证无法用来构造 T。
type Token[T any] struct {
	m *mint[T]
}

type mint[T any] struct {
	live atomic.Bool
}

// Verify 派生类型的构造函数应首先调用，失败时拒绝构造
func (t Token[T]) Verify() error {
	if t.m == nil || !t.m.live.Load() {
		return errors.ErrForgedToken
	}
	return nil
}

// Base 通用单例基座。每个类型 T 在进程内只能有一个 Base[T]，
// T 的构造函数接收 Token[T]，且应当不导出，这样除 Base 外没有调用方能构造 T。
//
//	type Derived struct {
//		_ lazy.NoCopy
//	}
//
//	func newDerived(tok lazy.Token[Derived]) (*Derived, error) {
//		if err := tok.Verify(); err != nil {
//			return nil, err
//		}
//		return &Derived{}, nil
//	}
//
//	var derived = lazy.NewBase("derived", newDerived)
type Base[T any] struct {
	_ NoCopy

	static *Static[T]
}

var bases sync.Map // reflect.Type -> *Base[T]

// NewBase 为类型 T 注册基座，构造推迟到第一次 Instance。
// 同一个 T 注册第二个基座属于生命周期违规，直接 panic。
func NewBase[T any](name string, ctor func(Token[T]) (*T, error), opts ...Option) *Base[T] {
	if ctor == nil {
		panic(errors.ErrNilConstructor.WithContext("name", name))
	}
	b := &Base[T]{
		static: newStatic(metrics.KindBase, name, func() (*T, error) {
			m := &mint[T]{}
			m.live.Store(true)
			defer m.live.Store(false)
			return ctor(Token[T]{m: m})
		}, opts...),
	}

	key := reflect.TypeOf((*T)(nil)).Elem()
	if prev, loaded := bases.LoadOrStore(key, b); loaded {
		metrics.Global().Violation(name)
		logger.Error("base already registered for type",
			zap.String("type", key.String()),
			zap.String("name", name),
			zap.String("registered", prev.(*Base[T]).Name()))
		panic(errors.ErrLifecycleViolation.WithContext("type", key.String()))
	}
	return b
}

// Instance 返回唯一实例。构造失败时不会留下任何实例，下次调用重试。
func (b *Base[T]) Instance() (*T, error) {
	return b.static.Get()
}

// MustInstance 与 Instance 相同，失败时 panic
func (b *Base[T]) MustInstance() *T {
	return b.static.MustGet()
}

func (b *Base[T]) Name() string {
	return b.static.Name()
}

func (b *Base[T]) Loaded() bool {
	return b.static.Loaded()
}
