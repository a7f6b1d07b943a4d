// Package lazy holds single instances that are built on first use.
//
// DoubleChecked hands out reference-counted handles and serializes the first
// construction with a mutex behind an atomic fast path. Static relies on a
// one-time-initialization primitive and is the preferred holder. Base builds
// on Static, allows one holder per type and gates the instance's constructor
// with a Token[T] only it can mint.
//
// A constructor that fails (returns an error or panics) installs nothing. The
// next accessor call runs the constructor again from scratch.
package lazy

import (
	"io"
	"time"

	"SingletonLab/pkg/errors"
	"SingletonLab/pkg/logger"
	"SingletonLab/pkg/metrics"
	"SingletonLab/pkg/teardown"

	"go.uber.org/zap"
)

// NoCopy 嵌入为 `_ lazy.NoCopy`，go vet copylocks 会拒绝包含它的值被复制
type NoCopy struct{}

func (*NoCopy) Lock()   {}
func (*NoCopy) Unlock() {}

type options struct {
	stack *teardown.Stack
}

// Option 持有者选项
type Option func(*options)

// WithTeardown 指定析构栈，默认使用 teardown.Default()
func WithTeardown(s *teardown.Stack) Option {
	return func(o *options) {
		o.stack = s
	}
}

func buildOptions(opts []Option) options {
	o := options{stack: teardown.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.stack == nil {
		o.stack = teardown.Default()
	}
	return o
}

// build 运行构造函数并上报结果。panic 会在记录后继续抛出。
func build[T any](kind, name string, ctor func() (*T, error)) (v *T, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.Global().ConstructFailed(kind, name)
			logger.Error("constructor panicked", zap.String("kind", kind), zap.String("name", name), zap.Any("panic", r))
			panic(r)
		}
	}()

	v, err = ctor()
	if err == nil && v == nil {
		err = errors.New("constructor returned nil")
	}
	if err != nil {
		metrics.Global().ConstructFailed(kind, name)
		logger.Warn("constructor failed", zap.String("kind", kind), zap.String("name", name), zap.Error(err))
		return nil, errors.ConstructFailed(name, err)
	}

	metrics.Global().Constructed(kind, name, time.Since(start))
	logger.Debug("constructor called", zap.String("kind", kind), zap.String("name", name))
	return v, nil
}

// destroy 调用实例的 Close（如果有）
func destroy[T any](kind, name string, v *T) error {
	var err error
	if c, ok := any(v).(io.Closer); ok {
		err = c.Close()
	}
	metrics.Global().Destroyed(kind, name)
	logger.Debug("destructor called", zap.String("kind", kind), zap.String("name", name), zap.Error(err))
	return err
}
