// Package teardown runs destroyers in reverse order of registration, once.
//
// Go has no static destructors. Holders in pkg/lazy push a destroyer when an
// instance finishes construction, and the program runs the stack on exit, so
// instances are destroyed in reverse order of completed initialization.
package teardown

import (
	"context"
	"sync"

	"SingletonLab/pkg/errors"
	"SingletonLab/pkg/logger"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Func 析构函数
type Func func() error

type entry struct {
	name string
	fn   Func
}

// Stack 后进先出的析构栈
type Stack struct {
	mu      sync.Mutex
	entries []entry
	done    bool
}

var defaultStack = New()

// New 创建一个新的析构栈
func New() *Stack {
	return &Stack{}
}

// Default 返回进程级析构栈
func Default() *Stack {
	return defaultStack
}

// Push 注册析构函数。栈已执行过时立即执行 fn，以保证实例总会被销毁。
func (s *Stack) Push(name string, fn Func) error {
	if fn == nil {
		return nil
	}
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		logger.Warn("teardown already ran, destroying immediately", zap.String("name", name))
		return fn()
	}
	s.entries = append(s.entries, entry{name: name, fn: fn})
	s.mu.Unlock()
	return nil
}

// Len 返回尚未执行的析构函数数量
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Done 是否已经执行过
func (s *Stack) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Run 逆序执行所有析构函数，只生效一次。
// ctx 结束后剩余的析构函数被跳过，并计入返回的错误。
func (s *Stack) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	entries := s.entries
	s.entries = nil
	s.mu.Unlock()

	var err error
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = multierr.Append(err, errors.Wrapf(ctxErr, "teardown: skipped %s", e.name))
			continue
		}
		if fnErr := e.fn(); fnErr != nil {
			logger.Warn("destroyer failed", zap.String("name", e.name), zap.Error(fnErr))
			err = multierr.Append(err, errors.Wrapf(fnErr, "teardown: %s", e.name))
			continue
		}
		logger.Debug("destroyed", zap.String("name", e.name))
	}
	return err
}

// Push 注册到进程级析构栈
func Push(name string, fn Func) error {
	return defaultStack.Push(name, fn)
}

// Run 执行进程级析构栈
func Run(ctx context.Context) error {
	return defaultStack.Run(ctx)
}
