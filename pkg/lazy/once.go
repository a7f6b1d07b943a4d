package lazy

import (
	"sync"

	"go.uber.org/atomic"
)

// Once 一次性初始化原语。与 sync.Once 不同，f 返回错误或 panic 时不会标记完成，
// 下一次 Do 会重新执行 f。并发的首次调用者会阻塞直到正在执行的 f 结束。
type Once struct {
	done atomic.Bool
	m    sync.Mutex
}

// Do 执行 f，成功后后续调用直接返回 nil
func (o *Once) Do(f func() error) error {
	if o.done.Load() {
		return nil
	}
	return o.doSlow(f)
}

func (o *Once) doSlow(f func() error) error {
	o.m.Lock()
	defer o.m.Unlock()
	if o.done.Load() {
		return nil
	}
	if err := f(); err != nil {
		return err
	}
	o.done.Store(true)
	return nil
}

// Done 是否已成功执行
func (o *Once) Done() bool {
	return o.done.Load()
}
