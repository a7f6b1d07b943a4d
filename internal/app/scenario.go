package app

import (
	"fmt"
	"io"
	"sync"

	"SingletonLab/pkg/global"
	"SingletonLab/pkg/logger"

	"go.uber.org/zap"
)

// RunDerived 获取两次 Derived，输出两次是否为同一实例
func RunDerived(w io.Writer) bool {
	first := DerivedInstance()
	second := DerivedInstance()
	same := first == second
	fmt.Fprintf(w, "instance1=%s\ninstance2=%s\nsame=%t\n", first.ID, second.ID, same)
	return same
}

// RaceResult 并发获取的结果
type RaceResult struct {
	Workers  int
	Distinct int
	Requests int64
}

// RunRace 让 workers 个 goroutine 同时首次获取 Derived 和 Session
func RunRace(w io.Writer, workers int) (RaceResult, error) {
	errs := make([]error, workers)
	distinct := raceFirstAccess(workers, func(i int) *Derived {
		h, err := AcquireSession()
		if err != nil {
			errs[i] = err
		} else {
			h.Get().Touch()
			h.Release()
		}
		return DerivedInstance()
	})
	for _, err := range errs {
		if err != nil {
			return RaceResult{}, err
		}
	}

	h, err := AcquireSession()
	if err != nil {
		return RaceResult{}, err
	}
	defer h.Release()

	res := RaceResult{
		Workers:  workers,
		Distinct: distinct,
		Requests: h.Get().Touch() - 1,
	}
	fmt.Fprintf(w, "workers=%d distinct_derived=%d session=%s session_requests=%d\n",
		res.Workers, res.Distinct, h.Get().ID, res.Requests)
	return res, nil
}

// raceFirstAccess 放开 start 后所有 goroutine 同时调用 get，返回拿到的不同实例数
func raceFirstAccess[T any](workers int, get func(i int) *T) int {
	start := make(chan struct{})
	got := make([]*T, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = get(i)
		}(i)
	}
	close(start)
	wg.Wait()

	distinct := make(map[*T]struct{})
	for _, v := range got {
		distinct[v] = struct{}{}
	}
	return len(distinct)
}

// RunGlobal New(1,2) -> Get -> Delete -> Get -> Delete
func RunGlobal(w io.Writer) error {
	global.New2(NewFoo, 1, 2)
	foo := global.Get[Foo]()
	fmt.Fprintf(w, "after New: a=%d b=%d\n", foo.A, foo.B)

	if err := global.Delete[Foo](); err != nil {
		return err
	}
	fmt.Fprintf(w, "after Delete: present=%t\n", global.Get[Foo]() != nil)

	if err := global.Delete[Foo](); err != nil {
		return err
	}
	logger.Debug("second Delete was a no-op", zap.String("type", "Foo"))
	return nil
}
