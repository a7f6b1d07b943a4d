package app

import (
	"SingletonLab/pkg/handle"
	"SingletonLab/pkg/lazy"
	"SingletonLab/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Session 双检锁单例，调用方持有共享句柄
type Session struct {
	ID       uuid.UUID
	requests atomic.Int64
}

// Touch 记录一次使用，返回累计次数
func (s *Session) Touch() int64 {
	return s.requests.Inc()
}

func (s *Session) Close() error {
	logger.Info("destructor called", zap.String("type", "Session"), zap.Stringer("id", s.ID),
		zap.Int64("requests", s.requests.Load()))
	return nil
}

var session = lazy.NewDoubleChecked("session", func() (*Session, error) {
	s := &Session{ID: uuid.New()}
	logger.Info("constructor called", zap.String("type", "Session"), zap.Stringer("id", s.ID))
	return s, nil
})

// AcquireSession 返回共享句柄，用完后 Release
func AcquireSession() (*handle.Shared[Session], error) {
	return session.Get()
}
