package app

import (
	"time"

	"SingletonLab/pkg/lazy"
	"SingletonLab/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Derived 通过 lazy.Base 成为单例，包外只能经由 DerivedInstance 获取
type Derived struct {
	_ lazy.NoCopy

	ID        uuid.UUID
	CreatedAt time.Time
}

// derivedBuilt 构造函数实际执行的次数
var derivedBuilt atomic.Int32

// newDerived 只有 Base[Derived] 能传入有效的 Token
func newDerived(tok lazy.Token[Derived]) (*Derived, error) {
	if err := tok.Verify(); err != nil {
		return nil, err
	}
	derivedBuilt.Inc()
	d := &Derived{ID: uuid.New(), CreatedAt: time.Now()}
	logger.Info("constructor called", zap.String("type", "Derived"), zap.Stringer("id", d.ID))
	return d, nil
}

// Close 在进程析构时调用
func (d *Derived) Close() error {
	logger.Info("destructor called", zap.String("type", "Derived"), zap.Stringer("id", d.ID))
	return nil
}

var derived = lazy.NewBase("derived", newDerived)

// DerivedInstance 返回唯一的 Derived
func DerivedInstance() *Derived {
	return derived.MustInstance()
}
