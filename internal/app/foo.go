package app

import (
	"SingletonLab/pkg/logger"

	"go.uber.org/zap"
)

// Foo 由 global 注册表显式管理
type Foo struct {
	A, B int
}

// NewFoo 构造函数，可通过 global.New2 转发参数
func NewFoo(a, b int) *Foo {
	logger.Info("constructor called", zap.String("type", "Foo"), zap.Int("a", a), zap.Int("b", b))
	return &Foo{A: a, B: b}
}

func (f *Foo) Close() error {
	logger.Info("destructor called", zap.String("type", "Foo"))
	return nil
}
