package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/shiftboard-backend/internal/logger"
)

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	log logrus.FieldLogger
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(log logrus.FieldLogger) *RecoveryHandler {
	return &RecoveryHandler{log: log}
}

func (rh *RecoveryHandler) logger() logrus.FieldLogger {
	if rh.log != nil {
		return rh.log
	}
	return logger.Log
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(name string, fn func()) {
	go func() {
		defer rh.recover(name)
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go func() {
		defer rh.recover(name)
		fn(ctx)
	}()
}

func (rh *RecoveryHandler) recover(name string) {
	if r := recover(); r != nil {
		rh.logger().WithFields(logrus.Fields{
			"goroutine": name,
			"panic":     r,
			"stack":     string(debug.Stack()),
		}).Error("panic в горутине")
	}
}

// DefaultRecoveryHandler пишет в глобальный logger.Log
var DefaultRecoveryHandler = NewRecoveryHandler(nil)

func SafeGo(name string, fn func()) {
	DefaultRecoveryHandler.SafeGo(name, fn)
}

func SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, name, fn)
}
