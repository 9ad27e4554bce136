package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ignatzorin/asset-escrow/internal/logger"
)

// Logger интерфейс для логирования ошибок
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go func() {
		defer rh.handlePanic("Panic in goroutine")
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer rh.handlePanic("Panic in goroutine (with context)")
		fn(ctx)
	}()
}

func (rh *RecoveryHandler) handlePanic(prefix string) {
	if r := recover(); r != nil {
		rh.logger.Errorf("%s: %v\nStack trace:\n%s", prefix, r, debug.Stack())
	}
}

// DefaultRecoveryHandler пишет паники в общий logrus-логгер.
var DefaultRecoveryHandler = NewRecoveryHandler(logger.RecoveryLogger())

// SafeGo - упрощенная функция для запуска безопасной горутины
func SafeGo(fn func()) {
	DefaultRecoveryHandler.SafeGo(fn)
}

// SafeGoWithContext - упрощенная функция для запуска безопасной горутины с контекстом
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, fn)
}
