// Package loggertest содержит логгер для тестов, сохраняющий записанные сообщения в памяти.
package loggertest

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bagdasarian/campus-teams/internal/logger"
)

// NewObserved возвращает логгер уровня debug и журнал всех записанных им сообщений
func NewObserved() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}
