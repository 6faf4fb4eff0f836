package logx

import (
	"context"

	"github.com/rs/zerolog"
)

// Adapter implements modular.Logger on top of zerolog.
type Adapter struct {
	logger zerolog.Logger
}

// NewAdapter wraps logger.
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

func (a *Adapter) Debug(ctx context.Context, msg string, keyvals ...interface{}) {
	a.logger.Debug().Ctx(ctx).Fields(keyvals).Msg(msg)
}

func (a *Adapter) Info(ctx context.Context, msg string, keyvals ...interface{}) {
	a.logger.Info().Ctx(ctx).Fields(keyvals).Msg(msg)
}

func (a *Adapter) Error(ctx context.Context, msg string, keyvals ...interface{}) {
	a.logger.Error().Ctx(ctx).Fields(keyvals).Msg(msg)
}
