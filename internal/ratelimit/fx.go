package ratelimit

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("ratelimit",
	fx.Provide(NewLimiter),
	fx.Provide(NewLocker),
	fx.Invoke(func(lc fx.Lifecycle, l *Limiter) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return l.Close()
			},
		})
	}),
)
