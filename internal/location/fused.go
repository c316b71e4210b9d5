// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wneessen/waybar-location/internal/logger"
)

// Fused asks all of its providers for their last known location and hands out the best one.
type Fused struct {
	logger    *logger.Logger
	providers []Provider
}

// NewFused returns a Fused provider. A logger is required.
func NewFused(log *logger.Logger, providers ...Provider) (*Fused, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if len(providers) == 0 {
		return nil, errors.New("at least one location provider is required")
	}
	return &Fused{logger: log, providers: providers}, nil
}

func (f *Fused) Name() string {
	return "fused"
}

// LastKnown queries all providers concurrently. Failing providers are skipped. If no provider
// returns a valid fix, ErrNoFix is returned. A cancelled or expired context aborts the lookup
// with the context error.
func (f *Fused) LastKnown(ctx context.Context) (Fix, error) {
	var mu sync.Mutex
	var best Fix
	found := false

	group, groupCtx := errgroup.WithContext(ctx)
	for _, provider := range f.providers {
		group.Go(func() error {
			fix, err := f.safeLastKnown(groupCtx, provider)
			if err != nil {
				if ctxErr := groupCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				f.logger.Debug("location provider returned no fix", slog.String("provider", provider.Name()),
					logger.Err(err))
				return nil
			}
			if !fix.Valid() {
				f.logger.Debug("location provider returned invalid coordinates",
					slog.String("provider", provider.Name()), slog.String("coordinate", fix.String()))
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if !found || fix.BetterThan(best) {
				best = fix
				found = true
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Fix{}, err
	}
	if err := ctx.Err(); err != nil {
		return Fix{}, err
	}
	if !found {
		return Fix{}, ErrNoFix
	}
	f.logger.Debug("fused location fix selected", slog.String("source", best.Source),
		slog.String("coordinate", best.String()), slog.Float64("accuracy", best.AccuracyMeters))
	return best, nil
}

// safeLastKnown invokes LastKnown on the provider and recovers from a panicking provider.
func (f *Fused) safeLastKnown(ctx context.Context, provider Provider) (fix Fix, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("location provider %s panicked: %v", provider.Name(), r)
		}
	}()
	fix, err = provider.LastKnown(ctx)
	if err == nil && fix.Source == "" {
		fix.Source = provider.Name()
	}
	return fix, err
}
