// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

const (
	signalToggleAlt = syscall.SIGUSR1
	signalLogState  = syscall.SIGUSR2
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// stdLibSignalSource is the production implementation.
type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals toggles the alternative display on USR1 and logs the current screen state on USR2.
func (s *Service) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case signalToggleAlt:
				s.displayAltLock.Lock()
				s.displayAltText = !s.displayAltText
				s.displayAltLock.Unlock()
				s.printLocation(ctx)
			case signalLogState:
				view := s.screen.View()
				s.logger.Info("current location state", slog.String("class", view.Class()),
					slog.String("address", view.Address), slog.Float64("latitude", view.Fix.Lat),
					slog.Float64("longitude", view.Fix.Lon), slog.Int("markers", len(view.Markers)))
			}
		}
	}
}
