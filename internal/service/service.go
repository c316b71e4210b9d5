// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/nathan-osman/go-sunrise"
	"github.com/paulmach/orb/geojson"
	"github.com/vorlif/spreak"

	"github.com/wneessen/waybar-location/internal/config"
	"github.com/wneessen/waybar-location/internal/geocode"
	"github.com/wneessen/waybar-location/internal/location"
	"github.com/wneessen/waybar-location/internal/location/provider/geolocation_file"
	"github.com/wneessen/waybar-location/internal/logger"
	"github.com/wneessen/waybar-location/internal/permission"
	"github.com/wneessen/waybar-location/internal/presenter"
)

const (
	OutputJobName = "location_output_job"
)

type outputData struct {
	Text    string                     `json:"text"`
	Alt     string                     `json:"alt"`
	Tooltip string                     `json:"tooltip"`
	Class   string                     `json:"class"`
	Map     *geojson.FeatureCollection `json:"map,omitempty"`
}

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	presenter *presenter.Presenter
	scheduler gocron.Scheduler
	screen    *presenter.Screen
	t         *spreak.Localizer

	gate     *permission.Gate
	locator  location.Provider
	resolver *geocode.Resolver

	input      io.Reader
	output     io.Writer
	outputLock sync.Mutex
	SignalSrc  signalSource

	displayAltLock sync.RWMutex
	displayAltText bool
}

func New(conf *config.Config, log *logger.Logger, t *spreak.Localizer) (*Service, error) {
	if conf == nil {
		return nil, errors.New("config is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if t == nil {
		return nil, errors.New("localizer is required")
	}

	pres, err := presenter.New(conf, t)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}

	service := &Service{
		config:    conf,
		logger:    log,
		presenter: pres,
		screen:    presenter.NewScreen(conf.Map.Zoom),
		t:         t,
		input:     os.Stdin,
		output:    os.Stdout,
		SignalSrc: stdLibSignalSource{},
	}
	return service, nil
}

func (s *Service) Run(ctx context.Context) error {
	if err := s.initPipeline(); err != nil {
		return err
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.scheduler = scheduler

	// Start scheduled jobs
	if err = s.createScheduledJob(ctx, s.config.Intervals.Output, s.printLocation, OutputJobName); err != nil {
		return errors.Join(err, s.scheduler.Shutdown())
	}
	s.scheduler.Start()

	// Signal handling
	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, signalToggleAlt, signalLogState)
	defer s.SignalSrc.Stop(sigChan)
	go s.HandleSignals(ctx, sigChan)

	// Initial state, then the permission and location pipeline
	s.printLocation(ctx)
	go s.acquireLocation(ctx)
	if s.input != nil {
		go s.readTaps(ctx, s.input)
	}

	// Wait for the context to cancel
	<-ctx.Done()
	return s.scheduler.Shutdown()
}

// initPipeline creates the permission gate, the location provider and the address resolver
// unless they have been set already.
func (s *Service) initPipeline() error {
	if s.gate == nil {
		backend, err := s.selectPermissionBackend()
		if err != nil {
			return fmt.Errorf("failed to create permission backend: %w", err)
		}
		gate, err := permission.NewGate(backend, s.logger)
		if err != nil {
			return fmt.Errorf("failed to create permission gate: %w", err)
		}
		s.gate = gate
	}

	if s.locator == nil {
		providers, err := s.selectLocationProviders()
		if err != nil {
			return fmt.Errorf("failed to create location provider: %w", err)
		}
		fused, err := location.NewFused(s.logger, providers...)
		if err != nil {
			return fmt.Errorf("failed to create location provider: %w", err)
		}
		s.locator = fused
	}

	if s.resolver == nil {
		coder, err := s.selectGeocodeProvider(s.config, s.logger, s.t.Language())
		if err != nil {
			return fmt.Errorf("failed to create geocode provider: %w", err)
		}
		resolver, err := geocode.NewResolver(coder, s.logger)
		if err != nil {
			return fmt.Errorf("failed to create address resolver: %w", err)
		}
		s.resolver = resolver
	}

	return nil
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// acquireLocation activates the permission gate and, once granted, reads the last known location
// a single time and resolves its address. Without a fix the screen keeps waiting.
func (s *Service) acquireLocation(ctx context.Context) {
	state := s.gate.Activate(ctx)
	s.screen.SetPermission(state == permission.StateGranted)
	s.printLocation(ctx)
	if state != permission.StateGranted {
		s.logger.Info("location permission not granted", slog.String("state", state.String()))
		return
	}

	fix, err := s.locator.LastKnown(ctx)
	if err != nil {
		if errors.Is(err, location.ErrNoFix) {
			s.logger.Info("no last known location available")
			return
		}
		s.logger.Error("failed to fetch last known location", logger.Err(err))
		return
	}
	s.logger.Debug("received last known location", slog.Float64("lat", fix.Lat),
		slog.Float64("lon", fix.Lon), slog.String("source", fix.Source))

	generation, err := s.screen.SetLocation(fix)
	if err != nil {
		s.logger.Error("failed to apply location", logger.Err(err), slog.String("source", fix.Source))
		return
	}
	s.printLocation(ctx)

	select {
	case <-ctx.Done():
		return
	case line := <-s.resolver.Resolve(ctx, fix.Coordinate):
		if !s.screen.SetAddress(generation, line) {
			s.logger.Debug("dropping address of outdated location", slog.String("address", line))
			return
		}
		s.logger.Debug("address successfully resolved", slog.String("address", line))
	}
	s.printLocation(ctx)
}

// readTaps reads "latitude,longitude" lines and applies each one as a map tap.
func (s *Service) readTaps(ctx context.Context, input io.Reader) {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.applyTap(ctx, line)
	}
	if err := scanner.Err(); err != nil {
		s.logger.Error("failed to read map taps", logger.Err(err))
	}
}

func (s *Service) applyTap(ctx context.Context, line string) {
	coord, err := geolocation_file.ParseCoordinate(line)
	if err != nil {
		s.logger.Warn("ignoring invalid map tap", slog.String("tap", line), logger.Err(err))
		return
	}
	marker, err := s.screen.Tap(coord)
	if err != nil {
		s.logger.Debug("map tap rejected", slog.String("tap", line), logger.Err(err))
		return
	}
	s.logger.Debug("marker added", slog.String("id", marker.ID.String()),
		slog.String("position", marker.Position.String()))
	s.printLocation(ctx)
}

// printLocation renders the current screen and writes it as a single JSON line to the output.
func (s *Service) printLocation(context.Context) {
	view := s.screen.View()

	var rise, set time.Time
	if view.Located {
		now := time.Now()
		rise, set = sunrise.SunriseSunset(view.Fix.Lat, view.Fix.Lon, now.Year(), now.Month(), now.Day())
	}

	rendered, err := s.presenter.Render(s.presenter.BuildContext(view, rise, set))
	if err != nil {
		s.logger.Error("failed to render location output", logger.Err(err))
		return
	}

	s.displayAltLock.RLock()
	text, tooltip := rendered["text"], rendered["tooltip"]
	if s.displayAltText {
		text, tooltip = rendered["alt_text"], rendered["alt_tooltip"]
	}
	s.displayAltLock.RUnlock()

	output := outputData{
		Text:    text,
		Alt:     view.Class(),
		Tooltip: tooltip,
		Class:   view.Class(),
	}
	if s.config.Map.EmitGeoJSON {
		output.Map = s.presenter.Map(view)
	}

	s.outputLock.Lock()
	defer s.outputLock.Unlock()
	if err = json.NewEncoder(s.output).Encode(output); err != nil {
		s.logger.Error("failed to encode location output", logger.Err(err))
	}
}
