// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package permission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	DBusListNamesMethod  = "org.freedesktop.DBus.ListNames"
	DBusAccessDenied     = "org.freedesktop.DBus.Error.AccessDenied"
	GeoClueDest          = "org.freedesktop.GeoClue2"
	GeoClueManagerPath   = "/org/freedesktop/GeoClue2/Manager"
	GeoClueManagerIface  = "org.freedesktop.GeoClue2.Manager"
	GeoClueClientIface   = "org.freedesktop.GeoClue2.Client"
	GeoClueDefaultAgent  = "org.freedesktop.GeoClue2.DemoAgent"
	GeoClueDesktopID     = "waybar-location"
	geoClueAccuracyExact = uint32(8)
)

var ErrNoAgent = errors.New("no GeoClue agent is running on the session bus")

// bus is the subset of a D-Bus connection used by the GeoClue backend.
type bus interface {
	BusObject() dbus.BusObject
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	Close() error
}

// GeoClue asks the GeoClue2 service for location access. The authorization dialog itself is
// shown by the GeoClue agent of the desktop session.
type GeoClue struct {
	agent     string
	desktopID string

	sessionBus func(context.Context) (bus, error)
	systemBus  func(context.Context) (bus, error)
}

func NewGeoClue(agent string) *GeoClue {
	if agent == "" {
		agent = GeoClueDefaultAgent
	}
	return &GeoClue{
		agent:     agent,
		desktopID: GeoClueDesktopID,
		sessionBus: func(ctx context.Context) (bus, error) {
			return dbus.ConnectSessionBus(dbus.WithContext(ctx))
		},
		systemBus: func(ctx context.Context) (bus, error) {
			return dbus.ConnectSystemBus(dbus.WithContext(ctx))
		},
	}
}

func (g *GeoClue) Name() string {
	return "geoclue"
}

// Check reports whether GeoClue already grants location access to us, which is the case when an
// agent is running and the manager reports an available accuracy level.
func (g *GeoClue) Check(ctx context.Context) (ok bool, err error) {
	running, err := g.agentIsRunning(ctx)
	if err != nil || !running {
		return false, err
	}

	conn, err := g.systemBus(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close system bus: %w", closeErr))
		}
	}()

	manager := conn.Object(GeoClueDest, GeoClueManagerPath)
	level, err := manager.GetProperty(GeoClueManagerIface + ".AvailableAccuracyLevel")
	if err != nil {
		return false, fmt.Errorf("failed to read GeoClue accuracy level: %w", err)
	}
	var accuracy uint32
	if err = level.Store(&accuracy); err != nil {
		return false, fmt.Errorf("failed to parse GeoClue accuracy level: %w", err)
	}
	return accuracy > 0, nil
}

// Request creates a GeoClue client and starts it. Starting the client makes the agent ask the
// user for access. An access denied reply counts as a denial, not as an error.
func (g *GeoClue) Request(ctx context.Context) (ok bool, err error) {
	running, err := g.agentIsRunning(ctx)
	if err != nil {
		return false, err
	}
	if !running {
		return false, ErrNoAgent
	}

	conn, err := g.systemBus(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close system bus: %w", closeErr))
		}
	}()

	var clientPath dbus.ObjectPath
	manager := conn.Object(GeoClueDest, GeoClueManagerPath)
	if err = manager.CallWithContext(ctx, GeoClueManagerIface+".GetClient", 0).Store(&clientPath); err != nil {
		return false, fmt.Errorf("failed to get GeoClue client: %w", err)
	}

	client := conn.Object(GeoClueDest, clientPath)
	if err = client.SetProperty(GeoClueClientIface+".DesktopId", dbus.MakeVariant(g.desktopID)); err != nil {
		return false, fmt.Errorf("failed to set desktop id: %w", err)
	}
	if err = client.SetProperty(GeoClueClientIface+".RequestedAccuracyLevel",
		dbus.MakeVariant(geoClueAccuracyExact)); err != nil {
		return false, fmt.Errorf("failed to set requested accuracy level: %w", err)
	}

	if err = client.CallWithContext(ctx, GeoClueClientIface+".Start", 0).Err; err != nil {
		if isAccessDenied(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to start GeoClue client: %w", err)
	}
	if err = client.CallWithContext(ctx, GeoClueClientIface+".Stop", 0).Err; err != nil {
		return true, fmt.Errorf("failed to stop GeoClue client: %w", err)
	}

	return true, nil
}

func (g *GeoClue) agentIsRunning(ctx context.Context) (running bool, err error) {
	var list []string
	conn, err := g.sessionBus(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close session bus: %w", closeErr))
		}
	}()

	if err = conn.BusObject().CallWithContext(ctx, DBusListNamesMethod, 0).Store(&list); err != nil {
		return false, fmt.Errorf("failed to call DBus ListNames: %w", err)
	}
	for _, name := range list {
		if strings.EqualFold(name, g.agent) {
			return true, nil
		}
	}
	return false, nil
}

func isAccessDenied(err error) bool {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		return dbusErr.Name == DBusAccessDenied
	}
	var dbusErrPtr *dbus.Error
	if errors.As(err, &dbusErrPtr) {
		return dbusErrPtr.Name == DBusAccessDenied
	}
	return false
}
