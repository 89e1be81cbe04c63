// Package cli holds the shared command context and helpers used by
// every command group.
package cli

import (
	"fmt"
	"time"

	"github.com/averyhall/tend/internal/backup"
	"github.com/averyhall/tend/internal/logger"
	"github.com/averyhall/tend/internal/models"
	"github.com/averyhall/tend/internal/notify"
	"github.com/averyhall/tend/internal/storage"
	"github.com/averyhall/tend/internal/sweep"
	"github.com/averyhall/tend/internal/timeutil"
)

type Context struct {
	Store     storage.Provider
	Scheduler notify.Scheduler
	Sweeper   *sweep.Sweeper
}

// Now returns the current instant in the configured timezone. Falls
// back to the system timezone when settings are unreadable or hold a
// bad zone name.
func (c *Context) Now() time.Time {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return time.Now()
	}
	now, err := timeutil.NowInTimezone(settings.Timezone)
	if err != nil {
		logger.Warn("falling back to system timezone", "error", err)
		return time.Now()
	}
	return now
}

// MaybeSweep runs the daily auto-reset opportunistically. The sweep is
// pull-based, so commands that read day-scoped state call this first;
// a failed sweep is logged and the command proceeds on yesterday's
// state rather than aborting.
func (c *Context) MaybeSweep() {
	settings, err := c.Store.GetSettings()
	if err != nil {
		logger.Warn("skipping auto-reset check", "error", err)
		return
	}
	now, err := timeutil.NowInTimezone(settings.Timezone)
	if err != nil {
		logger.Warn("skipping auto-reset check", "error", err)
		return
	}
	result, err := c.Sweeper.MaybeReset(now, settings)
	if err != nil {
		logger.Warn("auto-reset failed, will retry on next command", "error", err)
		return
	}
	if result.DidReset {
		fmt.Printf("New day! Reset %d habit(s) and refreshed %d medication schedule(s).\n\n",
			result.Habits, result.Medications)
	}
}

// PerformAutomaticBackup creates a backup without interrupting the
// user's workflow on failure.
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("automatic backup failed", "error", err)
	}
}

// Settings loads settings with defaults applied for any missing keys.
func (c *Context) Settings() (models.Settings, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}
