package system

import (
	"fmt"
	"time"

	"github.com/averyhall/tend/internal/cli"
	"github.com/averyhall/tend/internal/timeutil"
)

// SweepCmd runs the daily auto-reset check explicitly, for cron-style
// setups where no other command runs early in the day.
type SweepCmd struct{}

func (c *SweepCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	now, err := timeutil.NowInTimezone(settings.Timezone)
	if err != nil {
		return err
	}

	result, err := ctx.Sweeper.MaybeReset(now, settings)
	if err != nil {
		return err
	}
	if !result.DidReset {
		fmt.Println("No reset due.")
		return nil
	}
	fmt.Printf("Reset performed at %s: %d habit(s), %d medication schedule(s).\n",
		result.ResetAt.Format(time.RFC3339), result.Habits, result.Medications)
	return nil
}
