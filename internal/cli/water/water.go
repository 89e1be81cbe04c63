package water

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/averyhall/tend/internal/cli"
	"github.com/averyhall/tend/internal/constants"
	"github.com/averyhall/tend/internal/storage"
	"github.com/averyhall/tend/internal/timeutil"
)

type WaterCmd struct {
	Log    WaterLogCmd    `cmd:"" help:"Log glasses of water." default:"1"`
	Status WaterStatusCmd `cmd:"" help:"Show today's water intake."`
}

type WaterLogCmd struct {
	Glasses int `arg:"" optional:"" help:"Glasses to log." default:"1"`
}

func (c *WaterLogCmd) Run(ctx *cli.Context) error {
	ctx.MaybeSweep()

	if c.Glasses < 1 {
		return fmt.Errorf("glasses must be at least 1")
	}

	today := timeutil.DayString(ctx.Now())
	count, err := todayCount(ctx, today)
	if err != nil {
		return err
	}
	count += c.Glasses

	if err := ctx.Store.SetState(constants.StateWaterCount, strconv.Itoa(count)); err != nil {
		return err
	}
	if err := ctx.Store.SetState(constants.StateWaterDay, today); err != nil {
		return err
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	fmt.Printf("Water: %d/%d glasses today\n", count, settings.DailyWaterGoal)
	if count >= settings.DailyWaterGoal {
		fmt.Println("💧 Daily water goal reached!")
	}
	return nil
}

type WaterStatusCmd struct{}

func (c *WaterStatusCmd) Run(ctx *cli.Context) error {
	ctx.MaybeSweep()

	today := timeutil.DayString(ctx.Now())
	count, err := todayCount(ctx, today)
	if err != nil {
		return err
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	fmt.Printf("Water: %d/%d glasses today\n", count, settings.DailyWaterGoal)
	return nil
}

// todayCount reads the stored counter, treating a counter recorded
// under a previous day as zero. The sweep normally rolls the counter
// over, but a late-configured reset time can leave a stale day behind.
func todayCount(ctx *cli.Context, today string) (int, error) {
	day, err := ctx.Store.GetState(constants.StateWaterDay)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && day != today) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	raw, err := ctx.Store.GetState(constants.StateWaterCount)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("corrupt water counter %q: %w", raw, err)
	}
	return count, nil
}
