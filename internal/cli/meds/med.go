package meds

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/averyhall/tend/internal/cli"
	"github.com/averyhall/tend/internal/constants"
	"github.com/averyhall/tend/internal/dose"
	"github.com/averyhall/tend/internal/logger"
	"github.com/averyhall/tend/internal/models"
	"github.com/averyhall/tend/internal/recurrence"
	"github.com/averyhall/tend/internal/sweep"
)

type MedCmd struct {
	Add        MedAddCmd        `cmd:"" help:"Add a new medication."`
	List       MedListCmd       `cmd:"" help:"List medications with today's status."`
	Take       MedTakeCmd       `cmd:"" help:"Record a dose as taken."`
	Deactivate MedDeactivateCmd `cmd:"" help:"Deactivate a medication (stops scheduling)."`
	Delete     MedDeleteCmd     `cmd:"" help:"Delete a medication (soft delete)."`
}

type MedAddCmd struct {
	Name      string `arg:"" help:"Medication name."`
	Dosage    string `help:"Dosage description, e.g. \"200 mg\"."`
	Frequency string `help:"once-daily, twice-daily, thrice-daily, twice-weekly, or thrice-weekly." default:"once-daily"`
	Remind    string `help:"Base reminder time (HH:MM)." default:"09:00"`
}

func (c *MedAddCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Store.GetMedicationByName(c.Name); err == nil {
		return fmt.Errorf("medication with name %q already exists", c.Name)
	}

	now := ctx.Now()
	med := models.Medication{
		ID:           uuid.New().String(),
		Name:         c.Name,
		Dosage:       c.Dosage,
		Frequency:    constants.MedicationFrequency(c.Frequency),
		ReminderTime: c.Remind,
		Active:       true,
		CreatedAt:    now,
	}
	if err := med.Validate(); err != nil {
		return err
	}

	// Seed the rolling schedule window; the daily sweep regenerates it.
	occurrences, err := recurrence.ExpandMedication(med.ID, med.Frequency, med.ReminderTime,
		now, constants.MedicationReminderHorizonDays)
	if err != nil {
		return err
	}
	for _, occ := range occurrences {
		med.ScheduledTimes = append(med.ScheduledTimes, occ.Time)
	}

	if err := ctx.Store.AddMedication(med); err != nil {
		return err
	}
	fmt.Printf("Added medication: %s (%s, %s)\n", med.Name, med.Dosage, med.Frequency)

	settings, err := ctx.Settings()
	if err == nil && settings.NotificationsEnabled {
		if err := ctx.Scheduler.Schedule(sweep.MedicationReminderRequests(med)); err != nil {
			fmt.Printf("Warning: could not schedule dose reminders: %v\n", err)
		}
	}
	return nil
}

type MedListCmd struct {
	Inactive bool `help:"Include deactivated medications."`
}

func (c *MedListCmd) Run(ctx *cli.Context) error {
	ctx.MaybeSweep()

	meds, err := ctx.Store.GetAllMedications(c.Inactive, false)
	if err != nil {
		return err
	}
	if len(meds) == 0 {
		fmt.Println("No medications found.")
		return nil
	}

	now := ctx.Now()
	for _, med := range meds {
		scheduled := dose.ScheduledToday(med, now)
		taken := dose.TakenToday(med, now)
		ratio := dose.CompletionRatio(med, now)

		status := fmt.Sprintf("%d/%d today", len(taken), len(scheduled))
		if len(scheduled) == 0 {
			status = "no dose due today"
		} else if ratio > 1.0 {
			status += " ⚠ over target"
		}

		line := fmt.Sprintf("%-24s %s, %s", med.Name, med.Frequency, status)
		if !med.Active {
			line += " [INACTIVE]"
		} else if next := dose.NextDoseTime(med, now); next != nil {
			line += ", next dose " + formatDoseTime(*next, now)
		}
		fmt.Println(line)
	}
	return nil
}

func formatDoseTime(t, now time.Time) string {
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format(constants.TimeFormat)
	}
	return "tomorrow " + t.Format(constants.TimeFormat)
}

type MedTakeCmd struct {
	Name string `arg:"" help:"Medication name."`
}

func (c *MedTakeCmd) Run(ctx *cli.Context) error {
	ctx.MaybeSweep()

	med, err := ctx.Store.GetMedicationByName(c.Name)
	if err != nil {
		return fmt.Errorf("medication %q not found", c.Name)
	}
	if !med.Active {
		return fmt.Errorf("medication %q is deactivated", c.Name)
	}

	now := ctx.Now()
	med.TakenTimes = append(med.TakenTimes, now)
	if err := ctx.Store.UpdateMedication(med); err != nil {
		return err
	}

	scheduled := dose.ScheduledToday(med, now)
	taken := dose.TakenToday(med, now)
	ratio := dose.CompletionRatio(med, now)

	fmt.Printf("Recorded dose of %s (%d/%d today)\n", med.Name, len(taken), len(scheduled))
	if ratio > 1.0 {
		fmt.Println("⚠ You have taken more doses than scheduled today.")
	}
	return nil
}

type MedDeactivateCmd struct {
	Name string `arg:"" help:"Medication name."`
}

func (c *MedDeactivateCmd) Run(ctx *cli.Context) error {
	med, err := ctx.Store.GetMedicationByName(c.Name)
	if err != nil {
		return fmt.Errorf("medication %q not found", c.Name)
	}

	med.Active = false
	if err := ctx.Store.UpdateMedication(med); err != nil {
		return err
	}

	cancelDoseReminders(ctx, med)
	fmt.Printf("Deactivated medication: %s\n", c.Name)
	return nil
}

type MedDeleteCmd struct {
	Name string `arg:"" help:"Medication name."`
}

func (c *MedDeleteCmd) Run(ctx *cli.Context) error {
	med, err := ctx.Store.GetMedicationByName(c.Name)
	if err != nil {
		return fmt.Errorf("medication %q not found", c.Name)
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.DeleteMedication(med.ID); err != nil {
		return err
	}

	cancelDoseReminders(ctx, med)
	fmt.Printf("Deleted medication: %s\n", c.Name)
	return nil
}

func cancelDoseReminders(ctx *cli.Context, med models.Medication) {
	for _, t := range med.ScheduledTimes {
		id := fmt.Sprintf("%s_%d", med.ID, t.Unix())
		if err := ctx.Scheduler.Cancel(id); err != nil {
			logger.Warn("failed to cancel reminder", "id", id, "error", err)
		}
	}
}
