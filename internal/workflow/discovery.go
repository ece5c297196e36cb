package workflow

import (
	"context"
	"fmt"
	"sort"

	"ai-menu-assistant/internal/dietapi"
	"ai-menu-assistant/internal/shared"
)

// discoveryWindowDays is how far ahead of the day cursor the calendar is
// scanned for selectable days.
const discoveryWindowDays = 14

// OpenDays returns the calendar days currently open for selection, in
// ascending order without duplicates. The window starts at the stored day
// cursor (or now, when no cursor exists) and spans 14 days forward; every
// diet overlapping the window contributes its open days. An empty result is
// the normal "nothing to do" outcome, not an error.
func (r *Runner) OpenDays(ctx context.Context, diets *dietapi.DietList) ([]shared.Date, error) {
	snapshot, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	start := r.now()
	if snapshot.LastDaySelected != nil {
		start = snapshot.LastDaySelected.Time
	}
	end := start.AddDate(0, 0, discoveryWindowDays)

	seen := make(map[string]bool)
	var days []shared.Date
	for _, diet := range diets.InRange(start, end) {
		r.status(fmt.Sprintf("Fetching calendar for diet #%d", diet.ID))
		calendar, err := r.client.Calendar(ctx, diet.ID, shared.DateOf(start), shared.DateOf(end))
		if err != nil {
			return nil, err
		}
		for key, day := range calendar.Days {
			if day.State != dietapi.StateAvailableToSelect || seen[key] {
				continue
			}
			date, err := shared.ParseDate(key)
			if err != nil {
				return nil, fmt.Errorf("invalid calendar date %q: %w", key, err)
			}
			seen[key] = true
			days = append(days, date)
		}
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}
