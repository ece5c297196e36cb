package workflow

import (
	"context"
	"fmt"
	"log"
	"sort"

	"ai-menu-assistant/internal/shared"
)

// DishStats prints how often each dish appeared on the menu over the last
// N days, most frequent first. Days without diet coverage are skipped.
func (r *Runner) DishStats(ctx context.Context, days int) error {
	diets, err := r.client.Diets(ctx)
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	names := make(map[string]string)
	for i := 0; i < days; i++ {
		date := shared.DateOf(r.now().AddDate(0, 0, -i))
		diet := diets.ForDate(date.Time)
		if diet == nil {
			log.Printf("No diet active for %s", date)
			continue
		}

		r.status(fmt.Sprintf("Fetching menu for %s", date))
		day, err := r.client.DayItems(ctx, diet.ID, date)
		if err != nil {
			r.clearStatus()
			return err
		}
		for _, item := range day.DietElements.Members {
			for _, option := range item.Options {
				if _, seen := counts[option.Dish.ID]; !seen {
					names[option.Dish.ID] = option.Name
				}
				counts[option.Dish.ID]++
			}
		}
	}
	r.clearStatus()

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return names[ids[i]] < names[ids[j]]
	})

	for _, id := range ids {
		fmt.Printf("%s [id=%s] : %d\n", names[id], id, counts[id])
	}
	return nil
}
