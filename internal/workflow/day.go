package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-menu-assistant/internal/dietapi"
	"ai-menu-assistant/internal/oracle"
	"ai-menu-assistant/internal/shared"
	"ai-menu-assistant/internal/ui"
)

// historyDays is how many prior days of selections are fed to the oracle.
const historyDays = 7

const aiPrefix = " \U0001D51E\U0001D526 "

// ProcessDay runs the decision workflow for one calendar day: fetch and
// hydrate the menu, gather recent history, consult the oracle, walk the user
// through each dish item, then persist accepted adjustments and submit the
// confirmed menu diff. The day cursor advances to day+1 whenever the day
// completes without a fatal error, including when the user declines every
// change.
func (r *Runner) ProcessDay(ctx context.Context, date shared.Date, diets *dietapi.DietList) error {
	r.status("Fetching menu...")
	diet := diets.ForDate(date.Time)
	if diet == nil {
		return fmt.Errorf("no diet for date %s", date)
	}

	day, err := r.fetchHydratedDay(ctx, diet.ID, date)
	if err != nil {
		return err
	}
	r.clearStatus()
	fmt.Printf("%s, %s\n", date, date.Time.Format("Monday"))
	fmt.Println(day.Summary())

	history, err := r.fetchHistory(ctx, diets, date)
	if err != nil {
		return err
	}

	snapshot, err := r.store.Load()
	if err != nil {
		return err
	}

	r.status("Oracle is thinking...")
	oracleStart := time.Now()
	response, usage, err := r.adapter.Recommend(ctx, date, day.DietElements.Members, history, snapshot.Adjustments)
	if r.metrics != nil {
		if recordErr := r.metrics.RecordUsage(r.provider, usage, time.Since(oracleStart)); recordErr != nil {
			log.Printf("Warning: failed to record oracle metrics: %v", recordErr)
		}
	}
	r.clearStatus()
	if err != nil {
		return err
	}

	fmt.Println()
	for _, reason := range response.Reasoning {
		r.typeOut(aiPrefix + reason)
	}

	changes := &dietapi.ChangeMenuRequest{}
	adjustments, err := r.selectDishes(day, date, response, changes)
	if err != nil {
		return fmt.Errorf("while asking user: %w", err)
	}

	if len(adjustments) > 0 {
		if err := r.confirmAdjustments(adjustments); err != nil {
			return err
		}
	}
	if len(changes.Items) > 0 {
		if err := r.confirmMenuChanges(ctx, date, diet.ID, changes, day); err != nil {
			return err
		}
	}

	return r.store.SetLastDaySelected(date.AddDays(1))
}

// fetchHydratedDay fetches a day's dish items with every enabled option's
// ingredients attached.
func (r *Runner) fetchHydratedDay(ctx context.Context, dietID int64, date shared.Date) (*dietapi.DayItems, error) {
	day, err := r.client.DayItems(ctx, dietID, date)
	if err != nil {
		return nil, err
	}
	if err := dietapi.HydrateIngredients(ctx, r.client, day, r.status); err != nil {
		return nil, err
	}
	return day, nil
}

// fetchHistory gathers the previous days' menus oldest-first. Days without
// diet coverage are logged and left out; they are no reason to abort.
func (r *Runner) fetchHistory(ctx context.Context, diets *dietapi.DietList, date shared.Date) (oracle.History, error) {
	var history oracle.History
	for daysBack := historyDays; daysBack >= 1; daysBack-- {
		day := date.AddDays(-daysBack)
		r.status(fmt.Sprintf("Fetching menu for %s (-%d days)", day, daysBack))

		diet := diets.ForDate(day.Time)
		if diet == nil {
			r.clearStatus()
			log.Printf("No diet active for %s", day)
			continue
		}

		items, err := r.fetchHydratedDay(ctx, diet.ID, day)
		if err != nil {
			return nil, err
		}

		label := "yesterday"
		if daysBack != 1 {
			label = fmt.Sprintf("%d days ago", daysBack)
		}
		history = append(history, oracle.HistoryDay{Label: label, Choices: oracle.SelectedChoices(items)})
	}
	return history, nil
}

// selectDishes walks the user through every dish item in fetch order. The
// oracle's pick is the pre-selected cursor position; overriding it records
// an adjustment, and any choice differing from the remotely committed option
// records a menu change.
func (r *Runner) selectDishes(
	day *dietapi.DayItems,
	date shared.Date,
	response *oracle.Response,
	changes *dietapi.ChangeMenuRequest,
) ([]shared.Adjustment, error) {
	var adjustments []shared.Adjustment
	fmt.Println()
	for i := range day.DietElements.Members {
		item := &day.DietElements.Members[i]
		selection, ok := response.Selections[item.ID]
		if !ok {
			// The adapter validates this; reaching here means a broken
			// integration, not a model hiccup.
			return nil, fmt.Errorf("no oracle selection for dish item %s (%s)", item.ID, item.MealType.Name)
		}

		options := item.EnabledOptions()
		recommended := optionIndex(options, selection.DishID)
		if recommended < 0 {
			return nil, fmt.Errorf("oracle selection %s is not an enabled option of %s", selection.DishID, item.ID)
		}

		for _, option := range options {
			if analysis, ok := selection.Analysis[option.Dish.ID]; ok {
				r.typeOut(fmt.Sprintf("%s%s %s", aiPrefix, ui.Bold(option.Name), analysis))
			}
		}
		fmt.Println()
		r.typeOut(aiPrefix + selection.Reason)

		names := make([]string, len(options))
		for i, option := range options {
			names[i] = option.Name
		}
		chosen, err := r.interact.Select(item.MealType.Name, names, recommended)
		if err != nil {
			return nil, err
		}

		if chosen != recommended {
			reason, err := r.interact.Input("Why?", true)
			if err != nil {
				return nil, err
			}
			adjustments = append(adjustments, shared.Adjustment{
				From:   options[recommended].Name,
				To:     options[chosen].Name,
				Reason: reason,
				Date:   date,
			})
		}

		current := -1
		if selected := item.SelectedOption(); selected != nil {
			current = optionIndex(options, selected.Dish.ID)
		}
		if chosen != current {
			changes.Items = append(changes.Items, dietapi.ChangeMenuItem{
				Dish:     options[chosen].Dish.ID,
				DishItem: item.ID,
			})
		}
		fmt.Println()
	}
	return adjustments, nil
}

func (r *Runner) confirmAdjustments(adjustments []shared.Adjustment) error {
	fmt.Println("New preferences:")
	for _, adjustment := range adjustments {
		fmt.Printf("  %s -> %s\n", ui.Removed(adjustment.From), ui.Added(adjustment.To))
		if adjustment.Reason != "" {
			fmt.Printf("  because: %s\n", adjustment.Reason)
		}
	}

	ok, err := r.interact.Confirm("Add new preferences?")
	if err != nil {
		return err
	}
	if ok {
		if err := r.store.Append(adjustments); err != nil {
			return err
		}
		fmt.Println("Preferences saved")
	}
	fmt.Println()
	return nil
}

func (r *Runner) confirmMenuChanges(
	ctx context.Context,
	date shared.Date,
	dietID int64,
	changes *dietapi.ChangeMenuRequest,
	day *dietapi.DayItems,
) error {
	fmt.Println("Menu changes:")
	for _, change := range changes.Items {
		item := day.DishItem(change.DishItem)
		if item == nil {
			return fmt.Errorf("dish item %s not found while rendering diff", change.DishItem)
		}
		option := day.Dish(change.DishItem, change.Dish)
		if option == nil {
			return fmt.Errorf("dish %s not found while rendering diff", change.Dish)
		}

		currentName := "(none)"
		if selected := item.SelectedOption(); selected != nil {
			currentName = selected.Name
		}
		fmt.Println(ui.Bold(item.MealType.Name))
		fmt.Printf("  %s -> %s\n", ui.Removed(currentName), ui.Added(option.Name))
	}

	ok, err := r.interact.Confirm("Save menu changes?")
	if err != nil {
		return err
	}
	if ok {
		r.status("Saving menu changes...")
		if err := r.client.ChangeMenu(ctx, dietID, date, changes); err != nil {
			r.clearStatus()
			return err
		}
		r.clearStatus()
		r.notifyChanges(date, changes, day)
	}
	fmt.Println()
	return nil
}

// notifyChanges sends an optional one-way summary of the committed diff.
// Delivery failures are logged, never fatal.
func (r *Runner) notifyChanges(date shared.Date, changes *dietapi.ChangeMenuRequest, day *dietapi.DayItems) {
	if r.notifier == nil {
		return
	}

	summary := fmt.Sprintf("Menu updated for %s:\n", date)
	for _, change := range changes.Items {
		item := day.DishItem(change.DishItem)
		option := day.Dish(change.DishItem, change.Dish)
		if item == nil || option == nil {
			continue
		}
		summary += fmt.Sprintf("%s: %s\n", item.MealType.Name, option.Name)
	}
	if err := r.notifier.Send(summary); err != nil {
		log.Printf("Warning: failed to send telegram summary: %v", err)
	}
}

func optionIndex(options []*dietapi.MenuOption, dishID string) int {
	for i, option := range options {
		if option.Dish.ID == dishID {
			return i
		}
	}
	return -1
}
