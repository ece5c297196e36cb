package dietapi

import (
	"fmt"
	"strings"
	"time"
)

// TokenPair is the result of a refresh-token exchange.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// DietList is the hydra envelope around the user's diets.
type DietList struct {
	Members []Diet `json:"hydra:member"`
}

// Diet is one ordered diet with its delivery date range.
type Diet struct {
	ID                int64     `json:"id"`
	FirstDeliveryDate time.Time `json:"firstDeliveryDate"`
	LastDeliveryDate  time.Time `json:"lastDeliveryDate"`
}

// ForDate returns the diet whose delivery range contains the given instant,
// or nil if none does.
func (l *DietList) ForDate(t time.Time) *Diet {
	for i := range l.Members {
		d := &l.Members[i]
		if !t.Before(d.FirstDeliveryDate) && !t.After(d.LastDeliveryDate) {
			return d
		}
	}
	return nil
}

// InRange returns every diet whose delivery range overlaps [from, to].
func (l *DietList) InRange(from, to time.Time) []*Diet {
	var diets []*Diet
	for i := range l.Members {
		d := &l.Members[i]
		if !d.FirstDeliveryDate.After(to) && !from.After(d.LastDeliveryDate) {
			diets = append(diets, d)
		}
	}
	return diets
}

// DayState is the provider's state tag for one calendar day.
type DayState string

const (
	StateNoDiet            DayState = "NOT_DIET_CANT_PLACE_ORDER"
	StateDelivered         DayState = "DELIVERED_NOT_RATED_CAN_RATE"
	StateCannotChange      DayState = "NOT_DELIVERED_BLOCKED"
	StateAvailableToSelect DayState = "NOT_DELIVERED_WITH_CONFIGURABLE_ALL"
	StateWithoutMenu       DayState = "NOT_DELIVERED_WITH_CONFIGURABLE_WITHOUT_MENU"
)

// Calendar maps calendar dates ("2006-01-02" keys) to their day state.
type Calendar struct {
	Days map[string]CalendarDay `json:"days"`
}

// CalendarDay carries the state of one day within a diet calendar.
type CalendarDay struct {
	State DayState `json:"newState"`
}

// DayItems is the full set of dish items for one calendar day.
type DayItems struct {
	DietElements DietElements `json:"dietElements"`
}

// DietElements is the hydra envelope around a day's dish items.
type DietElements struct {
	Members []DishItem `json:"hydra:member"`
}

// DishItem is one meal slot (e.g. lunch) with its selectable options. The
// currently selected option is the one whose dish id matches DishSize.Dish.
type DishItem struct {
	ID       string       `json:"@id"`
	Options  []MenuOption `json:"options"`
	MealType MealType     `json:"mealType"`
	DishSize DishSize     `json:"dishSize"`
}

// MealType labels a dish item ("Breakfast", "Lunch", ...).
type MealType struct {
	Name string `json:"name"`
}

// DishSize carries the dish item's configured default dish.
type DishSize struct {
	Dish Dish `json:"dish"`
}

// Dish is a dish reference by IRI id.
type Dish struct {
	ID string `json:"@id"`
}

// MenuOption is one selectable dish within a dish item. Ingredients are nil
// until hydrated through the ingredients endpoint.
type MenuOption struct {
	Name        string           `json:"name"`
	Enabled     bool             `json:"enabled"`
	Dish        Dish             `json:"dish"`
	DishSizeID  int64            `json:"dishSizeId"`
	Ingredients *DishIngredients `json:"ingredients"`
}

// DishIngredients is the ingredient record for one dish size.
type DishIngredients struct {
	Ingredients []string `json:"ingredients"`
}

// IngredientsList is the hydra envelope around ingredient records.
type IngredientsList struct {
	Members []DishIngredients `json:"hydra:member"`
}

// ChangeMenuRequest is the per-day menu change submission.
type ChangeMenuRequest struct {
	Items []ChangeMenuItem `json:"items"`
}

// ChangeMenuItem reassigns one dish item to a chosen dish.
type ChangeMenuItem struct {
	Dish     string `json:"dish"`
	DishItem string `json:"dishItem"`
}

// EnabledOptions returns the presentable options in their original order.
// Disabled options exist in the data but are never offered or selected.
func (d *DishItem) EnabledOptions() []*MenuOption {
	var options []*MenuOption
	for i := range d.Options {
		if d.Options[i].Enabled {
			options = append(options, &d.Options[i])
		}
	}
	return options
}

// Dish finds an option by dish id, searching all options.
func (d *DishItem) Dish(dishID string) *MenuOption {
	for i := range d.Options {
		if d.Options[i].Dish.ID == dishID {
			return &d.Options[i]
		}
	}
	return nil
}

// SelectedOption returns the option currently committed on the remote side,
// or nil when the configured default matches no option.
func (d *DishItem) SelectedOption() *MenuOption {
	return d.Dish(d.DishSize.Dish.ID)
}

// DishItem finds a dish item by id.
func (d *DayItems) DishItem(dishItemID string) *DishItem {
	for i := range d.DietElements.Members {
		if d.DietElements.Members[i].ID == dishItemID {
			return &d.DietElements.Members[i]
		}
	}
	return nil
}

// Dish finds an option by dish item id and dish id.
func (d *DayItems) Dish(dishItemID, dishID string) *MenuOption {
	item := d.DishItem(dishItemID)
	if item == nil {
		return nil
	}
	return item.Dish(dishID)
}

// Summary renders the day's menu as an indented listing, marking the
// currently selected option of each dish item with a star.
func (d *DayItems) Summary() string {
	var b strings.Builder
	for i := range d.DietElements.Members {
		item := &d.DietElements.Members[i]
		fmt.Fprintf(&b, "%s\n", item.MealType.Name)

		var selectedID string
		if selected := item.SelectedOption(); selected != nil {
			selectedID = selected.Dish.ID
		}
		for _, option := range item.EnabledOptions() {
			marker := " "
			if option.Dish.ID == selectedID {
				marker = "*"
			}
			fmt.Fprintf(&b, "  [%s] %s\n", marker, option.Name)
		}
	}
	return b.String()
}
