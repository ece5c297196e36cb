package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"ai-menu-assistant/internal/dietapi"
	"ai-menu-assistant/internal/shared"
)

const systemPrompt = "You are personal meal assistant. You have to select meals for the user. " +
	"Figure out what the user wants to eat from the menu. Use historic data to figure out user preferences. " +
	"Try not to pick the same meal as the user had in the last days."

// Backend sends one structured-output request to a language model and
// returns the raw response content.
type Backend interface {
	Complete(ctx context.Context, system, payload string, schema *Schema) (string, shared.TokenUsage, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// Request is the payload sent to the oracle alongside the response schema.
type Request struct {
	UserChanges     []shared.Adjustment `json:"user_changes"`
	LastDaysChoices History             `json:"last_days_choices"`
	DishItems       []RequestItem       `json:"dish_items"`
	MenuDate        shared.Date         `json:"menu_date"`
}

// RequestItem is a dish item reduced to what the oracle needs: enabled
// options only, each with its ingredient list.
type RequestItem struct {
	ID       string          `json:"id"`
	MealType string          `json:"meal_type"`
	Options  []RequestOption `json:"options"`
}

// RequestOption is one selectable dish in oracle form.
type RequestOption struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	ID          string   `json:"id"`
}

// HistoryDay pairs a human-readable label ("yesterday", "3 days ago") with
// the options that were selected on that day.
type HistoryDay struct {
	Label   string
	Choices []RequestOption
}

// History is an ordered set of prior days, oldest first. It marshals to a
// JSON object whose keys keep that order.
type History []HistoryDay

func (h History) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, day := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(day.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		choices, err := json.Marshal(day.Choices)
		if err != nil {
			return nil, err
		}
		buf.Write(choices)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Selection is the oracle's verdict for one dish item.
type Selection struct {
	DishID   string            `json:"dish_id"`
	Reason   string            `json:"reason"`
	Analysis map[string]string `json:"analysis"`
}

// Response is the oracle's full recommendation for one day.
type Response struct {
	Reasoning  []string             `json:"reasoning"`
	Selections map[string]Selection `json:"selections"`
}

// Adapter builds oracle requests from domain data and validates responses
// against the submitted dish items.
type Adapter struct {
	backend Backend
}

// NewAdapter creates an Adapter on top of a model backend.
func NewAdapter(backend Backend) *Adapter {
	return &Adapter{backend: backend}
}

// Recommend asks the oracle to pick one option per dish item. A response
// that fails to parse, omits a submitted dish item or picks an id outside
// that item's enabled options is rejected outright; a broken contract must
// surface rather than silently degrade recommendations.
func (a *Adapter) Recommend(
	ctx context.Context,
	date shared.Date,
	items []dietapi.DishItem,
	history History,
	adjustments []shared.Adjustment,
) (*Response, shared.TokenUsage, error) {
	request := buildRequest(date, items, history, adjustments)
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, shared.TokenUsage{}, fmt.Errorf("failed to marshal oracle request: %w", err)
	}

	content, usage, err := a.backend.Complete(ctx, systemPrompt, string(payload), ResponseSchema(items))
	if err != nil {
		return nil, usage, err
	}

	var response Response
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return nil, usage, fmt.Errorf("failed to parse oracle response: %w content: %s", err, content)
	}
	if err := validate(&response, items); err != nil {
		return nil, usage, err
	}
	return &response, usage, nil
}

func buildRequest(date shared.Date, items []dietapi.DishItem, history History, adjustments []shared.Adjustment) *Request {
	requestItems := make([]RequestItem, 0, len(items))
	for i := range items {
		item := &items[i]
		options := item.EnabledOptions()
		requestOptions := make([]RequestOption, 0, len(options))
		for _, option := range options {
			requestOptions = append(requestOptions, toRequestOption(option))
		}
		requestItems = append(requestItems, RequestItem{
			ID:       item.ID,
			MealType: item.MealType.Name,
			Options:  requestOptions,
		})
	}

	return &Request{
		UserChanges:     adjustments,
		LastDaysChoices: history,
		DishItems:       requestItems,
		MenuDate:        date,
	}
}

// SelectedChoices reduces a historical day to the options that were actually
// selected. Items without a resolvable selection are left out.
func SelectedChoices(day *dietapi.DayItems) []RequestOption {
	var choices []RequestOption
	for i := range day.DietElements.Members {
		selected := day.DietElements.Members[i].SelectedOption()
		if selected == nil {
			continue
		}
		choices = append(choices, toRequestOption(selected))
	}
	return choices
}

func toRequestOption(option *dietapi.MenuOption) RequestOption {
	var ingredients []string
	if option.Ingredients != nil {
		ingredients = option.Ingredients.Ingredients
	}
	return RequestOption{
		Name:        option.Name,
		Ingredients: ingredients,
		ID:          option.Dish.ID,
	}
}

func validate(response *Response, items []dietapi.DishItem) error {
	if len(response.Selections) == 0 {
		return fmt.Errorf("oracle response has no selections")
	}
	for i := range items {
		item := &items[i]
		selection, ok := response.Selections[item.ID]
		if !ok {
			return fmt.Errorf("oracle response missing selection for dish item %s (%s)", item.ID, item.MealType.Name)
		}

		valid := false
		for _, option := range item.EnabledOptions() {
			if option.Dish.ID == selection.DishID {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("oracle chose dish %s which is not an enabled option of %s", selection.DishID, item.ID)
		}
	}
	return nil
}
