package oracle

import (
	"ai-menu-assistant/internal/dietapi"
)

// Schema is a JSON-schema value. The oracle's expected response schema is
// composed from the day's dish items so the model is constrained to choose
// among the ids actually on offer.
type Schema struct {
	Type                 string             `json:"type"`
	Description          string             `json:"description,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

// ResponseSchema builds the strict output schema for a set of dish items:
// a list of reasoning strings plus one selection per dish item, where each
// selection's dish_id is constrained to that item's enabled options.
func ResponseSchema(items []dietapi.DishItem) *Schema {
	selectionProperties := make(map[string]*Schema, len(items))
	itemIDs := make([]string, 0, len(items))

	for i := range items {
		item := &items[i]
		itemIDs = append(itemIDs, item.ID)
		selectionProperties[item.ID] = dishItemSchema(item)
	}

	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"reasoning": {
				Type:        "array",
				Description: "Think about what the user might like and why",
				Items:       &Schema{Type: "string"},
			},
			"selections": {
				Type:                 "object",
				Properties:           selectionProperties,
				Required:             itemIDs,
				AdditionalProperties: boolPtr(false),
			},
		},
		Required:             []string{"reasoning", "selections"},
		AdditionalProperties: boolPtr(false),
	}
}

func dishItemSchema(item *dietapi.DishItem) *Schema {
	options := item.EnabledOptions()
	dishIDs := make([]string, 0, len(options))
	analysisProperties := make(map[string]*Schema, len(options))
	for _, option := range options {
		dishIDs = append(dishIDs, option.Dish.ID)
		analysisProperties[option.Dish.ID] = &Schema{Type: "string"}
	}

	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"analysis": {
				Type:                 "object",
				Description:          "Analyze available options and argue how good it is for the user",
				Properties:           analysisProperties,
				Required:             dishIDs,
				AdditionalProperties: boolPtr(false),
			},
			"reason": {
				Type:        "string",
				Description: "Justification why this meal should fit user preferences",
			},
			"dish_id": {
				Type: "string",
				Enum: dishIDs,
			},
		},
		Required:             []string{"analysis", "reason", "dish_id"},
		AdditionalProperties: boolPtr(false),
	}
}

func boolPtr(b bool) *bool {
	return &b
}
