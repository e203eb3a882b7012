package core

import (
	"fmt"
	"sync"
)

// CollectionKey names one of a user's record collections.
type CollectionKey string

const (
	MealPlans   CollectionKey = "mealPlans"
	Ingredients CollectionKey = "ingredients"
	Feedback    CollectionKey = "feedback"
)

// CollectionDefinition describes how a collection is stored and exported.
type CollectionDefinition struct {
	Key         CollectionKey
	Label       string
	Description string
	Filename    string
	Headers     []string
	MapRow      RowMapper

	// OrderBy is the record field the store sorts by.
	OrderBy    string
	Descending bool
}

var (
	registryMu sync.RWMutex
	registry   = make(map[CollectionKey]CollectionDefinition)
	order      []CollectionKey
)

// Register adds a collection definition. It panics on a duplicate key,
// which is a programming error caught at init.
func Register(def CollectionDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("collection %q already registered", def.Key))
	}
	registry[def.Key] = def
	order = append(order, def.Key)
}

// GetCollection returns the definition for key.
func GetCollection(key CollectionKey) (CollectionDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[key]
	return def, ok
}

// Collections returns every definition in registration order, which is
// also the attachment order of an export.
func Collections() []CollectionDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	defs := make([]CollectionDefinition, 0, len(order))
	for _, key := range order {
		defs = append(defs, registry[key])
	}
	return defs
}

func init() {
	Register(CollectionDefinition{
		Key:         MealPlans,
		Label:       "Meal Plans",
		Description: "All your meal plans",
		Filename:    "meal-plans.csv",
		Headers:     MealPlanHeaders,
		MapRow:      MealPlanRow,
		OrderBy:     FieldCreatedAt,
		Descending:  true,
	})
	Register(CollectionDefinition{
		Key:         Ingredients,
		Label:       "Ingredients",
		Description: "Your ingredient inventory",
		Filename:    "ingredients.csv",
		Headers:     IngredientHeaders,
		MapRow:      IngredientRow,
		OrderBy:     "name",
	})
	Register(CollectionDefinition{
		Key:         Feedback,
		Label:       "Feedback",
		Description: "Your feedback and suggestions",
		Filename:    "feedback.csv",
		Headers:     FeedbackHeaders,
		MapRow:      FeedbackRow,
		OrderBy:     FieldCreatedAt,
		Descending:  true,
	})
}
