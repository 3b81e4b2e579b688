package agent

import (
	"encoding/json"

	"github.com/ychia112/GroceryShopperAI/internal/domain"
)

// The extractor hands back loosely-typed maps; each command kind is decoded
// into its typed result exactly once, here, with defaults for missing keys.

func decodeInto(m map[string]any, v any) {
	b, err := json.Marshal(m)
	if err != nil {
		return
	}
	_ = json.Unmarshal(b, v)
}

func decodeAnalysis(m map[string]any, lowStock, healthy []domain.InventoryLine) domain.AnalysisResult {
	var res domain.AnalysisResult
	decodeInto(m, &res)
	if res.Narrative == "" {
		res.Narrative = "Inventory analysis generated."
	}
	if res.LowStock == nil {
		res.LowStock = lowStock
	}
	if res.Healthy == nil {
		res.Healthy = healthy
	}
	return res
}

func decodeMenu(m map[string]any, raw string) domain.MenuResult {
	var res domain.MenuResult
	decodeInto(m, &res)
	if res.Narrative == "" {
		res.Narrative = raw
	}
	if res.Dishes == nil {
		res.Dishes = []domain.Dish{}
	}
	return res
}

func decodeRestock(m map[string]any, raw string) domain.RestockResult {
	var res domain.RestockResult
	decodeInto(m, &res)
	if res.Narrative == "" {
		res.Narrative = raw
	}
	if res.Plan == nil {
		res.Plan = []domain.RestockLine{}
	}
	return res
}

func decodePlan(m map[string]any, inferredGoal string) domain.ProcurementPlan {
	var res domain.ProcurementPlan
	decodeInto(m, &res)
	if res.Goal == "" {
		res.Goal = inferredGoal
	}
	if res.Summary == "" {
		res.Summary = "Shopping list generated."
	}
	if res.Narrative == "" {
		res.Narrative = "Here is your consolidated shopping plan."
	}
	if res.Items == nil {
		res.Items = []domain.PlanItem{}
	}
	return res
}
