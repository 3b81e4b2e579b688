package llm

import (
	"context"
	"strings"
)

// MockProvider is a deterministic Provider for development and tests,
// selected with CHAT_MODE=MOCK.
type MockProvider struct{}

// NewMockProvider creates a new mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

var _ Provider = (*MockProvider)(nil)

// Generate returns a canned response shaped after the system prompt so
// structured branches still decode.
func (m *MockProvider) Generate(ctx context.Context, turns []Turn, params Params) (string, error) {
	var system, lastUser string
	for _, t := range turns {
		switch t.Role {
		case RoleSystem:
			system += t.Content
		case RoleUser:
			lastUser = t.Content
		}
	}

	switch {
	case strings.Contains(system, `"dishes"`):
		return `{"narrative":"Mock menu based on your pantry.","dishes":[{"name":"Tomato Pasta","ingredients_used":["tomatoes"],"missing_ingredients":["basil"],"suggested_suppliers_needed":["basil"]}]}`, nil
	case strings.Contains(system, `"restock_plan"`):
		return `{"narrative":"Mock restock plan.","restock_plan":[{"product_name":"Tomatoes","needed_qty":10,"recommended_supplier":"Mock Farms","price_estimate":4.5}]}`, nil
	case strings.Contains(system, `"low_stock"`):
		return `{"narrative":"Mock inventory analysis.","low_stock":[],"healthy":[]}`, nil
	case strings.Contains(system, `"goal"`) && strings.Contains(system, `event goal`):
		return `{"goal":"Mock grocery run"}`, nil
	case strings.Contains(system, `Procurement Planner`):
		return `{"goal":"Mock grocery run","summary":"Mock plan.","narrative":"Here is your mock shopping plan.","items":[{"name":"Milk","quantity":"2","category":"Dairy","notes":"mock"}]}`, nil
	default:
		return "Mock reply: " + lastUser, nil
	}
}
