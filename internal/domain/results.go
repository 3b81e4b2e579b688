package domain

// Typed results decoded from generation output. Each command kind has its own
// shape; missing fields keep their zero values and callers apply defaults at
// the pipeline boundary.

// InventoryLine is the inventory projection echoed through analysis results.
type InventoryLine struct {
	ProductName      string `json:"product_name"`
	Stock            int    `json:"stock"`
	SafetyStockLevel int    `json:"safety_stock_level"`
}

// AnalysisResult is the payload of an "analysis" event.
type AnalysisResult struct {
	Narrative string          `json:"narrative"`
	LowStock  []InventoryLine `json:"low_stock"`
	Healthy   []InventoryLine `json:"healthy"`
}

// Dish is one suggestion inside a menu result.
type Dish struct {
	Name                     string   `json:"name"`
	IngredientsUsed          []string `json:"ingredients_used"`
	MissingIngredients       []string `json:"missing_ingredients"`
	SuggestedSuppliersNeeded []string `json:"suggested_suppliers_needed"`
}

// MenuResult is the payload of a "menu" event.
type MenuResult struct {
	Narrative string `json:"narrative"`
	Dishes    []Dish `json:"dishes"`
}

// RestockLine is one entry of a restock plan.
type RestockLine struct {
	ProductName         string  `json:"product_name"`
	NeededQty           int     `json:"needed_qty"`
	RecommendedSupplier string  `json:"recommended_supplier"`
	PriceEstimate       float64 `json:"price_estimate"`
}

// RestockResult is the payload of a "restock" event.
type RestockResult struct {
	Narrative string        `json:"narrative"`
	Plan      []RestockLine `json:"restock_plan"`
}

// PlanItem is one entry of a procurement plan.
type PlanItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

// ProcurementPlan is the payload of a "procurement-plan" event.
type ProcurementPlan struct {
	Goal      string     `json:"goal"`
	Summary   string     `json:"summary"`
	Narrative string     `json:"narrative"`
	Items     []PlanItem `json:"items"`
}
