package domain

import (
	"fmt"
	"strings"
)

// ModelType tags the kind of inventory entity a template or print request targets.
type ModelType string

const (
	ModelPart          ModelType = "part"
	ModelStockItem     ModelType = "stockitem"
	ModelStockLocation ModelType = "stocklocation"
	ModelBuild         ModelType = "build"
	ModelBuildLine     ModelType = "buildline"
	ModelPurchaseOrder ModelType = "purchaseorder"
	ModelSalesOrder    ModelType = "salesorder"
	ModelReturnOrder   ModelType = "returnorder"
)

var modelLabels = map[ModelType]string{
	ModelPart:          "Part",
	ModelStockItem:     "Stock Item",
	ModelStockLocation: "Stock Location",
	ModelBuild:         "Build Order",
	ModelBuildLine:     "Build Line",
	ModelPurchaseOrder: "Purchase Order",
	ModelSalesOrder:    "Sales Order",
	ModelReturnOrder:   "Return Order",
}

// ModelTypes returns every supported model type in a stable order.
func ModelTypes() []ModelType {
	return []ModelType{
		ModelPart,
		ModelStockItem,
		ModelStockLocation,
		ModelBuild,
		ModelBuildLine,
		ModelPurchaseOrder,
		ModelSalesOrder,
		ModelReturnOrder,
	}
}

// Valid reports whether m is a known model type.
func (m ModelType) Valid() bool {
	_, ok := modelLabels[m]
	return ok
}

// Label returns the human readable name of the model type.
func (m ModelType) Label() string {
	if l, ok := modelLabels[m]; ok {
		return l
	}
	return string(m)
}

// ParseModelType normalizes and validates a model type tag.
func ParseModelType(s string) (ModelType, error) {
	m := ModelType(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidModelType, s)
	}
	return m, nil
}
