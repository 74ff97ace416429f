package domain

// Product represents a single product owned by a user.
// JSON tags are the internal snake_case representation; the external
// camelCase form is produced by the wire package.
type Product struct {
	Key          string   `json:"key"`
	OwnerID      string   `json:"owner_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	ComponentIDs []string `json:"component_ids"`
	Price        float64  `json:"price"`
}

// ProductPatch carries the mutable subset of product fields for partial
// updates. Nil means "leave unchanged". OwnerID and Key are immutable and
// deliberately absent.
type ProductPatch struct {
	Name         *string   `json:"name,omitempty"`
	Description  *string   `json:"description,omitempty"`
	ComponentIDs *[]string `json:"component_ids,omitempty"`
	Price        *float64  `json:"price,omitempty"`
}

// Apply overlays the supplied fields onto p.
func (patch ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.ComponentIDs != nil {
		p.ComponentIDs = *patch.ComponentIDs
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
}

// Empty reports whether the patch carries no fields at all.
func (patch ProductPatch) Empty() bool {
	return patch.Name == nil && patch.Description == nil &&
		patch.ComponentIDs == nil && patch.Price == nil
}
