package materials

import (
	"fmt"
	"strings"
)

// Material is a photocathode surface. Values are owned by the catalog and
// never modified after construction.
type Material struct {
	ID             string
	Name           string
	Symbol         string
	WorkFunctionEv float64
	DisplayColor   string
}

type Catalog struct {
	materials map[string]Material
	order     []string
}

var defaultMaterials = []Material{
	{ID: "cesium", Name: "Cesium", Symbol: "Cs", WorkFunctionEv: 2.10, DisplayColor: "#ffd700"},
	{ID: "potassium", Name: "Potassium", Symbol: "K", WorkFunctionEv: 2.30, DisplayColor: "#c084fc"},
	{ID: "sodium", Name: "Sodium", Symbol: "Na", WorkFunctionEv: 2.28, DisplayColor: "#fb923c"},
	{ID: "calcium", Name: "Calcium", Symbol: "Ca", WorkFunctionEv: 2.87, DisplayColor: "#e5e7eb"},
	{ID: "magnesium", Name: "Magnesium", Symbol: "Mg", WorkFunctionEv: 3.68, DisplayColor: "#a3e635"},
	{ID: "zinc", Name: "Zinc", Symbol: "Zn", WorkFunctionEv: 4.30, DisplayColor: "#94a3b8"},
	{ID: "copper", Name: "Copper", Symbol: "Cu", WorkFunctionEv: 4.70, DisplayColor: "#b87333"},
	{ID: "platinum", Name: "Platinum", Symbol: "Pt", WorkFunctionEv: 6.35, DisplayColor: "#e5e4e2"},
}

// NewCatalog returns the built-in material table.
func NewCatalog() *Catalog {
	c := &Catalog{
		materials: make(map[string]Material, len(defaultMaterials)),
		order:     make([]string, 0, len(defaultMaterials)),
	}
	for _, m := range defaultMaterials {
		c.materials[m.ID] = m
		c.order = append(c.order, m.ID)
	}
	return c
}

func (c *Catalog) Get(id string) (Material, error) {
	m, ok := c.materials[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Material{}, fmt.Errorf("unknown material: %s", id)
	}
	return m, nil
}

// List returns materials in catalog order.
func (c *Catalog) List() []Material {
	out := make([]Material, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.materials[id])
	}
	return out
}

func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}
