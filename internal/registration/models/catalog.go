package models

// VehicleEntry is one selectable vehicle in the catalog.
type VehicleEntry struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Capacity    string   `json:"capacity"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// Catalog is the ordered list of selectable vehicles. Order is significant:
// the first entry is the default selection.
type Catalog []VehicleEntry

// Find returns the entry with the given canonical name.
func (c Catalog) Find(name string) (VehicleEntry, bool) {
	for _, e := range c {
		if e.Name == name {
			return e, true
		}
	}
	return VehicleEntry{}, false
}

// Has reports whether name is a catalog entry.
func (c Catalog) Has(name string) bool {
	_, ok := c.Find(name)
	return ok
}

// First returns the default entry.
func (c Catalog) First() (VehicleEntry, bool) {
	if len(c) == 0 {
		return VehicleEntry{}, false
	}
	return c[0], true
}

// Names lists the canonical names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, e := range c {
		names = append(names, e.Name)
	}
	return names
}
