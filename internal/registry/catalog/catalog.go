// Package catalog seeds the vehicle catalog the registry serves.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"vehiclereg/internal/registration/models"
	strutil "vehiclereg/pkg/platform/strings"
)

// Builtin is served when no catalog file is configured.
func Builtin() models.Catalog {
	return models.Catalog{
		{
			Name:        "Minibus",
			Category:    "passenger",
			Capacity:    "12 seats",
			Description: "Urban and intercity passenger minibus",
			Images:      []string{"/images/vehicles/minibus-front.jpg", "/images/vehicles/minibus-side.jpg"},
		},
		{
			Name:        "Midibus",
			Category:    "passenger",
			Capacity:    "30 seats",
			Description: "Mid-size bus for intercity routes",
			Images:      []string{"/images/vehicles/midibus.jpg"},
		},
		{
			Name:        "Pickup",
			Category:    "cargo",
			Capacity:    "1.5 t",
			Description: "Double-cab pickup for light cargo",
			Images:      []string{"/images/vehicles/pickup.jpg"},
		},
		{
			Name:        "Isuzu Truck",
			Category:    "cargo",
			Capacity:    "7 t",
			Description: "Medium-duty truck for regional freight",
			Images:      []string{"/images/vehicles/isuzu-truck.jpg"},
		},
	}
}

// Load returns the catalog from the JSON file at path, or Builtin when path
// is empty. Entries are trimmed, image lists deduplicated, and entries
// without a name or repeating an earlier name are rejected.
func Load(path string) (models.Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var entries models.Catalog
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return Clean(entries)
}

// Clean normalizes catalog entries in order.
func Clean(entries models.Catalog) (models.Catalog, error) {
	out := make(models.Catalog, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		if _, ok := seen[e.Name]; ok {
			return nil, fmt.Errorf("catalog entry %q is listed twice", e.Name)
		}
		seen[e.Name] = struct{}{}
		e.Category = strings.TrimSpace(e.Category)
		e.Capacity = strings.TrimSpace(e.Capacity)
		e.Description = strings.TrimSpace(e.Description)
		e.Images = strutil.DedupeAndTrim(e.Images)
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return out, nil
}
