// Package seed ships a small embedded catalog used when the backend is
// unreachable at startup, so the storefront never boots empty.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"

	"maison-mode/internal/domain"
)

//go:embed catalog.json
var files embed.FS

type catalogFile struct {
	Products   []*domain.Product  `json:"products"`
	Categories []*domain.Category `json:"categories"`
}

// Load decodes the embedded catalog.
func Load() ([]*domain.Product, []*domain.Category, error) {
	raw, err := files.ReadFile("catalog.json")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read embedded catalog: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to decode embedded catalog: %w", err)
	}
	return file.Products, file.Categories, nil
}
