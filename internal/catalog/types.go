package catalog

import "fmt"

// Size is a pizza size as it appears on the wire.
type Size string

const (
	SizeSmall  Size = "Small"
	SizeMedium Size = "Medium"
	SizeLarge  Size = "Large"
)

// Valid reports whether s is one of the three menu sizes.
func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Price is the per-size price table of a pizza.
type Price struct {
	Small  float64 `json:"small" dynamodbav:"small"`
	Medium float64 `json:"medium" dynamodbav:"medium"`
	Large  float64 `json:"large" dynamodbav:"large"`
}

// For returns the exact price for size.
func (p Price) For(size Size) (float64, error) {
	switch size {
	case SizeSmall:
		return p.Small, nil
	case SizeMedium:
		return p.Medium, nil
	case SizeLarge:
		return p.Large, nil
	}
	return 0, fmt.Errorf("unknown pizza size %q", size)
}

// Valid reports whether every entry is non-negative.
func (p Price) Valid() bool {
	return p.Small >= 0 && p.Medium >= 0 && p.Large >= 0
}

// Pizza is a menu item.
type Pizza struct {
	ID          string   `json:"id" dynamodbav:"pizza_id"`
	Name        string   `json:"name" dynamodbav:"name"`
	Description string   `json:"description" dynamodbav:"description"`
	Ingredients []string `json:"ingredients" dynamodbav:"ingredients"`
	Price       Price    `json:"price" dynamodbav:"price"`
	ImageURL    *string  `json:"image_url" dynamodbav:"image_url,omitempty"`
	IsAvailable bool     `json:"is_available" dynamodbav:"is_available"`
}
