package invoice

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"invoicedesk/pkg/models"
)

// CustomPreset marks an item typed in by hand.
const CustomPreset = "custom"

// Preset is a named line-item template.
type Preset struct {
	Key    string
	Label  string
	Amount decimal.Decimal
}

// Presets is the catalogue offered when adding an item.
var Presets = []Preset{
	{Key: CustomPreset, Label: "Custom", Amount: decimal.Zero},
	{Key: "ielts", Label: "IELTS Class", Amount: decimal.NewFromInt(6000)},
	{Key: "pte", Label: "PTE Class", Amount: decimal.NewFromInt(6000)},
	{Key: "toefl", Label: "TOEFL Class", Amount: decimal.NewFromInt(5000)},
	{Key: "consultation", Label: "Consultation", Amount: decimal.NewFromInt(1000)},
	{Key: "document", Label: "Document Processing", Amount: decimal.NewFromInt(3000)},
}

// FindPreset looks a preset up by key, case-insensitively.
func FindPreset(key string) (Preset, bool) {
	return lo.Find(Presets, func(p Preset) bool {
		return strings.EqualFold(p.Key, strings.TrimSpace(key))
	})
}

// ApplyPreset fills item from the named preset. The custom preset only tags
// the item and keeps whatever was typed.
func ApplyPreset(item models.LineItem, key string) (models.LineItem, error) {
	preset, ok := FindPreset(key)
	if !ok {
		return item, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
	}

	item.Preset = preset.Key
	if preset.Key != CustomPreset {
		item.Description = preset.Label
		item.Amount = preset.Amount
	}
	return item, nil
}
