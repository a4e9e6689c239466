package inventory

import (
	"strings"

	"brista-coffee/models"
)

// Deductions maps an inventory item id to the units an order consumes.
type Deductions map[string]int

func (d Deductions) add(itemID string, units int) {
	if itemID == "" || units <= 0 {
		return
	}
	d[itemID] += units
}

// Merge folds other into d.
func (d Deductions) Merge(other Deductions) Deductions {
	for id, units := range other {
		d.add(id, units)
	}
	return d
}

var sugarUnits = map[string]int{
	"none":   0,
	"light":  1,
	"normal": 2,
	"extra":  3,
}

// SugarUnits returns the packets one drink uses for a sugar level.
func SugarUnits(level string) int {
	return sugarUnits[strings.ToLower(strings.TrimSpace(level))]
}

// SelectionDeductions resolves the milk, cup and sugar choices of each line.
// Selections are matched by id or display name; unknown names fall back to
// their lowercased form.
func SelectionDeductions(items []models.OrderItem) Deductions {
	d := Deductions{}
	for _, item := range items {
		if item.Milk != "" {
			d.add(resolveOption(milkOptions, item.Milk), item.Quantity)
		}
		if item.Cup != "" {
			d.add(resolveOption(cupOptions, item.Cup), item.Quantity)
		}
		if item.Sugar != "" {
			d.add(SugarItemID, SugarUnits(item.Sugar)*item.Quantity)
		}
	}
	return d
}

// RecipeDeductions scales each menu recipe by its line quantity. Lines whose
// menu item has no recipe contribute nothing.
func RecipeDeductions(items []models.OrderItem, menu map[string]models.MenuItem) Deductions {
	d := Deductions{}
	for _, item := range items {
		menuItem, ok := menu[item.Menu_item_id]
		if !ok {
			continue
		}
		for _, ingredient := range menuItem.Recipe {
			d.add(ingredient.Inventory_item_id, ingredient.Quantity*item.Quantity)
		}
	}
	return d
}

func resolveOption(options []option, selection string) string {
	s := strings.TrimSpace(selection)
	for _, o := range options {
		if strings.EqualFold(o.ID, s) || strings.EqualFold(o.Name, s) {
			return o.ID
		}
	}
	return strings.ToLower(s)
}
