package inventory

import "brista-coffee/models"

// Milk and cup ids double as the selection keys customers send with a line item.
var (
	milkOptions = []option{
		{ID: "whole", Name: "Whole Milk"},
		{ID: "oat", Name: "Oat Milk"},
		{ID: "almond", Name: "Almond Milk"},
		{ID: "soy", Name: "Soy Milk"},
		{ID: "none", Name: "No Milk"},
	}
	cupOptions = []option{
		{ID: "ceramic", Name: "Ceramic Mug"},
		{ID: "glass", Name: "Glass Cup"},
	}
)

const (
	SugarItemID  = "sugar"
	defaultStock = 100
	sugarStock   = 500
	iceStock     = 500
	beansStock   = 200
	matchaStock  = 80
)

type option struct {
	ID   string
	Name string
}

func stocked(id, name, kind string, qty int) models.InventoryItem {
	return models.InventoryItem{Item_id: id, Name: name, Kind: kind, Available: true, Quantity: &qty}
}

// DefaultItems is the stock a fresh ledger is seeded with.
func DefaultItems() []models.InventoryItem {
	var items []models.InventoryItem
	for _, m := range milkOptions {
		items = append(items, stocked(m.ID, m.Name, models.KindMilk, defaultStock))
	}
	for _, c := range cupOptions {
		items = append(items, stocked(c.ID, c.Name, models.KindOther, defaultStock))
	}
	items = append(items,
		stocked(SugarItemID, "Sugar Packets", models.KindOther, sugarStock),
		stocked("espresso-beans", "Espresso Beans", models.KindOther, beansStock),
		stocked("chocolate-syrup", "Chocolate Syrup", models.KindSyrup, defaultStock),
		stocked("vanilla-syrup", "Vanilla Syrup", models.KindSyrup, defaultStock),
		stocked("caramel-syrup", "Caramel Syrup", models.KindSyrup, defaultStock),
		stocked("matcha-powder", "Matcha Powder", models.KindOther, matchaStock),
		stocked("whipped-cream", "Whipped Cream", models.KindTopping, defaultStock),
		stocked("ice", "Ice", models.KindOther, iceStock),
	)
	return items
}
