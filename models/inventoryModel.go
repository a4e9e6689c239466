package models

const (
	KindMilk    = "milk"
	KindSyrup   = "syrup"
	KindTopping = "topping"
	KindOther   = "other"
)

// Stock levels derived from a tracked quantity on read.
const (
	StockUntracked  = "untracked"
	StockIn         = "in_stock"
	StockLow        = "low_stock"
	StockOut        = "out_of_stock"
	LowStockCeiling = 10
)

// InventoryItem is one ledger row. A nil Quantity means the item is not
// stock-tracked and always counts as available.
type InventoryItem struct {
	Item_id   string `bson:"_id" json:"item_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Available bool   `json:"available"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// StockStatus derives the low/out-of-stock signal. A negative quantity is an
// over-deduction and reads as out of stock.
func (i InventoryItem) StockStatus() string {
	if i.Quantity == nil {
		return StockUntracked
	}
	q := *i.Quantity
	switch {
	case q <= 0:
		return StockOut
	case q < LowStockCeiling:
		return StockLow
	default:
		return StockIn
	}
}

type InventoryView struct {
	InventoryItem `bson:",inline"`
	Stock_status  string `json:"stock_status"`
	Oversold      bool   `json:"oversold,omitempty"`
}

func (i InventoryItem) View() InventoryView {
	return InventoryView{
		InventoryItem: i,
		Stock_status:  i.StockStatus(),
		Oversold:      i.Quantity != nil && *i.Quantity < 0,
	}
}
