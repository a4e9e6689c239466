package analytics

import (
	"sort"
	"time"

	"brista-coffee/helpers"
	"brista-coffee/models"

	"github.com/shopspring/decimal"
)

const TopItemsLimit = 5

// VipPolicy is the single VIP rule used by every report.
type VipPolicy struct {
	MinOrders int
	MinSpend  float64
}

func DefaultVipPolicy() VipPolicy {
	return VipPolicy{MinOrders: 10, MinSpend: 100}
}

func (p VipPolicy) IsVip(orderCount int, totalSpent float64) bool {
	return orderCount >= p.MinOrders || totalSpent >= p.MinSpend
}

// Recognized reports whether an order counts as sold revenue.
func Recognized(order models.Order) bool {
	return order.Status == models.StatusCompleted || order.Status == models.StatusReady
}

// WindowStart is local midnight of the first day of a days-long window
// ending today.
func WindowStart(now time.Time, days int, loc *time.Location) time.Time {
	return helpers.StartOfDay(now, loc).AddDate(0, 0, -(days - 1))
}

func inWindow(order models.Order, from time.Time) bool {
	return !order.Created_at.Before(from)
}

// Revenue buckets recognized orders by calendar day over the window. Days
// without sales are present with zero values, oldest first.
func Revenue(orders []models.Order, days int, now time.Time, loc *time.Location) models.RevenueReport {
	from := WindowStart(now, days, loc)
	buckets := make([]models.DailySales, days)
	index := make(map[string]int, days)
	revenue := make([]decimal.Decimal, days)
	for i := 0; i < days; i++ {
		key := helpers.DayKey(from.AddDate(0, 0, i), loc)
		buckets[i] = models.DailySales{Date: key}
		index[key] = i
		revenue[i] = decimal.Zero
	}

	total := decimal.Zero
	count := 0
	for _, order := range orders {
		if !Recognized(order) || !inWindow(order, from) {
			continue
		}
		i, ok := index[helpers.DayKey(order.Created_at, loc)]
		if !ok {
			continue
		}
		amount := decimal.NewFromFloat(order.Total)
		revenue[i] = revenue[i].Add(amount)
		buckets[i].Orders++
		total = total.Add(amount)
		count++
	}
	for i := range buckets {
		buckets[i].Revenue = toFloat(revenue[i])
	}

	return models.RevenueReport{
		Days:                days,
		Total_revenue:       toFloat(total),
		Total_orders:        count,
		Average_order_value: toFloat(average(total, count)),
		Sales_by_date:       buckets,
	}
}

// Popular ranks item names by quantity sold among recognized orders in the
// window. Ties keep the order in which names were first seen.
func Popular(orders []models.Order, days int, now time.Time, loc *time.Location, limit int) []models.ItemPopularity {
	from := WindowStart(now, days, loc)
	var ranked []models.ItemPopularity
	revenue := map[string]decimal.Decimal{}
	position := map[string]int{}
	for _, order := range orders {
		if !Recognized(order) || !inWindow(order, from) {
			continue
		}
		for _, item := range order.Items {
			i, ok := position[item.Name]
			if !ok {
				i = len(ranked)
				position[item.Name] = i
				ranked = append(ranked, models.ItemPopularity{Name: item.Name})
				revenue[item.Name] = decimal.Zero
			}
			ranked[i].Count += item.Quantity
			line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
			revenue[item.Name] = revenue[item.Name].Add(line)
		}
	}
	for i := range ranked {
		ranked[i].Revenue = toFloat(revenue[ranked[i].Name])
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if ranked == nil {
		ranked = []models.ItemPopularity{}
	}
	return ranked
}

// Insight summarizes every order a customer has placed, whatever its status.
func Insight(customerID string, orders []models.Order, vip VipPolicy) models.CustomerInsight {
	insight := models.CustomerInsight{
		Customer_id:    customerID,
		Favorite_drink: models.NoFavorite,
		Favorite_milk:  models.NoFavorite,
	}
	spent := decimal.Zero
	var drinks, milks []string
	for _, order := range orders {
		spent = spent.Add(decimal.NewFromFloat(order.Total))
		insight.Order_count++
		if order.Created_at.After(insight.Last_order_date) {
			insight.Last_order_date = order.Created_at
		}
		for _, item := range order.Items {
			drinks = append(drinks, item.Name)
			if item.Milk != "" {
				milks = append(milks, item.Milk)
			}
		}
	}
	insight.Total_spent = toFloat(spent)
	insight.Favorite_drink = mode(drinks)
	insight.Favorite_milk = mode(milks)
	insight.Is_vip = vip.IsVip(insight.Order_count, insight.Total_spent)
	return insight
}

// Summaries builds one directory row per customer, biggest spenders first.
// Name and email come from the customer's latest order.
func Summaries(orders []models.Order, vip VipPolicy) []models.CustomerSummary {
	type acc struct {
		row   models.CustomerSummary
		spent decimal.Decimal
	}
	byCustomer := map[string]*acc{}
	var ids []string
	for _, order := range orders {
		a, ok := byCustomer[order.Customer_id]
		if !ok {
			a = &acc{row: models.CustomerSummary{Customer_id: order.Customer_id}, spent: decimal.Zero}
			byCustomer[order.Customer_id] = a
			ids = append(ids, order.Customer_id)
		}
		a.spent = a.spent.Add(decimal.NewFromFloat(order.Total))
		a.row.Order_count++
		if !order.Created_at.Before(a.row.Last_order_date) {
			a.row.Last_order_date = order.Created_at
			a.row.Customer_name = order.Customer_name
			if order.Customer_email != nil {
				a.row.Customer_email = *order.Customer_email
			}
		}
	}

	rows := make([]models.CustomerSummary, 0, len(ids))
	for _, id := range ids {
		a := byCustomer[id]
		a.row.Total_spent = toFloat(a.spent)
		a.row.Average_order_value = toFloat(average(a.spent, a.row.Order_count))
		a.row.Is_vip = vip.IsVip(a.row.Order_count, a.row.Total_spent)
		rows = append(rows, a.row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total_spent > rows[j].Total_spent })
	return rows
}

// mode returns the most frequent value, the earliest one on a tie.
func mode(values []string) string {
	if len(values) == 0 {
		return models.NoFavorite
	}
	counts := map[string]int{}
	best, bestCount := "", 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
