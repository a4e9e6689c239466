package models

import "time"

const NoFavorite = "None"

type CustomerInsight struct {
	Customer_id     string    `json:"customer_id"`
	Total_spent     float64   `json:"totalSpent"`
	Order_count     int       `json:"orderCount"`
	Favorite_drink  string    `json:"favoriteDrink"`
	Favorite_milk   string    `json:"favoriteMilk"`
	Last_order_date time.Time `json:"lastOrderDate"`
	Is_vip          bool      `json:"isVip"`
}

type CustomerSummary struct {
	Customer_id         string    `json:"customer_id"`
	Customer_name       string    `json:"customer_name"`
	Customer_email      string    `json:"customer_email,omitempty"`
	Total_spent         float64   `json:"totalSpent"`
	Order_count         int       `json:"orderCount"`
	Average_order_value float64   `json:"averageOrderValue"`
	Last_order_date     time.Time `json:"lastOrderDate"`
	Is_vip              bool      `json:"isVip"`
}

type DailySales struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type ItemPopularity struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type RevenueReport struct {
	Days                int          `json:"days"`
	Total_revenue       float64      `json:"totalRevenue"`
	Total_orders        int          `json:"totalOrders"`
	Average_order_value float64      `json:"averageOrderValue"`
	Sales_by_date       []DailySales `json:"salesByDate"`
}
