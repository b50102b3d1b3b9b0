package dto

import "time"

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID         int64          `json:"id"`
	Barcode    string         `json:"barcode"`
	Customer   CustomerInfo   `json:"customer"`
	Laundry    LaundryInfo    `json:"laundry"`
	Service    string         `json:"service"`
	Weight     string         `json:"weight"`
	TotalPrice string         `json:"total_price"`
	Note       string         `json:"note,omitempty"`
	Status     string         `json:"status"`
	Scope      string         `json:"scope"`
	Display    StatusDisplay  `json:"display"`
	OrderDate  *time.Time     `json:"order_date,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CustomerInfo is the embedded customer block of an order response.
type CustomerInfo struct {
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Username string `json:"username,omitempty"`
}

// LaundryInfo is the embedded branch block of an order response.
type LaundryInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// StatusDisplay mirrors the status presentation mapping for clients.
type StatusDisplay struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Label string `json:"label"`
}

// OrderListResponse wraps a page of orders.
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Total  int             `json:"total"`
}

// OrderStatsResponse aggregates dashboard counters.
type OrderStatsResponse struct {
	TotalOrders    int            `json:"total_orders"`
	ActiveOrders   int            `json:"active_orders"`
	HistoryOrders  int            `json:"history_orders"`
	OrdersByStatus map[string]int `json:"orders_by_status"`
	TodayOrders    int            `json:"today_orders"`
	TodayRevenue   int64          `json:"today_revenue"`
}
