package shop

import "encoding/json"

// Money and quantity fields are declared as json.Number: the API serializes decimals
// as strings ("12.50") but integers as numbers, and both decode into it.

// Product is a sellable item.
type Product struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Cost         json.Number `json:"cost"`
	Price        json.Number `json:"price"`
	Stock        json.Number `json:"stock"`
	UnitSymbol   string      `json:"unit_symbol,omitempty"`
	Category     int         `json:"category"`
	CategoryName string      `json:"category_name,omitempty"`
	AddedOn      string      `json:"added_on,omitempty"`
	LastUpdated  string      `json:"last_updated,omitempty"`
}

// Category groups products.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AddedOn     string `json:"added_on,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// Order is a customer purchase.
type Order struct {
	ID               int           `json:"id"`
	Customer         int           `json:"customer"`
	CustomerFullName string        `json:"customer_full_name,omitempty"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	OrderStatus      OrderStatus   `json:"order_status"`
	Total            json.Number   `json:"total"`
	Datetime         string        `json:"datetime,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID          int         `json:"id"`
	Order       int         `json:"order"`
	Product     int         `json:"product"`
	ProductName string      `json:"product_name,omitempty"`
	ProductUnit string      `json:"product_unit,omitempty"`
	Quantity    json.Number `json:"quantity"`
	Price       json.Number `json:"price"`
	SubTotal    json.Number `json:"sub_total"`
}

// Customer buys from the shop.
type Customer struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Alias     string `json:"alias,omitempty"`
	IDCard    string `json:"id_card,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AddedOn   string `json:"added_on,omitempty"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return joinName(c.FirstName, c.LastName)
}

// Employee works for the shop.
type Employee struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IDCard    string `json:"id_card,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AddedOn   string `json:"added_on,omitempty"`
}

// ProductAnalytics is the sales summary of one product.
type ProductAnalytics struct {
	TotalSold        json.Number      `json:"total_sold"`
	UnitSymbol       string           `json:"unit_symbol"`
	TotalRevenue     json.Number      `json:"total_revenue"`
	TotalCustomers   json.Number      `json:"total_customers"`
	AvgOrderQuantity json.Number      `json:"avg_order_quantity"`
	MinOrderQuantity json.Number      `json:"min_order_quantity"`
	MaxOrderQuantity json.Number      `json:"max_order_quantity"`
	TopCustomers     []TopCustomer    `json:"top_customers"`
	LatestPurchases  []LatestPurchase `json:"latest_purchases"`
}

// CategoryAnalytics is the sales summary of one category.
type CategoryAnalytics struct {
	TotalProducts  json.Number   `json:"total_products"`
	TotalSold      json.Number   `json:"total_sold"`
	TotalRevenue   json.Number   `json:"total_revenue"`
	TotalCustomers json.Number   `json:"total_customers"`
	TopCustomers   []TopCustomer `json:"top_customers"`
	TopProducts    []TopProduct  `json:"top_products"`
}

// TopCustomer is a row of the best-customers tables. Product analytics fill
// LastPurchased, category analytics fill LastPurchase.
type TopCustomer struct {
	FirstName     string      `json:"order__customer__first_name"`
	LastName      string      `json:"order__customer__last_name"`
	TotalQuantity json.Number `json:"total_quantity"`
	TotalSpent    json.Number `json:"total_spent,omitempty"`
	TotalRevenue  json.Number `json:"total_revenue,omitempty"`
	LastPurchased string      `json:"last_purchased,omitempty"`
	LastPurchase  string      `json:"last_purchase,omitempty"`
}

// FullName joins first and last name.
func (t TopCustomer) FullName() string {
	return joinName(t.FirstName, t.LastName)
}

// LastPurchaseTime returns whichever purchase timestamp the API sent.
func (t TopCustomer) LastPurchaseTime() string {
	if t.LastPurchased != "" {
		return t.LastPurchased
	}
	return t.LastPurchase
}

// LatestPurchase is a recent sale of a product.
type LatestPurchase struct {
	FirstName string      `json:"order__customer__first_name"`
	LastName  string      `json:"order__customer__last_name"`
	Quantity  json.Number `json:"quantity"`
	Datetime  string      `json:"datetime"`
}

// FullName joins first and last name.
func (l LatestPurchase) FullName() string {
	return joinName(l.FirstName, l.LastName)
}

// TopProduct is a best-selling product within a category.
type TopProduct struct {
	Name           string      `json:"product__name"`
	TotalUnitsSold json.Number `json:"total_units_sold"`
	TotalRevenue   json.Number `json:"total_revenue"`
	LastPurchased  string      `json:"last_purchased"`
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}
