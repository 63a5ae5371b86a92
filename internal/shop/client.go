// Package shop describes the resources exposed by the shop admin API and wires a
// generated client for each of them.
package shop

import "github.com/mikelcalvo/admin-cli/internal/requester"

// Resource endpoints
const (
	Products   requester.Endpoint = "products"
	Categories requester.Endpoint = "categories"
	Orders     requester.Endpoint = "orders"
	OrderItems requester.Endpoint = "order-items"
	Customers  requester.Endpoint = "customers"
	Employees  requester.Endpoint = "employees"
)

// Endpoints lists every resource in menu order.
var Endpoints = []requester.Endpoint{Products, Categories, Orders, OrderItems, Customers, Employees}

// Client bundles the generated clients of every shop resource. It is built once and
// shared; none of its members hold state between calls.
type Client struct {
	Products   *requester.Resource
	Categories *requester.Resource
	Orders     *requester.Resource
	OrderItems *requester.Resource
	Customers  *requester.Resource
	Employees  *requester.Resource

	factory   *requester.Factory
	resources map[requester.Endpoint]*requester.Resource
}

// NewClient generates the resource clients from f.
func NewClient(f *requester.Factory) *Client {
	c := &Client{
		factory:   f,
		resources: make(map[requester.Endpoint]*requester.Resource, len(Endpoints)),
	}
	for _, e := range Endpoints {
		c.resources[e] = f.ForEndpoint(e)
	}

	c.Products = c.resources[Products]
	c.Categories = c.resources[Categories]
	c.Orders = c.resources[Orders]
	c.OrderItems = c.resources[OrderItems]
	c.Customers = c.resources[Customers]
	c.Employees = c.resources[Employees]
	return c
}

// Resource returns the client for e.
func (c *Client) Resource(e requester.Endpoint) (*requester.Resource, bool) {
	r, ok := c.resources[e]
	return r, ok
}

// BaseURL returns the API root every resource is served under.
func (c *Client) BaseURL() string {
	return c.factory.BaseURL()
}
