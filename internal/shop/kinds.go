package shop

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mikelcalvo/admin-cli/internal/requester"
)

var validate = validator.New()

// Column is a list table column.
type Column struct {
	Key   string
	Title string
	Width int
}

// Field is an editable or filterable attribute of a resource.
type Field struct {
	Key   string
	Label string
	// Rule is a validator tag checked against the raw form value.
	Rule    string
	Numeric bool
	Choices []Choice
}

// Kind describes how a resource is listed, filtered and edited.
type Kind struct {
	Endpoint     requester.Endpoint
	Title        string
	Singular     string
	Columns      []Column
	Fields       []Field
	Filters      []Field
	HasAnalytics bool
}

var kinds = []Kind{
	{
		Endpoint: Products,
		Title:    "Products",
		Singular: "Product",
		Columns: []Column{
			{"id", "#", 5},
			{"name", "Name", 24},
			{"cost", "Cost (USD)", 11},
			{"price", "Price (USD)", 11},
			{"stock", "Stock", 8},
			{"unit_symbol", "Unit", 5},
			{"category_name", "Category", 16},
			{"added_on", "Added", 19},
		},
		Fields: []Field{
			{Key: "name", Label: "Name", Rule: "required,max=100"},
			{Key: "description", Label: "Description"},
			{Key: "cost", Label: "Cost", Rule: "required,numeric", Numeric: true},
			{Key: "price", Label: "Price", Rule: "required,numeric", Numeric: true},
			{Key: "stock", Label: "Stock", Rule: "omitempty,numeric", Numeric: true},
			{Key: "category", Label: "Category ID", Rule: "required,number", Numeric: true},
		},
		Filters: []Field{
			{Key: "name", Label: "Name"},
			{Key: "category", Label: "Category ID", Rule: "omitempty,number"},
		},
		HasAnalytics: true,
	},
	{
		Endpoint: Categories,
		Title:    "Categories",
		Singular: "Category",
		Columns: []Column{
			{"id", "#", 5},
			{"name", "Name", 20},
			{"description", "Description", 30},
			{"added_on", "Added", 19},
			{"last_updated", "Updated", 19},
		},
		Fields: []Field{
			{Key: "name", Label: "Name", Rule: "required,max=100"},
			{Key: "description", Label: "Description"},
		},
		Filters: []Field{
			{Key: "name", Label: "Name"},
		},
		HasAnalytics: true,
	},
	{
		Endpoint: Orders,
		Title:    "Orders",
		Singular: "Order",
		Columns: []Column{
			{"id", "#", 5},
			{"customer_full_name", "Customer", 22},
			{"payment_status", "Payment", 11},
			{"order_status", "Status", 10},
			{"total", "Total (USD)", 12},
			{"datetime", "Date", 19},
		},
		Fields: []Field{
			{Key: "customer", Label: "Customer ID", Rule: "required,number", Numeric: true},
			{Key: "payment_status", Label: "Payment status", Rule: "omitempty,oneof=0 1 2 3 4", Numeric: true, Choices: PaymentStatusChoices()},
			{Key: "order_status", Label: "Order status", Rule: "omitempty,oneof=0 1 2 3", Numeric: true, Choices: OrderStatusChoices()},
		},
		Filters: []Field{
			{Key: "customer", Label: "Customer ID", Rule: "omitempty,number"},
			{Key: "payment_status", Label: "Payment status", Rule: "omitempty,oneof=0 1 2 3 4", Choices: PaymentStatusChoices()},
			{Key: "order_status", Label: "Order status", Rule: "omitempty,oneof=0 1 2 3", Choices: OrderStatusChoices()},
		},
	},
	{
		Endpoint: OrderItems,
		Title:    "Order Items",
		Singular: "Order Item",
		Columns: []Column{
			{"id", "#", 5},
			{"order", "Order", 6},
			{"product_name", "Product", 24},
			{"quantity", "Quantity", 9},
			{"product_unit", "Unit", 5},
			{"price", "Price (USD)", 11},
			{"sub_total", "Sub Total (USD)", 15},
		},
		Fields: []Field{
			{Key: "order", Label: "Order ID", Rule: "required,number", Numeric: true},
			{Key: "product", Label: "Product ID", Rule: "required,number", Numeric: true},
			{Key: "quantity", Label: "Quantity", Rule: "required,numeric", Numeric: true},
		},
		Filters: []Field{
			{Key: "order", Label: "Order ID", Rule: "omitempty,number"},
			{Key: "product", Label: "Product ID", Rule: "omitempty,number"},
		},
	},
	{
		Endpoint: Customers,
		Title:    "Customers",
		Singular: "Customer",
		Columns: []Column{
			{"id", "#", 5},
			{"first_name", "First Name", 14},
			{"last_name", "Last Name", 14},
			{"alias", "Alias", 12},
			{"id_card", "ID Card", 12},
			{"email", "Email", 24},
			{"phone", "Phone", 14},
			{"added_on", "Added", 19},
		},
		Fields: []Field{
			{Key: "first_name", Label: "First name", Rule: "required,max=50"},
			{Key: "last_name", Label: "Last name", Rule: "required,max=50"},
			{Key: "alias", Label: "Alias"},
			{Key: "id_card", Label: "ID card"},
			{Key: "email", Label: "Email", Rule: "omitempty,email"},
			{Key: "phone", Label: "Phone", Rule: "omitempty,max=20"},
		},
		Filters: []Field{
			{Key: "first_name", Label: "First name"},
			{Key: "last_name", Label: "Last name"},
			{Key: "alias", Label: "Alias"},
			{Key: "id_card", Label: "ID card"},
		},
	},
	{
		Endpoint: Employees,
		Title:    "Employees",
		Singular: "Employee",
		Columns: []Column{
			{"id", "#", 5},
			{"first_name", "First Name", 14},
			{"last_name", "Last Name", 14},
			{"id_card", "ID Card", 12},
			{"email", "Email", 24},
			{"phone", "Phone", 14},
			{"added_on", "Added", 19},
		},
		Fields: []Field{
			{Key: "first_name", Label: "First name", Rule: "required,max=50"},
			{Key: "last_name", Label: "Last name", Rule: "required,max=50"},
			{Key: "id_card", Label: "ID card"},
			{Key: "email", Label: "Email", Rule: "omitempty,email"},
			{Key: "phone", Label: "Phone", Rule: "omitempty,max=20"},
		},
		Filters: []Field{
			{Key: "first_name", Label: "First name"},
			{Key: "last_name", Label: "Last name"},
			{Key: "id_card", Label: "ID card"},
		},
	},
}

// Kinds returns the description of every resource, in menu order.
func Kinds() []Kind {
	return kinds
}

// KindFor looks up a resource by endpoint name.
func KindFor(e requester.Endpoint) (Kind, bool) {
	for _, k := range kinds {
		if k.Endpoint == e {
			return k, true
		}
	}
	return Kind{}, false
}

// Payload validates form values and converts them into a request body.
// With partial set (updates), blank values are left out instead of being
// checked against the field rule.
func (k Kind) Payload(values map[string]string, partial bool) (map[string]any, error) {
	body := make(map[string]any)
	var errs []error

	for _, f := range k.Fields {
		v := strings.TrimSpace(values[f.Key])
		if v == "" && partial {
			continue
		}
		if err := checkField(f, v); err != nil {
			errs = append(errs, err)
			continue
		}
		if v == "" {
			continue
		}
		if f.Numeric {
			n, err := jsonNumber(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", f.Label, err))
				continue
			}
			body[f.Key] = n
		} else {
			body[f.Key] = v
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return body, nil
}

// FilterSet validates filter form values. Blank values are kept: dropping them is
// the encoder's job.
func (k Kind) FilterSet(values map[string]string) (requester.Filters, error) {
	filters := make(requester.Filters, len(k.Filters))
	var errs []error

	for _, f := range k.Filters {
		v := strings.TrimSpace(values[f.Key])
		if err := checkField(f, v); err != nil {
			errs = append(errs, err)
			continue
		}
		filters[f.Key] = v
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return filters, nil
}

// DetailKeys lists the list columns present in row first, then every other scalar
// field sorted.
func (k Kind) DetailKeys(row Row) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, c := range k.Columns {
		if _, ok := row[c.Key]; ok {
			keys = append(keys, c.Key)
			seen[c.Key] = true
		}
	}

	var rest []string
	for key, v := range row {
		if seen[key] {
			continue
		}
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		rest = append(rest, key)
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// KeyLabel turns a field name into a label: "id_card" -> "ID Card".
func KeyLabel(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "id" {
			words[i] = "ID"
			continue
		}
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// jsonNumber keeps v as typed when it is already a JSON number literal and
// rewrites forms the validator accepts but JSON does not ("+5", "007").
func jsonNumber(v string) (json.Number, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) {
		return "", fmt.Errorf("%q is not a number", v)
	}
	if json.Valid([]byte(v)) {
		return json.Number(v), nil
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

func checkField(f Field, v string) error {
	if f.Rule == "" {
		return nil
	}
	if err := validate.Var(v, f.Rule); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s: failed %q check", f.Label, verrs[0].Tag())
		}
		return fmt.Errorf("%s: %w", f.Label, err)
	}
	return nil
}
