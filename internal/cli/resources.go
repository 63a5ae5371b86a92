package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikelcalvo/admin-cli/internal/cli/output"
	"github.com/mikelcalvo/admin-cli/internal/requester"
	"github.com/mikelcalvo/admin-cli/internal/shop"
)

func (a *app) newResourceCmd(kind shop.Kind) *cobra.Command {
	name := string(kind.Endpoint)
	title := strings.ToLower(kind.Title)

	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Manage %s", title),
		Long:  fmt.Sprintf("List, inspect, create and update %s.", title),
	}

	cmd.AddCommand(
		a.newListCmd(kind),
		a.newGetCmd(kind),
		a.newCreateCmd(kind),
		a.newUpdateCmd(kind),
	)
	if kind.HasAnalytics {
		cmd.AddCommand(a.newAnalyticsCmd(kind))
	}
	return cmd
}

// resource returns the client of kind, or an error when the profile is not logged in.
func (a *app) resource(kind shop.Kind) (*requester.Resource, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	res, ok := client.Resource(kind.Endpoint)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", kind.Endpoint)
	}
	return res, nil
}

func (a *app) newListCmd(kind shop.Kind) *cobra.Command {
	var pairs []string
	title := strings.ToLower(kind.Title)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List " + title,
		Long:    fmt.Sprintf("List %s. Filters are given as key=value; empty values are ignored.\n\nFilters:\n%s", title, fieldHelp(kind.Filters)),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parsePairs("filter", pairs, kind.Filters)
			if err != nil {
				return err
			}
			filters, err := kind.FilterSet(values)
			if err != nil {
				return err
			}

			res, err := a.resource(kind)
			if err != nil {
				return err
			}
			resp, err := res.List(cmd.Context(), filters)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", title, err)
			}
			var rows []shop.Row
			if err := shop.Decode(resp, &rows); err != nil {
				return fmt.Errorf("failed to list %s: %w", title, describe(err))
			}

			if handled, err := a.out.Structured(rows); handled {
				return err
			}
			if len(rows) == 0 {
				a.out.Info("No %s found", title)
				return nil
			}
			a.renderRows(kind, rows)
			a.out.Info("\n%d %s", len(rows), title)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&pairs, "filter", "f", nil, "filter as key=value (repeatable)")
	return cmd
}

func (a *app) renderRows(kind shop.Kind, rows []shop.Row) {
	headers := make([]string, len(kind.Columns))
	for i, c := range kind.Columns {
		headers[i] = c.Title
	}
	table := output.NewTable(headers...)
	for _, row := range rows {
		cells := make([]string, len(kind.Columns))
		for i, c := range kind.Columns {
			cells[i] = shop.FormatCell(c.Key, row[c.Key])
		}
		table.AddRow(cells...)
	}
	table.Render(a.out.Out)
}

func (a *app) newGetCmd(kind shop.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s", strings.ToLower(kind.Singular)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			res, err := a.resource(kind)
			if err != nil {
				return err
			}

			resp, err := res.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get %s %s: %w", strings.ToLower(kind.Singular), id, err)
			}
			var row shop.Row
			if err := shop.Decode(resp, &row); err != nil {
				return fmt.Errorf("failed to get %s %s: %w", strings.ToLower(kind.Singular), id, describe(err))
			}

			if handled, err := a.out.Structured(row); handled {
				return err
			}

			a.out.Info("%s #%s", kind.Singular, row.ID())
			for _, key := range kind.DetailKeys(row) {
				a.out.Field(shop.KeyLabel(key), shop.FormatCell(key, row[key]))
			}

			if kind.Endpoint == shop.Orders {
				return a.printOrderItems(cmd, id)
			}
			return nil
		},
	}
}

func (a *app) printOrderItems(cmd *cobra.Command, orderID string) error {
	items, _ := shop.KindFor(shop.OrderItems)
	res, err := a.resource(items)
	if err != nil {
		return err
	}
	resp, err := res.List(cmd.Context(), requester.Filters{"order": orderID})
	if err != nil {
		return fmt.Errorf("failed to list order items: %w", err)
	}
	var rows []shop.Row
	if err := shop.Decode(resp, &rows); err != nil {
		return fmt.Errorf("failed to list order items: %w", describe(err))
	}

	fmt.Fprintln(a.out.Out)
	if len(rows) == 0 {
		a.out.Info("No items")
		return nil
	}
	a.out.Info("Items")
	a.renderRows(items, rows)
	return nil
}

func (a *app) newAnalyticsCmd(kind shop.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics <id>",
		Short: fmt.Sprintf("Show the sales analytics of one %s", strings.ToLower(kind.Singular)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			res, err := a.resource(kind)
			if err != nil {
				return err
			}

			resp, err := res.Analytics(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get analytics: %w", err)
			}

			switch kind.Endpoint {
			case shop.Categories:
				var stats shop.CategoryAnalytics
				if err := shop.Decode(resp, &stats); err != nil {
					return fmt.Errorf("failed to get analytics: %w", describe(err))
				}
				if handled, err := a.out.Structured(stats); handled {
					return err
				}
				a.out.Info("%s #%s analytics", kind.Singular, id)
				a.printCategoryAnalytics(stats)

			default:
				var stats shop.ProductAnalytics
				if err := shop.Decode(resp, &stats); err != nil {
					return fmt.Errorf("failed to get analytics: %w", describe(err))
				}
				if handled, err := a.out.Structured(stats); handled {
					return err
				}
				a.out.Info("%s #%s analytics", kind.Singular, id)
				a.printProductAnalytics(stats)
			}
			return nil
		},
	}
}

func (a *app) printProductAnalytics(s shop.ProductAnalytics) {
	unit := ""
	if s.UnitSymbol != "" {
		unit = " " + s.UnitSymbol
	}
	a.out.Field("Total sold", shop.Number(s.TotalSold)+unit)
	a.out.Field("Total revenue", "$"+shop.Number(s.TotalRevenue))
	a.out.Field("Customers", shop.Number(s.TotalCustomers))
	a.out.Field("Avg order qty", shop.Number(s.AvgOrderQuantity))
	a.out.Field("Min order qty", shop.Number(s.MinOrderQuantity))
	a.out.Field("Max order qty", shop.Number(s.MaxOrderQuantity))

	fmt.Fprintln(a.out.Out)
	a.out.Info("Top customers")
	if len(s.TopCustomers) == 0 {
		a.out.Info("  No purchases yet")
	} else {
		t := output.NewTable("Customer", "Quantity", "Spent (USD)", "Last purchase")
		for _, c := range s.TopCustomers {
			t.AddRow(c.FullName(), shop.Number(c.TotalQuantity), shop.Number(c.TotalSpent), shop.FormatDateTime(c.LastPurchaseTime()))
		}
		t.Render(a.out.Out)
	}

	fmt.Fprintln(a.out.Out)
	a.out.Info("Latest purchases")
	if len(s.LatestPurchases) == 0 {
		a.out.Info("  No purchases yet")
	} else {
		t := output.NewTable("Customer", "Quantity", "Date")
		for _, p := range s.LatestPurchases {
			t.AddRow(p.FullName(), shop.Number(p.Quantity), shop.FormatDateTime(p.Datetime))
		}
		t.Render(a.out.Out)
	}
}

func (a *app) printCategoryAnalytics(s shop.CategoryAnalytics) {
	a.out.Field("Products", shop.Number(s.TotalProducts))
	a.out.Field("Total sold", shop.Number(s.TotalSold))
	a.out.Field("Total revenue", "$"+shop.Number(s.TotalRevenue))
	a.out.Field("Customers", shop.Number(s.TotalCustomers))

	fmt.Fprintln(a.out.Out)
	a.out.Info("Top customers")
	if len(s.TopCustomers) == 0 {
		a.out.Info("  No purchases yet")
	} else {
		t := output.NewTable("Customer", "Quantity", "Revenue (USD)", "Last purchase")
		for _, c := range s.TopCustomers {
			t.AddRow(c.FullName(), shop.Number(c.TotalQuantity), shop.Number(c.TotalRevenue), shop.FormatDateTime(c.LastPurchaseTime()))
		}
		t.Render(a.out.Out)
	}

	fmt.Fprintln(a.out.Out)
	a.out.Info("Top products")
	if len(s.TopProducts) == 0 {
		a.out.Info("  No sales yet")
	} else {
		t := output.NewTable("Product", "Units sold", "Revenue (USD)", "Last purchase")
		for _, p := range s.TopProducts {
			t.AddRow(p.Name, shop.Number(p.TotalUnitsSold), shop.Number(p.TotalRevenue), shop.FormatDateTime(p.LastPurchased))
		}
		t.Render(a.out.Out)
	}
}

// writeFlags are the body flags shared by create and update.
type writeFlags struct {
	pairs []string
	data  string
}

func (w *writeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&w.pairs, "set", "s", nil, "field as key=value (repeatable), checked locally")
	cmd.Flags().StringVarP(&w.data, "data", "d", "", "raw JSON object, or @file, sent as is")
	cmd.MarkFlagsMutuallyExclusive("set", "data")
}

// body builds the request body. --set values go through the same checks as the
// dashboard forms; --data is passed through for the API to judge.
func (w *writeFlags) body(kind shop.Kind, partial bool) (map[string]any, error) {
	if w.data != "" {
		return parseData(w.data)
	}
	if len(w.pairs) == 0 {
		return nil, errors.New("nothing to send, use --set key=value or --data '{...}'")
	}

	values, err := parsePairs("field", w.pairs, kind.Fields)
	if err != nil {
		return nil, err
	}
	body, err := kind.Payload(values, partial)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("nothing to update")
	}
	return body, nil
}

func (a *app) newCreateCmd(kind shop.Kind) *cobra.Command {
	var w writeFlags
	singular := strings.ToLower(kind.Singular)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + singular,
		Long:  fmt.Sprintf("Create a %s.\n\nFields:\n%s", singular, fieldHelp(kind.Fields)),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := w.body(kind, false)
			if err != nil {
				return err
			}
			res, err := a.resource(kind)
			if err != nil {
				return err
			}

			resp, err := res.Create(cmd.Context(), body)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", singular, err)
			}
			var row shop.Row
			if err := shop.Decode(resp, &row); err != nil {
				return fmt.Errorf("failed to create %s: %w", singular, describe(err))
			}

			if handled, err := a.out.Structured(row); handled {
				return err
			}
			a.out.Success("Created %s #%s", kind.Singular, row.ID())
			return nil
		},
	}
	w.register(cmd)
	return cmd
}

func (a *app) newUpdateCmd(kind shop.Kind) *cobra.Command {
	var w writeFlags
	singular := strings.ToLower(kind.Singular)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a " + singular,
		Long:  fmt.Sprintf("Update a %s. Only the given fields are sent.\n\nFields:\n%s", singular, fieldHelp(kind.Fields)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			body, err := w.body(kind, true)
			if err != nil {
				return err
			}
			res, err := a.resource(kind)
			if err != nil {
				return err
			}

			resp, err := res.Update(cmd.Context(), id, body)
			if err != nil {
				return fmt.Errorf("failed to update %s %s: %w", singular, id, err)
			}
			var row shop.Row
			if err := shop.Decode(resp, &row); err != nil {
				return fmt.Errorf("failed to update %s %s: %w", singular, id, describe(err))
			}

			if handled, err := a.out.Structured(row); handled {
				return err
			}
			a.out.Success("Updated %s #%s", kind.Singular, id)
			return nil
		},
	}
	w.register(cmd)
	return cmd
}

// parsePairs splits key=value arguments, rejecting keys that are not in fields.
func parsePairs(what string, pairs []string, fields []shop.Field) (map[string]string, error) {
	known := make(map[string]bool, len(fields))
	names := make([]string, len(fields))
	for i, f := range fields {
		known[f.Key] = true
		names[i] = f.Key
	}

	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid %s %q, expected key=value", what, pair)
		}
		if !known[key] {
			return nil, fmt.Errorf("unknown %s %q (available: %s)", what, key, strings.Join(names, ", "))
		}
		values[key] = value
	}
	return values, nil
}

func parseData(data string) (map[string]any, error) {
	raw := []byte(data)
	if path, ok := strings.CutPrefix(data, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		raw = b
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("--data must be a JSON object: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("--data is empty")
	}
	return body, nil
}

func fieldHelp(fields []shop.Field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "  %-16s %s", f.Key, f.Label)
		if len(f.Choices) > 0 {
			parts := make([]string, len(f.Choices))
			for i, c := range f.Choices {
				parts[i] = c.Value + "=" + c.Label
			}
			fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// describe appends the response body of an API error, where validation messages
// usually are.
func describe(err error) error {
	var se *shop.StatusError
	if !errors.As(err, &se) {
		return err
	}
	body := strings.TrimSpace(string(se.Body))
	if body == "" {
		return err
	}
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Errorf("%w: %s", err, body)
}
