package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikelcalvo/admin-cli/internal/shop"
)

func TestCommandsRegistered(t *testing.T) {
	root := NewRootCmd()

	expected := map[string]bool{
		"login":       false,
		"logout":      false,
		"whoami":      false,
		"config":      false,
		"ping":        false,
		"tui":         false,
		"products":    false,
		"categories":  false,
		"orders":      false,
		"order-items": false,
		"customers":   false,
		"employees":   false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := expected[cmd.Name()]; ok {
			expected[cmd.Name()] = true
		}
	}

	for name, found := range expected {
		assert.True(t, found, "expected command '%s' to be registered with root command", name)
	}
}

func TestResourceSubcommands(t *testing.T) {
	root := NewRootCmd()

	for _, kind := range shop.Kinds() {
		t.Run(string(kind.Endpoint), func(t *testing.T) {
			for _, sub := range []string{"list", "get", "create", "update"} {
				cmd, _, err := root.Find([]string{string(kind.Endpoint), sub})
				require.NoError(t, err)
				assert.Equal(t, sub, cmd.Name())
			}

			cmd, _, err := root.Find([]string{string(kind.Endpoint), "analytics"})
			require.NoError(t, err)
			if kind.HasAnalytics {
				assert.Equal(t, "analytics", cmd.Name())
			} else {
				assert.Equal(t, string(kind.Endpoint), cmd.Name())
			}
		})
	}
}

func TestPersistentFlags(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"config", "profile", "output", "verbose"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "table", root.PersistentFlags().Lookup("output").DefValue)
}

func TestListHelpNamesFilters(t *testing.T) {
	root := NewRootCmd()
	cmd, _, err := root.Find([]string{"orders", "list"})
	require.NoError(t, err)

	assert.Contains(t, cmd.Long, "payment_status")
	assert.Contains(t, cmd.Long, "2=Successful")
	assert.NotNil(t, cmd.Flags().Lookup("filter"))
}

func TestParsePairs(t *testing.T) {
	fields := []shop.Field{{Key: "name"}, {Key: "alias"}}

	values, err := parsePairs("field", []string{"name=Ana=Maria", "alias="}, fields)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "Ana=Maria", "alias": ""}, values)

	_, err = parsePairs("field", []string{"=x"}, fields)
	assert.Error(t, err)
}

func TestParseData(t *testing.T) {
	body, err := parseData(`{"price": 12.50}`)
	require.NoError(t, err)
	assert.Equal(t, json.Number("12.50"), body["price"])

	_, err = parseData(`[1,2]`)
	assert.Error(t, err)
	_, err = parseData(`{}`)
	assert.Error(t, err)
}
