package bridge

import (
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rail-service/bridge_sdk/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestMaterializer(t *testing.T) *Materializer {
	return NewMaterializer(DefaultRegistry(), zaptest.NewLogger(t))
}

func TestMaterialize_ListTakesPriority(t *testing.T) {
	m := newTestMaterializer(t)

	out := m.Materialize(map[string]any{
		"object": "customer",
		"data": []any{
			map[string]any{"id": "w1", "chain": "base", "address": "0x1"},
		},
	}, "")

	list, ok := out.(*List)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, ListType, list.Type())
	assert.Equal(t, 1, list.Count())
	assert.False(t, list.HasMore())
	assert.IsType(t, &Wallet{}, list.First())
}

func TestMaterialize_ObjectFieldBeatsHint(t *testing.T) {
	m := newTestMaterializer(t)

	out := m.Materialize(map[string]any{"object": "wallet", "id": "w1"}, TypeCustomer)

	wallet, ok := out.(*Wallet)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, "w1", wallet.ID())
}

func TestMaterialize_HeuristicWallet(t *testing.T) {
	m := newTestMaterializer(t)

	out := m.Materialize(map[string]any{"id": "w1", "chain": "ethereum", "address": "0xabc"}, "")

	wallet, ok := out.(*Wallet)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, PaymentRailEthereum, wallet.Chain())
	assert.Equal(t, "0xabc", wallet.Address())
}

func TestMaterialize_ScalarsPassThrough(t *testing.T) {
	m := newTestMaterializer(t)

	for _, v := range []any{"abc", json.Number("42"), true, nil, 3.5} {
		assert.Equal(t, v, m.Materialize(v, TypeWallet))
	}
}

func TestMaterialize_Idempotent(t *testing.T) {
	m := newTestMaterializer(t)

	inputs := []any{
		map[string]any{"id": "w1", "chain": "base", "address": "0x1"},
		map[string]any{"data": []any{map[string]any{"id": "c1", "email": "a@b.co"}}, "count": json.Number("1")},
		map[string]any{"meta": map[string]any{"page": json.Number("1")}},
		[]any{map[string]any{"object": "webhook", "id": "wh1"}, "x"},
	}

	for _, in := range inputs {
		once := m.Materialize(in, "")
		twice := m.Materialize(once, "")
		assert.Equal(t, attributeView(once), attributeView(twice))
	}
}

func TestMaterialize_UntypedObjectsRecurseWithoutHint(t *testing.T) {
	m := newTestMaterializer(t)
	before := testutil.ToFloat64(metrics.MaterializeUnmatchedTotal)

	out := m.Materialize(map[string]any{
		"meta":   map[string]any{"page": json.Number("1")},
		"wallet": map[string]any{"id": "w1", "chain": "base", "address": "0x1"},
		"plain":  map[string]any{"id": "x1"},
	}, TypeCustomer)

	// The hint applies to the top level only, so the outer map is a customer.
	customer, ok := out.(*Customer)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, "1", customer.Attributes().Map("meta").String("page"))

	out = m.Materialize(map[string]any{
		"meta":   map[string]any{"page": json.Number("1")},
		"wallet": map[string]any{"id": "w1", "chain": "base", "address": "0x1"},
	}, "")

	attrs, ok := out.(Attributes)
	require.True(t, ok, "got %T", out)
	assert.IsType(t, &Wallet{}, attrs["wallet"])
	assert.IsType(t, Attributes{}, attrs["meta"])
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.MaterializeUnmatchedTotal)-before, 2.0)
}

func TestMaterialize_ResourcesKeepNestedMaps(t *testing.T) {
	m := newTestMaterializer(t)

	out := m.Materialize(map[string]any{
		"object":      "virtual_account",
		"id":          "va1",
		"destination": map[string]any{"id": "w1", "chain": "base", "address": "0x1"},
	}, "")

	va, ok := out.(*VirtualAccount)
	require.True(t, ok)
	assert.Equal(t, "base", va.Destination().String("chain"))
	raw, _ := va.Get("destination")
	assert.IsType(t, Attributes{}, raw)
}

func TestMaterialize_ListItemsUseHint(t *testing.T) {
	m := newTestMaterializer(t)

	out := m.Materialize(map[string]any{
		"data":     []any{map[string]any{"id": "tx1"}, map[string]any{"id": "tx2"}},
		"has_more": true,
		"count":    json.Number("10"),
	}, TypeTransactionHistory)

	list, ok := out.(*List)
	require.True(t, ok)
	assert.Equal(t, 10, list.Count())
	assert.Equal(t, 2, list.Len())
	assert.True(t, list.HasMore())
	for _, obj := range list.Objects() {
		assert.IsType(t, &TransactionHistory{}, obj)
	}
}

func TestMaterialize_ArraysElementWise(t *testing.T) {
	m := newTestMaterializer(t)

	out := m.Materialize([]map[string]any{
		{"id": "w1", "chain": "base", "address": "0x1"},
		{"unrelated": true},
	}, "")

	items, ok := out.([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.IsType(t, &Wallet{}, items[0])
	assert.Equal(t, Attributes{"unrelated": true}, items[1])
}

// attributeView flattens objects so results can be compared attribute-wise
func attributeView(v any) any {
	switch t := v.(type) {
	case Object:
		out := map[string]any{"__type": t.Type()}
		for k, val := range t.Attributes() {
			out[k] = attributeView(val)
		}
		return out
	case Attributes:
		out := map[string]any{}
		for k, val := range t {
			out[k] = attributeView(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = attributeView(item)
		}
		return out
	}
	return v
}
