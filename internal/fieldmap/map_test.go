package fieldmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSetKeepsInsertionOrder(t *testing.T) {
	var m Map
	m.Set("package", String("10"))
	m.Set("companyName", String("Acme"))
	m.Set("package", String("12"))

	assert.Equal(t, []string{"package", "companyName"}, m.Keys())
	value, ok := m.Get("package")
	require.True(t, ok)
	assert.Equal(t, "12", value.String())
}

func TestMapJSONPreservesOrderAndKinds(t *testing.T) {
	raw := `{"zeta":"z","isContacted":true,"count":3.5,"assignedOfficerId":null,"alpha":"a"}`

	var m Map
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	assert.Equal(t, []string{"zeta", "isContacted", "count", "assignedOfficerId", "alpha"}, m.Keys())

	contacted, _ := m.Get("isContacted")
	assert.Equal(t, KindBool, contacted.Kind())
	count, _ := m.Get("count")
	n, ok := count.AsNumber()
	require.True(t, ok)
	assert.Equal(t, 3.5, n)
	officer, _ := m.Get("assignedOfficerId")
	assert.True(t, officer.IsNull())

	encoded, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(encoded))
	assert.Equal(t, `{"zeta":"z","isContacted":true,"count":3.5,"assignedOfficerId":null,"alpha":"a"}`, string(encoded))
}

func TestMapRejectsNestedValues(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "object value", raw: `{"remarks":{"nested":true}}`},
		{name: "array value", raw: `{"remarks":["a","b"]}`},
		{name: "not an object", raw: `["remarks"]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var m Map
			assert.Error(t, json.Unmarshal([]byte(tc.raw), &m))
		})
	}
}

func TestMapNullDecodesEmpty(t *testing.T) {
	m := FromEntries(Entry{Key: "a", Value: String("b")})
	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Equal(t, 0, m.Len())
}

func TestMapCloneIsIndependent(t *testing.T) {
	original := FromEntries(Entry{Key: "package", Value: String("10")})
	clone := original.Clone()
	clone.Set("package", String("12"))

	value, _ := original.Get("package")
	assert.Equal(t, "10", value.String())
	assert.False(t, original.Equal(clone))
}

func TestMapScan(t *testing.T) {
	var m Map
	require.NoError(t, m.Scan([]byte(`{"b":1,"a":false}`)))
	assert.Equal(t, []string{"b", "a"}, m.Keys())

	stored, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":false}`, stored)

	assert.Error(t, m.Scan(42))
}

func TestValueEqual(t *testing.T) {
	assert.True(t, String("x").Equal(String("x")))
	assert.False(t, String("true").Equal(Bool(true)))
	assert.True(t, Null().Equal(Value{}))
	assert.False(t, Number(1).Equal(Number(2)))
}
