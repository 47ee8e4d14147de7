package jsonvalue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"null", `null`},
		{"bool", `true`},
		{"int", `42`},
		{"negative int", `-7`},
		{"float", `3.14`},
		{"string", `"hello"`},
		{"empty array", `[]`},
		{"empty object", `{}`},
		{"nested", `{"schema":{"type":"object","properties":{"id":{"type":"string"}},"required":["id"]},"examples":[1,2.5,null,true]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse([]byte(tt.input))
			require.NoError(t, err)

			encoded, err := json.Marshal(v)
			require.NoError(t, err)

			again, err := Parse(encoded)
			require.NoError(t, err)
			assert.True(t, v.Equal(again), "value changed across a round trip: %s", encoded)
		})
	}
}

func TestParseDistinguishesIntAndFloat(t *testing.T) {
	v, err := Parse([]byte(`10`))
	require.NoError(t, err)
	assert.Equal(t, KindInt, v.Kind())
	i, ok := v.IntValue()
	require.True(t, ok)
	assert.Equal(t, int64(10), i)

	v, err = Parse([]byte(`10.0`))
	require.NoError(t, err)
	assert.Equal(t, KindFloat, v.Kind())

	// Same JSON number regardless of representation.
	intV, _ := Parse([]byte(`10`))
	floatV, _ := Parse([]byte(`10.0`))
	assert.True(t, intV.Equal(floatV))
}

func TestParseRejectsMalformedInput(t *testing.T) {
	tests := []string{
		`{"unterminated": `,
		`[1, 2,,]`,
		`{"a":1} trailing`,
		``,
	}
	for _, input := range tests {
		_, err := Parse([]byte(input))
		assert.Error(t, err, "input %q should not parse", input)
	}
}

func TestObjectEncodingSortsKeys(t *testing.T) {
	v := Object(map[string]Value{
		"zeta":  Int(1),
		"alpha": Int(2),
		"mid":   Int(3),
	})
	encoded, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, string(encoded))
}

func TestMemberAndLen(t *testing.T) {
	v := Object(map[string]Value{
		"name": String("users"),
		"tags": Array(String("auth"), String("core")),
	})

	name, ok := v.Member("name")
	require.True(t, ok)
	s, _ := name.StringValue()
	assert.Equal(t, "users", s)

	_, ok = v.Member("missing")
	assert.False(t, ok)

	tags, ok := v.Member("tags")
	require.True(t, ok)
	assert.Equal(t, 2, tags.Len())
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, 0, String("scalar").Len())
}

type kindRecorder struct {
	visited string
}

func (r *kindRecorder) VisitNull() { r.visited = "null" }
func (r *kindRecorder) VisitBool(bool) { r.visited = "bool" }
func (r *kindRecorder) VisitInt(int64) { r.visited = "int" }
func (r *kindRecorder) VisitFloat(float64) { r.visited = "float" }
func (r *kindRecorder) VisitString(string) { r.visited = "string" }
func (r *kindRecorder) VisitArray([]Value) { r.visited = "array" }
func (r *kindRecorder) VisitObject(map[string]Value) { r.visited = "object" }

func TestVisitDispatchesOnce(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Null(), "null"},
		{Bool(true), "bool"},
		{Int(1), "int"},
		{Float(1.5), "float"},
		{String("x"), "string"},
		{Array(), "array"},
		{Object(nil), "object"},
	}
	for _, tt := range tests {
		rec := &kindRecorder{}
		tt.value.Visit(rec)
		assert.Equal(t, tt.want, rec.visited)
	}
}

func TestEqualDeep(t *testing.T) {
	a := Object(map[string]Value{
		"items": Array(Int(1), Object(map[string]Value{"ok": Bool(true)})),
	})
	b := Object(map[string]Value{
		"items": Array(Int(1), Object(map[string]Value{"ok": Bool(true)})),
	})
	c := Object(map[string]Value{
		"items": Array(Int(1), Object(map[string]Value{"ok": Bool(false)})),
	})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(Null()))
}
