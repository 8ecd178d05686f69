package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termaid/diagram"
)

func TestParseER(t *testing.T) {
	d, err := ParseER(SplitLines(`erDiagram
	CUSTOMER ||--o{ ORDER : places
	ORDER ||--|{ LINE-ITEM : contains
	CUSTOMER }|..|{ DELIVERY-ADDRESS : "uses"
	p[Person] |o--o| CUSTOMER : is
	CUSTOMER {
		string name PK
		string email UK, FK "login"
		int age
		not an attribute line here
	}
	PRODUCT`), nil)
	require.NoError(t, err)

	var ids []string
	for _, e := range d.Entities {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"CUSTOMER", "ORDER", "LINE-ITEM", "DELIVERY-ADDRESS", "p", "PRODUCT"}, ids)
	assert.Equal(t, "Person", d.Entity("p").Label)

	require.Len(t, d.Relations, 4)
	r := d.Relations[0]
	assert.Equal(t, diagram.ExactlyOne, r.FromCard)
	assert.Equal(t, diagram.ZeroOrMore, r.ToCard)
	assert.True(t, r.Identifying)
	assert.Equal(t, "places", r.Label)

	assert.Equal(t, diagram.OneOrMore, d.Relations[1].ToCard)
	assert.False(t, d.Relations[2].Identifying)
	assert.Equal(t, "uses", d.Relations[2].Label)
	assert.Equal(t, diagram.ZeroOrOne, d.Relations[3].FromCard)
	assert.Equal(t, diagram.ZeroOrOne, d.Relations[3].ToCard)

	attrs := d.Entity("CUSTOMER").Attributes
	require.Len(t, attrs, 3)
	assert.Equal(t, []string{"PK"}, attrs[0].Keys)
	assert.Equal(t, []string{"UK", "FK"}, attrs[1].Keys)
	assert.Equal(t, "login", attrs[1].Comment)
	assert.Equal(t, "int", attrs[2].Type)
	assert.Equal(t, "age", attrs[2].Name)
}
