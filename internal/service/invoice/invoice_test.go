// internal/service/invoice/invoice_test.go
package invoice

import (
	"testing"

	"hesabu-service/internal/domain/invoice"
	"hesabu-service/internal/pkg/xerrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBuildItemsComputesTotals(t *testing.T) {
	items, err := buildItems([]invoice.CreateItemInput{
		{Description: "Consulting", Quantity: dec("10"), UnitPrice: dec("5000"), VATPercent: dec("16")},
		{Description: "Hosting", Quantity: dec("3"), UnitPrice: dec("333.33"), VATPercent: dec("16")},
		{Description: "Exempt supply", Quantity: dec("1"), UnitPrice: dec("200"), VATPercent: dec("0")},
	})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.True(t, dec("50000").Equal(items[0].LineTotal))
	assert.True(t, dec("8000").Equal(items[0].VATAmount))

	// 3 * 333.33 = 999.99; 16% of that is 159.9984, rounded to 160.00.
	assert.True(t, dec("999.99").Equal(items[1].LineTotal))
	assert.True(t, dec("160").Equal(items[1].VATAmount))

	assert.True(t, dec("200").Equal(items[2].LineTotal))
	assert.True(t, items[2].VATAmount.IsZero())

	subtotal, vatTotal := decimalTotals(items)
	assert.True(t, dec("51199.99").Equal(subtotal), "subtotal: %s", subtotal)
	assert.True(t, dec("8160").Equal(vatTotal), "vat total: %s", vatTotal)
}

func TestBuildItemsValidation(t *testing.T) {
	cases := map[string]invoice.CreateItemInput{
		"zero quantity":      {Description: "x", Quantity: decimal.Zero, UnitPrice: dec("10")},
		"negative quantity":  {Description: "x", Quantity: dec("-1"), UnitPrice: dec("10")},
		"negative price":     {Description: "x", Quantity: dec("1"), UnitPrice: dec("-10")},
		"negative vat":       {Description: "x", Quantity: dec("1"), UnitPrice: dec("10"), VATPercent: dec("-16")},
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := buildItems([]invoice.CreateItemInput{input})
			assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
		})
	}
}

func TestBuildItemsZeroPriceAllowed(t *testing.T) {
	items, err := buildItems([]invoice.CreateItemInput{
		{Description: "Goodwill discount line", Quantity: dec("1"), UnitPrice: decimal.Zero},
	})
	require.NoError(t, err)
	assert.True(t, items[0].LineTotal.IsZero())
}
