package landedcost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarifflyapp/tariffly-server/internal/errors"
)

func TestCalculate_KnownDestination(t *testing.T) {
	got, err := Calculate(Input{
		Destination:  "GB",
		ProductValue: 100,
		ShippingCost: 10,
		Quantity:     1,
	})

	require.NoError(t, err)
	assert.Equal(t, 4.7, got.DutyRate)
	assert.Equal(t, 4.7, got.DutyAmount)
	assert.Equal(t, 20.0, got.VATRate)
	// VAT base = 100 + 4.70 + 10 = 114.70
	assert.Equal(t, 22.94, got.VATAmount)
	assert.Equal(t, 137.64, got.TotalLandedCost)
}

func TestCalculate_USHasNoVAT(t *testing.T) {
	got, err := Calculate(Input{Destination: "US", ProductValue: 50, Quantity: 2})

	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Subtotal)
	assert.Equal(t, 3.5, got.DutyAmount)
	assert.Equal(t, 0.0, got.VATAmount)
	assert.Equal(t, 103.5, got.TotalLandedCost)
}

func TestCalculate_UnknownDestinationUsesDefaults(t *testing.T) {
	got, err := Calculate(Input{Destination: "BR", ProductValue: 100, Quantity: 1})

	require.NoError(t, err)
	assert.Equal(t, 5.0, got.DutyRate)
	assert.Equal(t, 15.0, got.VATRate)
}

func TestCalculate_Margin(t *testing.T) {
	base, err := Calculate(Input{Destination: "US", ProductValue: 100, Quantity: 1})
	require.NoError(t, err)

	withMargin, err := Calculate(Input{Destination: "US", ProductValue: 100, Quantity: 1, MarginPercent: 10})
	require.NoError(t, err)

	assert.InDelta(t, base.TotalLandedCost*1.1, withMargin.TotalLandedCost, 0.01)
	assert.Greater(t, withMargin.MarginAmount, 0.0)
}

func TestCalculate_NormalizesDestination(t *testing.T) {
	got, err := Calculate(Input{Destination: " gb ", ProductValue: 10, Quantity: 1})

	require.NoError(t, err)
	assert.Equal(t, "GB", got.Destination)
	assert.Equal(t, 4.7, got.DutyRate)
}

func TestCalculate_ZeroQuantityDefaultsToOne(t *testing.T) {
	got, err := Calculate(Input{Destination: "US", ProductValue: 100})

	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Subtotal)
}

func TestCalculate_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"zero value", Input{Destination: "US", ProductValue: 0}},
		{"negative value", Input{Destination: "US", ProductValue: -5}},
		{"negative shipping", Input{Destination: "US", ProductValue: 10, ShippingCost: -1}},
		{"bad destination", Input{Destination: "USA", ProductValue: 10}},
		{"empty destination", Input{ProductValue: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrValidation))
		})
	}
}

func TestSupportedCountries(t *testing.T) {
	countries := SupportedCountries()

	assert.Contains(t, countries, "US")
	assert.Contains(t, countries, "JP")
	assert.Len(t, countries, 7)
}
