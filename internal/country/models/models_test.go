package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestValidate(t *testing.T) {
	t.Run("complete record passes", func(t *testing.T) {
		errs, ok := Validate(&Country{
			Name:         "Kenya",
			Population:   54000000,
			CurrencyCode: strPtr("KES"),
		})
		assert.True(t, ok)
		assert.Empty(t, errs)
	})

	t.Run("nil currency code is allowed", func(t *testing.T) {
		_, ok := Validate(&Country{Name: "Noland", Population: 500000})
		assert.True(t, ok)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		errs, ok := Validate(&Country{Name: "   ", Population: 10})
		assert.False(t, ok)
		assert.Contains(t, errs, "name")
	})

	t.Run("negative population is rejected", func(t *testing.T) {
		errs, ok := Validate(&Country{Name: "Testland", Population: -1})
		assert.False(t, ok)
		assert.Contains(t, errs, "population")
	})

	t.Run("blank currency code is rejected", func(t *testing.T) {
		errs, ok := Validate(&Country{Name: "Testland", Population: 10, CurrencyCode: strPtr(" ")})
		assert.False(t, ok)
		assert.Contains(t, errs, "currency_code")
	})

	t.Run("multiple failures are reported per field", func(t *testing.T) {
		errs, ok := Validate(&Country{Name: "", Population: -5})
		assert.False(t, ok)
		assert.Len(t, errs, 2)
	})
}
