package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{"9876543210", "+919876543210", "98765 43210", "98765-43210"}
	for _, phone := range valid {
		assert.True(t, ValidatePhone(phone), "expected %q to be valid", phone)
	}

	invalid := []string{"", "abc", "+0123", "0123456789"}
	for _, phone := range invalid {
		assert.False(t, ValidatePhone(phone), "expected %q to be invalid", phone)
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "9876543210", NormalizePhone("98765 43210"))
	assert.Equal(t, "+919876543210", NormalizePhone("+91 (98765) 43210"))
}

func TestPhoneVariants(t *testing.T) {
	variants := PhoneVariants("+91 98765 43210")
	assert.Contains(t, variants, "+919876543210")
	assert.Contains(t, variants, "9876543210")

	variants = PhoneVariants("09876543210")
	assert.Contains(t, variants, "09876543210")
	assert.Contains(t, variants, "9876543210")

	// No duplicates for an already-normalized number.
	variants = PhoneVariants("9876543210")
	assert.Equal(t, []string{"9876543210"}, variants)
}
