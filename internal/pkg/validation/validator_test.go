package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type subject struct {
	Phone string `validate:"omitempty,ru_phone"`
	INN   string `validate:"omitempty,inn"`
}

func TestPhoneRule(t *testing.T) {
	v := New()

	tests := []struct {
		phone string
		ok    bool
	}{
		{"+79261234567", true},
		{"89261234567", true},
		{"79261234567", false},
		{"+7926123456", false},
		{"+792612345678", false},
		{"phone", false},
	}
	for _, tt := range tests {
		err := v.Struct(subject{Phone: tt.phone})
		if tt.ok {
			assert.NoError(t, err, tt.phone)
		} else {
			assert.Error(t, err, tt.phone)
		}
	}
}

func TestINNRule(t *testing.T) {
	v := New()

	tests := []struct {
		inn string
		ok  bool
	}{
		{"7707083893", true},
		{"500100732259", true},
		{"77070838", false},
		{"77070838930", false},
		{"77070838ab", false},
	}
	for _, tt := range tests {
		err := v.Struct(subject{INN: tt.inn})
		if tt.ok {
			assert.NoError(t, err, tt.inn)
		} else {
			assert.Error(t, err, tt.inn)
		}
	}
}
