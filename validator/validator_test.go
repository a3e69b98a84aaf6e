package validator

import (
	"testing"
	"time"

	"synca/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name      string   `json:"name" validate:"required"`
	Pincode   string   `json:"pincode" validate:"omitempty,digits"`
	Amenities []string `json:"amenities" validate:"omitempty,dive,amenity"`
	Contact   string   `json:"contactNumber" validate:"contact"`
	Day       string   `json:"day" validate:"omitempty,date"`
}

func TestValidateStructFieldNames(t *testing.T) {
	err := ValidateStruct(sample{
		Pincode:   "56A",
		Amenities: []string{"WiFi", "Pool"},
		Contact:   "12345",
		Day:       "10/03/2025",
	})
	require.Error(t, err)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.KindValidation, appErr.Kind)
	assert.Equal(t, "This field is required.", appErr.Fields["name"])
	assert.Equal(t, "PIN Code must contain only digits.", appErr.Fields["pincode"])
	assert.Contains(t, appErr.Fields, "amenities[1]")
	assert.NotContains(t, appErr.Fields, "amenities[0]")
	assert.Equal(t, "Contact number must contain exactly 10 digits.", appErr.Fields["contactNumber"])
	assert.Contains(t, appErr.Fields, "day")

	assert.NoError(t, ValidateStruct(sample{Name: "ok", Contact: "98765 43210"}))
}

func TestNormalizeContact(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"", "", true},
		{"  ", "", true},
		{"98765-43210", "9876543210", true},
		{"+91 98765 43210", "919876543210", false},
		{"12345", "12345", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeContact(tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.valid, ok, tt.raw)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("checkIn", "")
	assert.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDate("checkIn", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), *d)

	_, err = ParseDate("checkIn", "2025-13-01")
	require.Error(t, err)
	assert.Contains(t, errors.GetAppError(err).Fields, "checkIn")
}

func TestValidateStayDates(t *testing.T) {
	in := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	before := in.AddDate(0, 0, -1)

	_, err := ValidateStayDates(&in, &before, 0)
	require.Error(t, err)
	assert.Equal(t, "Check-out date cannot be before check-in date.", errors.GetAppError(err).Fields["checkOut"])

	out, err := ValidateStayDates(&in, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC), *out)

	wrong := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	_, err = ValidateStayDates(&in, &wrong, 1)
	require.Error(t, err)
	assert.Equal(t, "Check-out must be exactly 1 month after check-in.", errors.GetAppError(err).Fields["checkOut"])

	out, err = ValidateStayDates(&in, nil, 0)
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestValidateRating(t *testing.T) {
	assert.NoError(t, ValidateRating(1))
	assert.NoError(t, ValidateRating(5))
	assert.Error(t, ValidateRating(0))
	assert.Error(t, ValidateRating(6))
}
