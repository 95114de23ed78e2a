package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Day      string `json:"day" validate:"required,weekday"`
	Start    string `json:"startTime" validate:"required,clock"`
	Subject  string `json:"subject" validate:"notblank"`
	Duration int    `json:"durationHours" validate:"min=1,max=3"`
}

func TestStructValid(t *testing.T) {
	t.Parallel()

	fields, err := Struct(sample{Day: "monday", Start: "9:30", Subject: "Physics", Duration: 2})
	require.NoError(t, err)
	assert.Nil(t, fields)
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	t.Parallel()

	fields, err := Struct(sample{Day: "Someday", Start: "25:00", Subject: "  ", Duration: 5})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"day":           "must be a weekday name",
		"startTime":     "must be HH:MM",
		"subject":       "is required",
		"durationHours": "must be at most 3",
	}, fields)
}

func TestStructRejectsNonStruct(t *testing.T) {
	t.Parallel()

	_, err := Struct("not a struct")
	assert.Error(t, err)
}

func TestMustRegisterPanicsOnBadTag(t *testing.T) {
	instance()
	assert.PanicsWithValue(t, `validation: register "": function Key cannot be empty`, func() {
		mustRegister("", func(validator.FieldLevel) bool { return true })
	})
}
