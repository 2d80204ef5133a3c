package validator

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type booking struct {
	Date    time.Time  `json:"appointment_date" validate:"required,future"`
	Moved   *time.Time `json:"moved_to" validate:"omitempty,future"`
	Status  *string    `json:"status" validate:"omitempty,oneof_or_blank=Scheduled Re-Schedule Completed Cancelled"`
	Purpose *string    `json:"purpose" validate:"omitempty,max=200"`
}

type person struct {
	FirstName string    `json:"first_name" validate:"required,min=3,max=20,nodigits"`
	Born      time.Time `json:"date_of_birth" validate:"required,past"`
	Phone     string    `json:"phone_number" validate:"required,len=10,number"`
	Password  string    `json:"password" validate:"required,password"`
	NewPass   string    `json:"new_password" validate:"password_optional"`
}

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, Register(v))
	return v
}

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestFutureRule(t *testing.T) {
	v := newValidate(t)
	clock := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, clock)

	assert.NoError(t, v.Struct(booking{Date: clock.Add(time.Minute)}))

	err := v.Struct(booking{Date: clock.Add(-time.Minute)})
	require.Error(t, err)
	fields := Translate(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "appointment_date", fields[0].Field)
	assert.Equal(t, "must be in the future", fields[0].Message)

	err = v.Struct(booking{Date: clock})
	assert.Error(t, err, "the current instant is not in the future")

	past := clock.Add(-time.Hour)
	err = v.Struct(booking{Date: clock.Add(time.Hour), Moved: &past})
	require.Error(t, err)
	assert.Equal(t, "moved_to", Translate(err)[0].Field)
}

func TestStatusAndPurposeRules(t *testing.T) {
	v := newValidate(t)
	fixClock(t, time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC))
	date := time.Date(2030, 6, 2, 12, 0, 0, 0, time.UTC)

	for _, s := range []string{"Scheduled", "Re-Schedule", "Completed", "Cancelled"} {
		status := s
		assert.NoError(t, v.Struct(booking{Date: date, Status: &status}), s)
	}

	for _, s := range []string{"", "   "} {
		blank := s
		assert.NoError(t, v.Struct(booking{Date: date, Status: &blank}), "blank status means not supplied")
	}

	bogus := "Archived"
	err := v.Struct(booking{Date: date, Status: &bogus})
	require.Error(t, err)
	assert.Equal(t, "must be one of: Scheduled, Re-Schedule, Completed, Cancelled", Translate(err)[0].Message)

	long := string(make([]rune, 201))
	assert.Error(t, v.Struct(booking{Date: date, Purpose: &long}))
}

type calendarDay time.Time

type birth struct {
	Day calendarDay `json:"date_of_birth" validate:"required,past"`
}

func TestPastAcceptsNamedTimeTypes(t *testing.T) {
	v := newValidate(t)
	fixClock(t, time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC))

	assert.NoError(t, v.Struct(birth{Day: calendarDay(time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC))}))

	err := v.Struct(birth{Day: calendarDay(time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC))})
	require.Error(t, err)
	assert.Equal(t, "must be in the past", Translate(err)[0].Message)

	err = v.Struct(birth{})
	require.Error(t, err)
	assert.Equal(t, "is required", Translate(err)[0].Message)
}

func TestPersonRules(t *testing.T) {
	v := newValidate(t)
	fixClock(t, time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC))

	valid := person{
		FirstName: "Alice",
		Born:      time.Date(1990, 3, 4, 0, 0, 0, 0, time.UTC),
		Phone:     "5551234567",
		Password:  "Secret1",
	}
	assert.NoError(t, v.Struct(valid))

	tests := []struct {
		name   string
		mutate func(p *person)
		field  string
	}{
		{"digits in name", func(p *person) { p.FirstName = "Al1ce" }, "first_name"},
		{"born today", func(p *person) { p.Born = time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC) }, "date_of_birth"},
		{"short phone", func(p *person) { p.Phone = "555123" }, "phone_number"},
		{"signed phone", func(p *person) { p.Phone = "+555123456" }, "phone_number"},
		{"weak password", func(p *person) { p.Password = "secret1" }, "password"},
		{"weak optional password", func(p *person) { p.NewPass = "short" }, "new_password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := v.Struct(p)
			require.Error(t, err)
			fields := Translate(err)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}

	blank := valid
	blank.NewPass = "   "
	assert.NoError(t, v.Struct(blank))
}

func TestTranslateIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Translate(assert.AnError))
}
