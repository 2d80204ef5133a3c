package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateUnmarshalJSON(t *testing.T) {
	tests := map[string]string{
		"date only":        `"1990-05-17"`,
		"utc timestamp":    `"1990-05-17T00:00:00Z"`,
		"offset keeps day": `"1990-05-17T23:30:00-05:00"`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			var d Date
			require.NoError(t, json.Unmarshal([]byte(input), &d))
			assert.Equal(t, NewDate(1990, time.May, 17), d)
		})
	}

	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"17/05/1990"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`19900517`), &d))
}

func TestDateMarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Born Date `json:"born"`
	}{NewDate(1990, time.May, 17)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"born":"1990-05-17"}`, string(out))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(1990, 5, 17, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, NewDate(1990, time.May, 17), d)

	require.NoError(t, d.Scan([]byte("1991-01-02")))
	assert.Equal(t, "1991-01-02", d.String())

	assert.Error(t, d.Scan(42))

	v, err := NewDate(1990, time.May, 17).Value()
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), v)
}
