package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/thiagovferrari/crm2026/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSONRoundTrip(t *testing.T) {
	d := domain.NewDate(2024, time.January, 31)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-31"`, string(raw))

	var decoded domain.Date
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded.Equal(d))
}

func TestDate_JSONZeroIsNull(t *testing.T) {
	raw, err := json.Marshal(domain.Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))

	var decoded domain.Date
	require.NoError(t, json.Unmarshal([]byte("null"), &decoded))
	assert.True(t, decoded.IsZero())
}

func TestDate_UnmarshalTruncatesDatetime(t *testing.T) {
	var d domain.Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-05-10T14:30:00Z"`), &d))
	assert.Equal(t, "2024-05-10", d.String())
}

func TestDate_UnmarshalInvalid(t *testing.T) {
	var d domain.Date
	err := json.Unmarshal([]byte(`"not-a-date"`), &d)
	assert.Error(t, err)
}

func TestDate_ScanVariants(t *testing.T) {
	var d domain.Date

	require.NoError(t, d.Scan(time.Date(2024, time.May, 10, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-10", d.String())

	require.NoError(t, d.Scan([]byte("2024-06-01")))
	assert.Equal(t, "2024-06-01", d.String())

	require.NoError(t, d.Scan("2024-07-01"))
	assert.Equal(t, "2024-07-01", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestDate_ValueNullWhenZero(t *testing.T) {
	v, err := domain.Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = domain.NewDate(2024, time.May, 10).Value()
	require.NoError(t, err)
	assert.IsType(t, time.Time{}, v)
}

func TestDate_AddDateNormalizesOverflow(t *testing.T) {
	// Mirrors time.AddDate: Jan 31 + 1 month rolls into March.
	d := domain.NewDate(2024, time.January, 31).AddDate(0, 1, 0)
	assert.Equal(t, "2024-03-02", d.String())
}
