package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	assert.NoError(t, Collect(
		Required("name", "Alice"),
		MinInt("amount", 5, 1),
		MaxInt("amount", 5, 10),
		Email("email", "alice@example.com"),
	))

	err := Collect(
		Required("name", "  "),
		MinInt("amount", 0, 1),
		Email("email", "@example.com"),
	)
	require.Error(t, err)

	var errs Errs
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 3)
	assert.Contains(t, err.Error(), "name: required")
	assert.Contains(t, err.Error(), "amount: must be >= 1")
}

func TestEmail(t *testing.T) {
	assert.Nil(t, Email("email", "a@b"))
	assert.NotNil(t, Email("email", "missing-at"))
	assert.NotNil(t, Email("email", "trailing@"))
	assert.NotNil(t, Email("email", "@leading"))
}
