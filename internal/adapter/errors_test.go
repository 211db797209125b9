package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	err := Unavailable("tavily", "search", errors.New("missing api key"))
	assert.True(t, IsUnavailable(err))
	assert.False(t, errors.Is(err, ErrCallFailed))
	assert.Contains(t, err.Error(), "tavily search")

	err = CallFailed("places", "nearby", context.DeadlineExceeded)
	assert.False(t, IsUnavailable(err))
	assert.ErrorIs(t, err, ErrCallFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var ae *Error
	assert.True(t, errors.As(err, &ae))
	assert.Equal(t, "places", ae.Provider)
}

func TestErrorWithoutCause(t *testing.T) {
	err := Unavailable("cache", "get", nil)
	assert.Equal(t, "cache get: provider unavailable", err.Error())
	assert.True(t, IsUnavailable(err))
}
