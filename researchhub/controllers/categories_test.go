package controllers

import (
	"testing"

	"researchhub/researchhub/catalog"
	"researchhub/researchhub/utils/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryLookup(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	ctrl := NewCategoryController(cat)

	tech, err := ctrl.Get("technology")
	require.NoError(t, err)
	assert.Len(t, tech.SuggestedQueries, 5)

	_, err = ctrl.Get("weather")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, []string{"trending", "sports", "technology"}, ctrl.Names())
}
