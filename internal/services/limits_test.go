package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 10, clampLimit(0))
	assert.Equal(t, 10, clampLimit(-5))
	assert.Equal(t, 1, clampLimit(1))
	assert.Equal(t, 100, clampLimit(100))
	assert.Equal(t, 100, clampLimit(5000))
}
