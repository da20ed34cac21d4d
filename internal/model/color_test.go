package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidColor(t *testing.T) {
	for _, c := range []string{"", "#abc", "#ABCDEF", "#3b82f6", "red", "Blue"} {
		assert.True(t, ValidColor(c), c)
	}
	for _, c := range []string{
		"#ab", "#abcd", "#gggggg", "3b82f6", "crimson",
		"red;background-image:url(https://example.com/x)",
		"#fff;position:fixed",
	} {
		assert.False(t, ValidColor(c), c)
	}
}
