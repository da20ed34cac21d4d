package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageURL(t *testing.T) {
	got, err := PageURL("http://127.0.0.1:8080", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/calendar?month=2025-03", got)

	got, err = PageURL("https://cal.example.com/home/", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "https://cal.example.com/home/calendar?month=2024-12", got)
}

func TestOptionsDefaults(t *testing.T) {
	o, err := Options{URL: "http://localhost/calendar", OutputPath: "out.png"}.withDefaults()
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, o.Width)
	assert.Equal(t, DefaultHeight, o.Height)
	assert.Equal(t, DefaultTimeout, o.Timeout)

	o, err = Options{URL: "http://localhost/calendar", OutputPath: "out.png", Width: 800, Height: 600}.withDefaults()
	require.NoError(t, err)
	assert.Equal(t, 800, o.Width)
	assert.Equal(t, 600, o.Height)
}

func TestOptionsValidation(t *testing.T) {
	for name, o := range map[string]Options{
		"no url":    {OutputPath: "out.png"},
		"relative":  {URL: "/calendar", OutputPath: "out.png"},
		"ftp":       {URL: "ftp://host/calendar", OutputPath: "out.png"},
		"no output": {URL: "http://localhost/calendar"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := o.withDefaults()
			assert.Error(t, err)
		})
	}

	// Invalid options fail before a browser is started.
	assert.Error(t, Month(context.Background(), Options{}))
}
