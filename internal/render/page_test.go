package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage(t *testing.T) {
	withAds := Page(true)
	assert.Contains(t, withAds, "Hello from EdgeWorker!")
	assert.Contains(t, withAds, "Advertisement")
	assert.Contains(t, withAds, AdBlock)

	withoutAds := Page(false)
	assert.Contains(t, withoutAds, "Hello from EdgeWorker!")
	assert.NotContains(t, withoutAds, "Advertisement")
}

func TestPage_Deterministic(t *testing.T) {
	assert.Equal(t, Page(true), Page(true))
	assert.Equal(t, Page(false), Page(false))
	assert.NotEqual(t, Page(true), Page(false))
}

func TestPage_WellFormed(t *testing.T) {
	for _, showAds := range []bool{true, false} {
		body := strings.TrimSpace(Page(showAds))
		assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
		assert.True(t, strings.HasSuffix(body, "</html>"))
	}
}

func TestErrorPage(t *testing.T) {
	assert.Contains(t, ErrorPage, "Service Unavailable")
	assert.NotContains(t, ErrorPage, "Advertisement")
	assert.NotContains(t, ErrorPage, "Hello from EdgeWorker!")
}
