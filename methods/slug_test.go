package methods

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Roads 2024": "roads-2024",
		"城市道路":       "cheng-shi-dao-lu",
		"北京Roads":    "bei-jing-roads",
		"  a__b  ":   "a-b",
		"":           "dataset",
		"!!!":        "dataset",
		"Parks.v2":   "parks-v2",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slug(in), in)
	}
}
