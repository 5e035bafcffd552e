package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name string
		in   Evidence
		want int
	}{
		{"nothing known", Evidence{}, 0},
		{"inferred only clamps to zero", Evidence{Inferred: true}, 0},
		{"primary", Evidence{PrimarySource: true}, 40},
		{"primary recent", Evidence{PrimarySource: true, Recent: true}, 60},
		{"everything", Evidence{PrimarySource: true, Recent: true, PercentKnown: true}, 80},
		{"everything inferred", Evidence{PrimarySource: true, Recent: true, PercentKnown: true, Inferred: true}, 60},
		{"recent inferred", Evidence{Recent: true, Inferred: true}, 0},
		{"pct recent", Evidence{Recent: true, PercentKnown: true}, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.in))
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-20))
	assert.Equal(t, 100, clamp(120))
	assert.Equal(t, 55, clamp(55))
}
