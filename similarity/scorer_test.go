package similarity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	t.Run("both empty returns zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Text("", ""))
	})

	t.Run("identical returns one", func(t *testing.T) {
		assert.Equal(t, 1.0, Text("Fluffy", "Fluffy"))
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, 1.0, Text("FLUFFY", "fluffy"))
	})

	t.Run("similar names", func(t *testing.T) {
		// "fluffy" vs "fluffy mcgee": 6 edits over 12 runes.
		sim := Text("Fluffy", "Fluffy McGee")
		assert.InDelta(t, 0.5, sim, 0.01)
	})

	t.Run("one empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Text("Fluffy", ""))
	})

	t.Run("completely different", func(t *testing.T) {
		assert.Less(t, Text("Fluffy", "Rex"), 0.2)
	})
}

func TestText_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Fluffy", "Fluffy McGee"},
		{"mittens", "MITTENS JR"},
		{"", "Rex"},
	}
	for _, p := range pairs {
		assert.Equal(t, Text(p[0], p[1]), Text(p[1], p[0]))
	}
}

func TestImage(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		v := []float32{0.6, 0.8}
		assert.InDelta(t, 1.0, Image(v, v), 1e-6)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		assert.InDelta(t, 0.0, Image([]float32{1, 0}, []float32{0, 1}), 1e-6)
	})

	t.Run("opposite vectors clamp to zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Image([]float32{1, 0}, []float32{-1, 0}))
	})

	t.Run("absent vector", func(t *testing.T) {
		assert.Equal(t, 0.0, Image(nil, []float32{1, 0}))
		assert.Equal(t, 0.0, Image([]float32{1, 0}, nil))
	})

	t.Run("zero magnitude", func(t *testing.T) {
		assert.Equal(t, 0.0, Image([]float32{0, 0}, []float32{1, 0}))
	})
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.ErrorIs(t, Weights{Name: 0.5, Description: 0.4, Image: 0.3}.Validate(), ErrInvalidWeights)
	assert.ErrorIs(t, Weights{Name: -0.1, Description: 0.8, Image: 0.3}.Validate(), ErrInvalidWeights)
}

func TestComposite_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		// Random valid weights summing to 1.
		a, b := rng.Float64(), rng.Float64()
		if a+b > 1 {
			a, b = 1-a, 1-b
		}
		w := Weights{Name: a, Description: b, Image: 1 - a - b}

		c := Components{
			Name:        rng.Float64(),
			Description: rng.Float64(),
			Image:       rng.Float64(),
			HasImage:    rng.Intn(2) == 0,
		}
		score := w.Composite(c)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestComposite_Renormalization(t *testing.T) {
	w := DefaultWeights()

	c := Components{Name: 0.8, Description: 0.6, HasImage: false}
	// (0.4*0.8 + 0.3*0.6) / 0.7
	assert.InDelta(t, 0.7143, w.Composite(c), 0.001)

	w.MissingImage = ZeroWeightMissing
	assert.InDelta(t, 0.5, w.Composite(c), 0.001)
}

func TestComposite_WithImage(t *testing.T) {
	w := DefaultWeights()
	c := Components{Name: 1.0, Description: 1.0, Image: 1.0, HasImage: true}
	assert.InDelta(t, 1.0, w.Composite(c), 1e-9)

	c = Components{Name: 0.5, Description: 0.5, Image: 0.5, HasImage: true}
	assert.InDelta(t, 0.5, w.Composite(c), 1e-9)
}
