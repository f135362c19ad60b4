package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColormap(t *testing.T) {
	for _, name := range ColormapNames() {
		cm, err := ParseColormap(name)
		require.NoError(t, err)
		assert.Equal(t, name, cm.Name)
	}

	_, err := ParseColormap("viridis")
	assert.Error(t, err)
	_, err = ParseColormap("")
	assert.Error(t, err)
}

func TestColormapEndpoints(t *testing.T) {
	cm, err := ParseColormap("RdYlGn")
	require.NoError(t, err)

	r, g, b := cm.At(0)
	assert.Equal(t, [3]uint8{165, 0, 38}, [3]uint8{r, g, b})

	r, g, b = cm.At(1)
	assert.Equal(t, [3]uint8{0, 104, 55}, [3]uint8{r, g, b})

	// Midpoint hits the yellow anchor exactly.
	r, g, b = cm.At(0.5)
	assert.Equal(t, [3]uint8{255, 255, 191}, [3]uint8{r, g, b})
}

func TestColormapClamps(t *testing.T) {
	cm, err := ParseColormap("coolwarm")
	require.NoError(t, err)

	rLo, gLo, bLo := cm.At(-5)
	r0, g0, b0 := cm.At(0)
	assert.Equal(t, [3]uint8{r0, g0, b0}, [3]uint8{rLo, gLo, bLo})

	rHi, gHi, bHi := cm.At(5)
	r1, g1, b1 := cm.At(1)
	assert.Equal(t, [3]uint8{r1, g1, b1}, [3]uint8{rHi, gHi, bHi})
}

func TestColormapInterpolates(t *testing.T) {
	cm, err := ParseColormap("RdGy")
	require.NoError(t, err)

	// Quarter point sits halfway between dark red and white.
	r, g, b := cm.At(0.25)
	assert.InDelta(t, 179, int(r), 1)
	assert.InDelta(t, 128, int(g), 1)
	assert.InDelta(t, 143, int(b), 1)
}
