package scancode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRSize(t *testing.T) {
	img, err := QR("ALM-1A2B3C4D", 160)
	require.NoError(t, err)
	assert.Equal(t, 160, img.Bounds().Dx())
	assert.Equal(t, 160, img.Bounds().Dy())
}

func TestQRDefaultSize(t *testing.T) {
	img, err := QR("ALM-1A2B3C4D", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
}

func TestQREmptyPayload(t *testing.T) {
	img, err := QR("", 160)
	assert.Error(t, err)
	assert.Nil(t, img)
}
