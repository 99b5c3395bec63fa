package httpapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileprovider/gateway/pkg/httpapi"
)

func Test_ParseRange_Empty(t *testing.T) {
	lo, hi, err := httpapi.ParseRange("")
	require.NoError(t, err)
	assert.Nil(t, lo)
	assert.Nil(t, hi)
}

func Test_ParseRange_BothBounds(t *testing.T) {
	lo, hi, err := httpapi.ParseRange("bytes=10-20")
	require.NoError(t, err)
	require.NotNil(t, lo)
	require.NotNil(t, hi)
	assert.EqualValues(t, 10, *lo)
	assert.EqualValues(t, 20, *hi)
}

func Test_ParseRange_OpenEnded(t *testing.T) {
	lo, hi, err := httpapi.ParseRange("bytes=10-")
	require.NoError(t, err)
	require.NotNil(t, lo)
	assert.EqualValues(t, 10, *lo)
	assert.Nil(t, hi)
}

func Test_ParseRange_Suffix(t *testing.T) {
	lo, hi, err := httpapi.ParseRange("bytes=-500")
	require.NoError(t, err)
	assert.Nil(t, lo)
	require.NotNil(t, hi)
	assert.EqualValues(t, 500, *hi)
}

func Test_ParseRange_Malformed(t *testing.T) {
	_, _, err := httpapi.ParseRange("not-a-range")
	require.Error(t, err)
}

func Test_ContentRange(t *testing.T) {
	assert.Equal(t, "bytes 10-20/100", httpapi.ContentRange(10, 20, 100))
}
