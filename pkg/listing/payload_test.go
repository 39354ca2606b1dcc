package listing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_KeyPriority(t *testing.T) {
	body := []byte(`{"schemes":"not-an-array","records":[{"title":"a"},{"title":"b"}],"data":[{"title":"c"}],"total":95}`)

	p, err := DecodePayload(body, SchemeCollectionKeys)

	require.NoError(t, err)
	require.Len(t, p.Records, 2)
	assert.Equal(t, "a", p.Records[0]["title"])
	assert.True(t, p.HasTotal)
	assert.Equal(t, 95, p.Total)
}

func TestDecodePayload_Empty(t *testing.T) {
	for _, body := range []string{`{}`, `{"schemes":[]}`, `[1,2,3]`, `{"data":{"title":"x"}}`} {
		p, err := DecodePayload([]byte(body), SchemeCollectionKeys)
		require.NoError(t, err, body)
		assert.True(t, p.Empty(), body)
	}
}

func TestDecodePayload_NonObjectElements(t *testing.T) {
	p, err := DecodePayload([]byte(`{"data":[{"title":"x"},"junk",null]}`), SchemeCollectionKeys)
	require.NoError(t, err)
	require.Len(t, p.Records, 3)
	assert.Nil(t, p.Records[1])

	recs := NormalizeAll(p.Records)
	assert.Equal(t, UntitledScheme, recs[2].Title)
}

func TestDecodePayload_Malformed(t *testing.T) {
	_, err := DecodePayload([]byte(`<html>gateway timeout</html>`), SchemeCollectionKeys)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestDecodePayload_TotalMustBeNumber(t *testing.T) {
	p, err := DecodePayload([]byte(`{"data":[{}],"total":"95"}`), SchemeCollectionKeys)
	require.NoError(t, err)
	assert.False(t, p.HasTotal)
}
