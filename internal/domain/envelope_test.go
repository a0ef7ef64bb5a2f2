package domain

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg"><rect width="100%" height="100%"/>` +
	`<text x="10" y="20">Power to all</text><text x="10" y="40"><tspan>Slav</tspan> <tspan>cats</tspan></text>` +
	`<text x="10" y="60"></text></svg>`

func tokenURIFixture(t *testing.T, image string) string {
	t.Helper()
	meta := fmt.Sprintf(`{"name":"The Billboard","description":"on-chain","image":%q}`, image)
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(meta))
}

func TestDecodeTokenURIExtractsSVGAndLines(t *testing.T) {
	image := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(testSVG))

	artifact, err := DecodeTokenURI(tokenURIFixture(t, image))
	require.NoError(t, err)
	assert.Equal(t, "The Billboard", artifact.Name)
	assert.Equal(t, "on-chain", artifact.Description)
	assert.Equal(t, "image/svg+xml", artifact.MediaType)
	assert.Equal(t, testSVG, artifact.Image)
	assert.Equal(t, []string{"Power to all", "Slav cats"}, artifact.Lines)
	assert.Nil(t, artifact.Price)
}

func TestDecodeTokenURIUnicodeSVG(t *testing.T) {
	svg := `<svg><text>Ура 🐱</text></svg>`
	image := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))

	artifact, err := DecodeTokenURI(tokenURIFixture(t, image))
	require.NoError(t, err)
	assert.Equal(t, []string{"Ура 🐱"}, artifact.Lines)
}

func TestDecodeTokenURIPercentEncodedImage(t *testing.T) {
	image := "data:image/svg+xml,%3Csvg%3E%3Ctext%3Ehi%3C%2Ftext%3E%3C%2Fsvg%3E"

	artifact, err := DecodeTokenURI(tokenURIFixture(t, image))
	require.NoError(t, err)
	assert.Equal(t, []string{"hi"}, artifact.Lines)
}

func TestDecodeTokenURIMalformed(t *testing.T) {
	validImage := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(testSVG))

	tests := []struct {
		name string
		uri  string
	}{
		{name: "not a data uri", uri: "https://example.com/1.json"},
		{name: "missing separator", uri: "data:application/json;base64"},
		{name: "bad base64", uri: "data:application/json;base64,!!!"},
		{name: "bad json", uri: "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte("{"))},
		{name: "missing image", uri: "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(`{"name":"x"}`))},
		{name: "image not data uri", uri: tokenURIFixture(t, "ipfs://cid")},
		{name: "image bad base64", uri: tokenURIFixture(t, "data:image/svg+xml;base64,%%%")},
		{name: "image bad svg", uri: tokenURIFixture(t, "data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString([]byte("<svg><text>")))},
		{name: "valid image but truncated envelope", uri: tokenURIFixture(t, validImage)[:40]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTokenURI(tt.uri)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestDecodeTokenURINonSVGImageKeepsPayload(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	image := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	artifact, err := DecodeTokenURI(tokenURIFixture(t, image))
	require.NoError(t, err)
	assert.Equal(t, "image/png", artifact.MediaType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(png), artifact.Image)
	assert.Empty(t, artifact.Lines)
}

func TestParseDataURIUnpaddedBase64(t *testing.T) {
	uri, err := ParseDataURI("data:text/plain;base64,aGk")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(uri.Data))
	assert.True(t, uri.Base64)
}
