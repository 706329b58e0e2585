package services

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQRService(t *testing.T) {
	service := NewQRService()

	t.Run("Generate PNG QR Code", func(t *testing.T) {
		opts := QROptions{
			Content: "https://dl.example.org/abc1234",
			Size:    256,
			FgColor: "#000000",
			BgColor: "#FFFFFF",
		}
		base64Str, raw, err := service.GenerateQRCode(opts)

		assert.NoError(t, err)
		assert.NotEmpty(t, base64Str)
		assert.Equal(t, []byte("\x89PNG"), raw[:4])
	})

	t.Run("Default size", func(t *testing.T) {
		_, raw, err := service.GenerateQRCode(QROptions{Content: "https://dl.example.org/x"})
		assert.NoError(t, err)
		assert.NotEmpty(t, raw)
	})

	t.Run("Generate PNG QR Code Error", func(t *testing.T) {
		_, _, err := service.GenerateQRCode(QROptions{Content: strings.Repeat("A", 10000)})
		assert.Error(t, err)
	})

	t.Run("Generate SVG QR Code", func(t *testing.T) {
		svg, err := service.GenerateQRCodeSVG(QROptions{
			Content: "https://dl.example.org/abc1234",
			FgColor: "#112233",
			BgColor: "#FFFFFF",
		})

		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(svg, "<svg"))
		assert.True(t, strings.HasSuffix(svg, "</svg>"))
		assert.Contains(t, svg, "#112233")
	})

	t.Run("SVG rejects bad colors", func(t *testing.T) {
		svg, err := service.GenerateQRCodeSVG(QROptions{
			Content: "https://dl.example.org/abc1234",
			FgColor: `"><script>`,
		})
		assert.NoError(t, err)
		assert.NotContains(t, svg, "<script>")
		assert.Contains(t, svg, "#000000")
	})

	t.Run("Generate SVG QR Code Error", func(t *testing.T) {
		_, err := service.GenerateQRCodeSVG(QROptions{Content: strings.Repeat("A", 10000)})
		assert.Error(t, err)
	})

	t.Run("Parse Hex Color", func(t *testing.T) {
		assert.Equal(t, color.Black, service.parseHexColor("invalid", color.Black))
		assert.Equal(t, color.RGBA{255, 0, 0, 255}, service.parseHexColor("#ff0000", color.Black))
		assert.Equal(t, color.RGBA{255, 0, 0, 255}, service.parseHexColor("#FF0000", color.Black))
		assert.Equal(t, color.Black, service.parseHexColor("#GGGGGG", color.Black))
	})
}
