package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
)

type QROptions struct {
	Content string
	Size    int
	FgColor string // "#rrggbb"
	BgColor string
}

// QRService renders short URLs as QR codes for the creation page and API.
type QRService struct{}

func NewQRService() *QRService {
	return &QRService{}
}

// GenerateQRCode returns the PNG both base64-encoded and raw.
func (s *QRService) GenerateQRCode(opts QROptions) (string, []byte, error) {
	qr, err := qrcode.New(opts.Content, qrcode.Medium)
	if err != nil {
		return "", nil, err
	}
	qr.ForegroundColor = s.parseHexColor(opts.FgColor, color.Black)
	qr.BackgroundColor = s.parseHexColor(opts.BgColor, color.White)

	size := opts.Size
	if size <= 0 {
		size = 256
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(size)); err != nil {
		return "", nil, err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), buf.Bytes(), nil
}

// GenerateQRCodeSVG renders one unit square per dark module.
func (s *QRService) GenerateQRCodeSVG(opts QROptions) (string, error) {
	qr, err := qrcode.New(opts.Content, qrcode.Medium)
	if err != nil {
		return "", err
	}
	qr.DisableBorder = true
	bitmap := qr.Bitmap()
	n := len(bitmap)

	fg := s.hexOrDefault(opts.FgColor, "#000000")
	bg := s.hexOrDefault(opts.BgColor, "#FFFFFF")

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, n, n)
	fmt.Fprintf(&sb, `<rect width="100%%" height="100%%" fill="%s"/>`, bg)
	fmt.Fprintf(&sb, `<path fill="%s" d="`, fg)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&sb, "M%d %dh1v1h-1z", x, y)
			}
		}
	}
	sb.WriteString(`"/></svg>`)
	return sb.String(), nil
}

func (s *QRService) hexOrDefault(hex, fallback string) string {
	if _, ok := s.parseHex(hex); ok {
		return hex
	}
	return fallback
}

func (s *QRService) parseHexColor(hex string, fallback color.Color) color.Color {
	c, ok := s.parseHex(hex)
	if !ok {
		return fallback
	}
	return c
}

func (s *QRService) parseHex(hex string) (color.RGBA, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}
