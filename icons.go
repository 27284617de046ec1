package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// Tray icons are generated at startup rather than embedded: a filled
// circle on a transparent background, colored by state.
var (
	iconIdle       = circleIcon(color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff})
	iconRecording  = circleIcon(color.NRGBA{R: 0xe5, G: 0x3e, B: 0x3e, A: 0xff})
	iconProcessing = circleIcon(color.NRGBA{R: 0x3e, G: 0xb0, B: 0x4f, A: 0xff})
)

const iconSize = 64

func circleIcon(c color.NRGBA) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	cx, cy := float64(iconSize)/2, float64(iconSize)/2
	r := float64(iconSize)/2 - 4
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory NRGBA image cannot fail in practice.
		panic(err)
	}
	return buf.Bytes()
}
