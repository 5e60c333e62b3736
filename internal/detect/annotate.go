package detect

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

type box struct {
	Label    string
	Location Location
}

// annotate draws each box and its label onto a copy of img.
func annotate(img image.Image, boxes []box) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(2)

	for _, b := range boxes {
		loc := b.Location
		dc.SetRGB255(255, 140, 0)
		dc.DrawRectangle(loc.Left, loc.Top, loc.Width, loc.Height)
		dc.Stroke()

		// Keep the caption inside the image when the box touches the top edge.
		y := loc.Top - 4
		if y < 12 {
			y = loc.Top + 14
		}
		dc.SetRGB255(0, 0, 255)
		dc.DrawString(b.Label, loc.Left+2, y)
	}
	return dc.Image()
}

// writeImage encodes img in the format implied by path's extension.
func writeImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output image")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	case ".gif":
		err = gif.Encode(f, img, nil)
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", filepath.Base(path))
	}
	return f.Close()
}
