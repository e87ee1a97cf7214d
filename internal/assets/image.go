package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// blurEdge is the longest edge of the inline placeholder preview.
	blurEdge    = 8
	blurQuality = 60
)

// Image is a materialized image asset with pixel dimensions and an inline
// blur placeholder.
type Image struct {
	Src         string `json:"src"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	BlurDataURL string `json:"blurDataURL"`
	BlurWidth   int    `json:"blurWidth"`
	BlurHeight  int    `json:"blurHeight"`
}

// ResolveImage materializes the image referenced by ref from the document at
// fromPath and returns it with dimensions and placeholder. Decoding happens
// once per unique content; repeated references reuse the cached metadata.
func (r *Resolver) ResolveImage(ctx context.Context, ref, fromPath string) (*Image, error) {
	data, hash, err := r.read(ref, fromPath)
	if err != nil {
		return nil, err
	}
	a, err := r.materialize(ctx, hash, ref, data)
	if err != nil {
		return nil, err
	}

	v, err := r.build.Once("image:"+hash, func() (any, error) {
		return probeImage(data, a.URL)
	})
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", ref, err)
	}
	return v.(*Image), nil
}

// probeImage decodes the image bytes and synthesizes the blur placeholder by
// downscaling to at most blurEdge pixels on the long edge.
func probeImage(data []byte, url string) (*Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	bw, bh := blurSize(w, h)
	dst := image.NewRGBA(image.Rect(0, 0, bw, bh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: blurQuality}); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}

	return &Image{
		Src:         url,
		Width:       w,
		Height:      h,
		BlurDataURL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		BlurWidth:   bw,
		BlurHeight:  bh,
	}, nil
}

func blurSize(w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	if w >= h {
		bh := h * blurEdge / w
		return blurEdge, max(bh, 1)
	}
	bw := w * blurEdge / h
	return max(bw, 1), blurEdge
}
