// Package imaging prepares user-supplied screenshots for the model call:
// decode, downscale, and re-encode under the provider's payload budget.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/brandscope/internal/model"
)

const (
	// MaxEncodedBytes is the provider-imposed budget for one image payload
	// after encoding.
	MaxEncodedBytes = 4 * 1024 * 1024

	// maxLongestEdge caps image dimensions before quality stepping.
	maxLongestEdge = 1800

	startQuality  = 80
	qualityStep   = 10
	floorQuality  = 40
	rescueScale   = 0.7
	rescueQuality = 70
	batchParallel = 4
)

// ImageLoadError reports a file that could not be decoded as an image.
type ImageLoadError struct {
	Filename string
	Err      error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("imaging: %s: %v", e.Filename, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// Compress decodes an input image and re-encodes it as JPEG within the
// payload budget: downscale to the longest-edge cap, then step quality
// down to the floor, and as a last resort scale dimensions by 0.7 at a
// fixed quality.
func Compress(filename string, data []byte) (model.ImageAttachment, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return model.ImageAttachment{}, &ImageLoadError{Filename: filename, Err: err}
	}

	img := downscale(src, maxLongestEdge)

	encoded, quality, err := encodeUnderBudget(img)
	if err != nil {
		return model.ImageAttachment{}, eris.Wrapf(err, "imaging: encode %s", filename)
	}

	zap.L().Debug("imaging: compressed",
		zap.String("file", filename),
		zap.String("source_format", format),
		zap.Int("source_bytes", len(data)),
		zap.Int("encoded_bytes", len(encoded)),
		zap.Int("quality", quality),
	)

	return model.ImageAttachment{
		MediaType: "image/jpeg",
		Data:      encoded,
		Filename:  filename,
	}, nil
}

// encodeUnderBudget steps JPEG quality down until the payload fits, then
// falls back to one dimension rescue pass.
func encodeUnderBudget(img image.Image) ([]byte, int, error) {
	for q := startQuality; q >= floorQuality; q -= qualityStep {
		encoded, err := encodeJPEG(img, q)
		if err != nil {
			return nil, 0, err
		}
		if len(encoded) <= MaxEncodedBytes {
			return encoded, q, nil
		}
	}

	// Last resort: shrink dimensions and fix quality.
	b := img.Bounds()
	shrunk := scaleTo(img, int(float64(b.Dx())*rescueScale), int(float64(b.Dy())*rescueScale))
	encoded, err := encodeJPEG(shrunk, rescueQuality)
	if err != nil {
		return nil, 0, err
	}
	return encoded, rescueQuality, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, eris.Wrap(err, "jpeg encode")
	}
	return buf.Bytes(), nil
}

// downscale resizes img so its longest edge is at most maxEdge, preserving
// aspect ratio. Images already under the cap are returned unchanged.
func downscale(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxEdge {
		return img
	}

	ratio := float64(maxEdge) / float64(longest)
	return scaleTo(img, int(float64(w)*ratio), int(float64(h)*ratio))
}

// scaleTo resamples img to the target dimensions with bilinear filtering.
// No example in our stack ships an imaging library, so this stays local.
func scaleTo(img image.Image, w, h int) image.Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	xRatio := float64(b.Dx()) / float64(w)
	yRatio := float64(b.Dy()) / float64(h)

	for y := 0; y < h; y++ {
		srcY := float64(y) * yRatio
		y0 := int(srcY)
		fy := srcY - float64(y0)
		y1 := y0 + 1
		if y1 >= b.Dy() {
			y1 = b.Dy() - 1
		}
		for x := 0; x < w; x++ {
			srcX := float64(x) * xRatio
			x0 := int(srcX)
			fx := srcX - float64(x0)
			x1 := x0 + 1
			if x1 >= b.Dx() {
				x1 = b.Dx() - 1
			}

			c00 := colorVec(img, b, x0, y0)
			c10 := colorVec(img, b, x1, y0)
			c01 := colorVec(img, b, x0, y1)
			c11 := colorVec(img, b, x1, y1)

			i := dst.PixOffset(x, y)
			for ch := 0; ch < 4; ch++ {
				top := c00[ch]*(1-fx) + c10[ch]*fx
				bot := c01[ch]*(1-fx) + c11[ch]*fx
				dst.Pix[i+ch] = uint8(top*(1-fy) + bot*fy)
			}
		}
	}
	return dst
}

func colorVec(img image.Image, b image.Rectangle, x, y int) [4]float64 {
	r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
	return [4]float64{
		float64(r >> 8),
		float64(g >> 8),
		float64(bl >> 8),
		float64(a >> 8),
	}
}

// BatchItem is one input image for CompressBatch.
type BatchItem struct {
	Filename string
	Data     []byte
}

// BatchResult pairs each input with its outcome. Failures are isolated
// per file; one undecodable image does not sink the rest of the batch.
type BatchResult struct {
	Attachment model.ImageAttachment
	Err        error
}

// CompressBatch converts a batch of uploads concurrently and returns
// results in input order.
func CompressBatch(ctx context.Context, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchParallel)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = BatchResult{Err: err}
				return nil
			}
			att, err := Compress(item.Filename, item.Data)
			results[i] = BatchResult{Attachment: att, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
