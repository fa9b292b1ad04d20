package helpers

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png" // decoder registration for uploaded frames

	"yolo-webcam-go/internal/models"
)

// isJPEGData checks if the byte slice contains JPEG data by checking magic bytes
func isJPEGData(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	// JPEG magic bytes: FF D8
	return data[0] == 0xFF && data[1] == 0xD8
}

// CopyBGRToRGBA copies region r of a BGR24 frame into dst, whose origin maps to r.Min.
// r must lie within the frame.
func CopyBGRToRGBA(frame *models.RawFrame, r image.Rectangle, dst *image.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := frame.Data[(y*frame.Width+r.Min.X)*3 : (y*frame.Width+r.Max.X)*3]
		row := dst.Pix[(y-r.Min.Y)*dst.Stride:]
		for i, j := 0, 0; i < len(src); i, j = i+3, j+4 {
			row[j] = src[i+2]
			row[j+1] = src[i+1]
			row[j+2] = src[i]
			row[j+3] = 0xFF
		}
	}
}

// CopyRGBAToBGR writes src back into region r of a BGR24 frame. Alpha is dropped.
func CopyRGBAToBGR(src *image.RGBA, frame *models.RawFrame, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst := frame.Data[(y*frame.Width+r.Min.X)*3 : (y*frame.Width+r.Max.X)*3]
		row := src.Pix[(y-r.Min.Y)*src.Stride:]
		for i, j := 0, 0; i < len(dst); i, j = i+3, j+4 {
			dst[i] = row[j+2]
			dst[i+1] = row[j+1]
			dst[i+2] = row[j]
		}
	}
}

// FrameToRGBA converts a whole BGR24 frame into a new RGBA image
func FrameToRGBA(frame *models.RawFrame) *image.RGBA {
	bounds := image.Rect(0, 0, frame.Width, frame.Height)
	img := image.NewRGBA(bounds)
	CopyBGRToRGBA(frame, bounds, img)
	return img
}

// ImageToFrame converts any image into a BGR24 frame
func ImageToFrame(img image.Image, cameraID string) *models.RawFrame {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	frame := &models.RawFrame{
		CameraID: cameraID,
		Data:     make([]byte, b.Dx()*b.Dy()*3),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Format:   models.FormatBGR24,
	}
	CopyRGBAToBGR(rgba, frame, rgba.Bounds())
	return frame
}

// DecodeFrame decodes a JPEG or PNG payload into a BGR24 frame
func DecodeFrame(data []byte, cameraID string) (*models.RawFrame, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return ImageToFrame(img, cameraID), nil
}

// EncodeFrameJPEG encodes a BGR24 frame as JPEG
func EncodeFrameJPEG(frame *models.RawFrame, quality int) ([]byte, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, FrameToRGBA(frame), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame as JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// EnsureJPEG passes JPEG data through and re-encodes anything else image.Decode understands
func EnsureJPEG(data []byte, quality int) ([]byte, error) {
	if isJPEGData(data) {
		return data, nil
	}
	frame, err := DecodeFrame(data, "")
	if err != nil {
		return nil, err
	}
	return EncodeFrameJPEG(frame, quality)
}
