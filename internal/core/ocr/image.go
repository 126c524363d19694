package ocr

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// PreparedImage 送往辨識引擎前的圖片
type PreparedImage struct {
	DataURI string
	Hash    string
	Format  string
	Width   int
	Height  int
}

// PrepareImage 解碼、縮小到 maxWidth 以內並重新編碼為 JPEG
func PrepareImage(data []byte, maxWidth int) (*PreparedImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	// 檢查圖片格式
	if !isSupportedFormat(format) {
		return nil, fmt.Errorf("%w: unsupported format %s", ErrInvalidImage, format)
	}

	img = downscale(img, maxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image as JPEG: %w", err)
	}

	sum := sha256.Sum256(data)
	bounds := img.Bounds()
	return &PreparedImage{
		DataURI: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Hash:    hex.EncodeToString(sum[:]),
		Format:  format,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
	}, nil
}

// downscale 等比例縮小，寬度未超過時原樣返回
func downscale(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return src
	}
	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	switch format {
	case "jpeg", "png", "gif", "webp":
		return true
	}
	return false
}
