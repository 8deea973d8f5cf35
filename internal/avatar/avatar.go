package avatar

import (
	"bytes"
	"image"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	// MaxFileSize adalah batas ukuran file upload avatar (1 MB).
	MaxFileSize = 1000000
	// Size adalah dimensi avatar setelah normalisasi (250x250).
	Size = 250
)

var allowedExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// AllowedExt memeriksa ekstensi file yang diizinkan untuk avatar.
func AllowedExt(filename string) bool {
	return allowedExts[strings.ToLower(filepath.Ext(filename))]
}

// Normalize mendecode gambar (jpg/jpeg/png), me-resize ke tepat 250x250,
// lalu meng-encode ulang sebagai PNG. Hasilnya deterministik untuk
// input yang sama.
func Normalize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
