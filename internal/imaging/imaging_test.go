package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPreparePhotoDimensions(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		wantW, wantH int
	}{
		{"small jpeg kept", encodeJPEG(t, 50, 40), 50, 40},
		{"wide png scaled", encodePNG(t, 2048, 512, color.Black), MaxDimension, 256},
		{"tall jpeg scaled", encodeJPEG(t, 300, 3000), 102, MaxDimension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PreparePhoto(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("PreparePhoto: %v", err)
			}
			if p.MIME != "image/jpeg" {
				t.Errorf("MIME = %s, want image/jpeg", p.MIME)
			}
			if p.Width != tt.wantW || p.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", p.Width, p.Height, tt.wantW, tt.wantH)
			}

			img, err := jpeg.Decode(bytes.NewReader(p.Data))
			if err != nil {
				t.Fatalf("decoding result: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("encoded size = %dx%d", b.Dx(), b.Dy())
			}
		})
	}
}

func TestPreparePhotoFlattensTransparency(t *testing.T) {
	p, err := PreparePhoto(bytes.NewReader(encodePNG(t, 8, 8, color.Transparent)))
	if err != nil {
		t.Fatalf("PreparePhoto: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(p.Data))
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := img.At(4, 4).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("transparent pixel should become white, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestPreparePhotoRejectsOtherFormats(t *testing.T) {
	for _, data := range [][]byte{[]byte("not an image"), []byte("GIF89a......")} {
		_, err := PreparePhoto(bytes.NewReader(data))
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("%q: expected ErrUnsupported, got %v", data[:6], err)
		}
	}
}

func TestPreparePhotoTooLarge(t *testing.T) {
	data := make([]byte, MaxUploadBytes+10)
	copy(data, "\xff\xd8\xff")
	_, err := PreparePhoto(bytes.NewReader(data))
	if err == nil || errors.Is(err, ErrUnsupported) {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestFit(t *testing.T) {
	if w, h := fit(4000, 1, 1024); w != 1024 || h != 1 {
		t.Errorf("fit(4000,1) = %d,%d", w, h)
	}
	if w, h := fit(1024, 1024, 1024); w != 1024 || h != 1024 {
		t.Errorf("fit(1024,1024) = %d,%d", w, h)
	}
}
