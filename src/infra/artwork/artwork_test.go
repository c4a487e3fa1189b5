package artwork

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/contre95/tubequeue/src/features/config"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestToJPEG_Shrinks(t *testing.T) {
	out, err := ToJPEG(pngImage(t, 640, 360), 320, 80)
	if err != nil {
		t.Fatalf("ToJPEG() error = %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("size = %dx%d, want 320x180", b.Dx(), b.Dy())
	}
}

func TestToJPEG_KeepsSmallImages(t *testing.T) {
	out, err := ToJPEG(pngImage(t, 100, 200), 320, 0)
	if err != nil {
		t.Fatalf("ToJPEG() error = %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 200 {
		t.Errorf("size = %dx%d, want 100x200", b.Dx(), b.Dy())
	}
}

func TestToJPEG_RejectsGarbage(t *testing.T) {
	if _, err := ToJPEG([]byte("not an image"), 320, 85); err == nil {
		t.Error("ToJPEG() accepted garbage")
	}
}

func TestCover(t *testing.T) {
	srcImg := pngImage(t, 1280, 720)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Write(srcImg)
	}))
	defer srv.Close()

	cfg := &config.Config{Media: config.Media{Thumbnail: config.Thumbnail{Enabled: true, Size: 320, Quality: 85}}}
	svc := NewService(config.NewManager(cfg))

	cover, err := svc.Cover(context.Background(), srv.URL+"/maxres.png")
	if err != nil {
		t.Fatalf("Cover() error = %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(cover))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 320 {
		t.Errorf("width = %d, want 320", img.Bounds().Dx())
	}

	if _, err := svc.Cover(context.Background(), srv.URL+"/missing.jpg"); err == nil {
		t.Error("Cover() on 404 returned no error")
	}

	cfg.Media.Thumbnail.Enabled = false
	if cover, err := svc.Cover(context.Background(), srv.URL+"/maxres.png"); cover != nil || err != nil {
		t.Errorf("disabled Cover() = %d bytes, %v", len(cover), err)
	}
}
