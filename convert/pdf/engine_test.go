package pdf

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"go.uber.org/zap/zaptest"

	"u2b/fonts"
	"u2b/utils/images"
)

func TestScaledSize(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
		scale, max    float64
		w, h          float64
	}{
		{name: "wide image shrinks to fit", width: 2000, height: 1000, scale: 1, max: 500, w: 500, h: 250},
		{name: "narrow image keeps natural size", width: 100, height: 50, scale: 1, max: 500, w: 100, h: 50},
		{name: "scale factor applies below the cap", width: 300, height: 150, scale: 0.5, max: 500, w: 150, h: 75},
		{name: "scale factor cannot exceed the cap", width: 400, height: 200, scale: 2, max: 500, w: 500, h: 250},
		{name: "tall image limited by width only", width: 200, height: 800, scale: 1, max: 500, w: 200, h: 800},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, h := scaledSize(c.width, c.height, c.scale, c.max)
			if w != c.w || h != c.h {
				t.Errorf("scaledSize(%d, %d, %g, %g): expected %gx%g, got %gx%g",
					c.width, c.height, c.scale, c.max, c.w, c.h, w, h)
			}
		})
	}
}

func newTestEngine(t *testing.T) *engine {
	t.Helper()
	if _, err := fonts.Default(nil); err != nil {
		t.Skip("no known font families installed")
	}
	eng, err := newEngine("", 1.0, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestInsertImageSkipsCorrupt(t *testing.T) {
	eng := newTestEngine(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.png")
	if err := imaging.Save(imaging.New(200, 100, color.White), good); err != nil {
		t.Fatal(err)
	}
	corrupt := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("this is not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	eng.InsertImage(images.Downloaded{Path: good, Width: 200, Height: 100})
	eng.InsertImage(images.Downloaded{Path: corrupt, Width: 200, Height: 100})
	eng.InsertImage(images.Downloaded{Path: good, Width: 200, Height: 100})

	out := filepath.Join(dir, "out.pdf")
	if err := eng.Save(out); err != nil {
		t.Fatalf("corrupt image must not fail the document: %v", err)
	}
	fi, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() == 0 {
		t.Error("empty PDF written")
	}
}

func TestInsertImageMissingFile(t *testing.T) {
	eng := newTestEngine(t)

	eng.InsertImage(images.Downloaded{Path: filepath.Join(t.TempDir(), "gone.png"), Width: 200, Height: 100})

	out := filepath.Join(t.TempDir(), "out.pdf")
	if err := eng.Save(out); err != nil {
		t.Fatalf("missing image must not fail the document: %v", err)
	}
}
