package fonts

import (
	"errors"
	"reflect"
	"testing"
)

// fakeLocator pretends the listed files exist.
type fakeLocator map[string]bool

func (f fakeLocator) Exists(path string) bool { return f[path] }

func TestAvailableKeepsRegistryOrder(t *testing.T) {
	loc := fakeLocator{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf":                 true,
		"/usr/share/fonts/liberation-sans/LiberationSans-Regular.ttf":     true,
		"/usr/share/fonts/liberation-serif/LiberationSerif-Regular.ttf":   true,
		"/usr/share/fonts/truetype/liberation/LiberationMono-Regular.ttf": true,
	}
	expected := []string{"liberation-sans", "liberation-serif", "dejavu-sans"}
	if actual := Available(loc); !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

func TestDefault(t *testing.T) {
	loc := fakeLocator{
		"/usr/share/fonts/gnu-free/FreeSerif.ttf":         true,
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf": true,
	}
	name, err := Default(loc)
	if err != nil {
		t.Fatal(err)
	}
	if name != "free-serif" {
		t.Errorf("expected free-serif, got %s", name)
	}
}

func TestDefaultNoFonts(t *testing.T) {
	if _, err := Default(fakeLocator{}); !errors.Is(err, ErrNoFontsAvailable) {
		t.Errorf("expected ErrNoFontsAvailable, got %v", err)
	}
}

func TestResolveAllFacesInstalled(t *testing.T) {
	loc := fakeLocator{
		"/usr/share/fonts/gnu-free/FreeSans.ttf":            true,
		"/usr/share/fonts/gnu-free/FreeSansBold.ttf":        true,
		"/usr/share/fonts/gnu-free/FreeSansOblique.ttf":     true,
		"/usr/share/fonts/gnu-free/FreeSansBoldOblique.ttf": true,
	}
	res, err := Resolve("free-sans", loc)
	if err != nil {
		t.Fatal(err)
	}
	expected := map[Style]string{
		Regular:    "/usr/share/fonts/gnu-free/FreeSans.ttf",
		Bold:       "/usr/share/fonts/gnu-free/FreeSansBold.ttf",
		Italic:     "/usr/share/fonts/gnu-free/FreeSansOblique.ttf",
		BoldItalic: "/usr/share/fonts/gnu-free/FreeSansBoldOblique.ttf",
	}
	for style, path := range expected {
		face := res.Faces[style]
		if face.Path != path {
			t.Errorf("style %q: expected %s, got %s", style, path, face.Path)
		}
		if face.Variable {
			t.Errorf("style %q: unexpected variable flag", style)
		}
		if face.Weight != style.Weight() {
			t.Errorf("style %q: expected weight %d, got %d", style, style.Weight(), face.Weight)
		}
	}
}

func TestResolveMissingFacesFallBackToRegular(t *testing.T) {
	loc := fakeLocator{
		"/usr/share/fonts/gnu-free/FreeSerif.ttf": true,
	}
	res, err := Resolve("free-serif", loc)
	if err != nil {
		t.Fatal(err)
	}
	for _, style := range Styles() {
		if res.Faces[style].Path != "/usr/share/fonts/gnu-free/FreeSerif.ttf" {
			t.Errorf("style %q: expected fallback to regular, got %s", style, res.Faces[style].Path)
		}
	}
	if res.Faces[Bold].Weight != 700 {
		t.Errorf("bold weight survived fallback: got %d", res.Faces[Bold].Weight)
	}
}

func TestResolveVariableFont(t *testing.T) {
	loc := fakeLocator{
		"/usr/share/fonts/google-noto-vf/NotoSans[wght].ttf": true,
		"/usr/share/fonts/google-noto/NotoSans-Regular.ttf":  true,
		"/usr/share/fonts/google-noto/NotoSans-Bold.ttf":     true,
	}
	res, err := Resolve("noto-sans", loc)
	if err != nil {
		t.Fatal(err)
	}
	reg := res.Faces[Regular]
	if !reg.Variable {
		t.Error("expected variable regular face")
	}
	if reg.Path != "/usr/share/fonts/google-noto-vf/NotoSans[wght].ttf" {
		t.Errorf("unexpected regular path: %s", reg.Path)
	}
	if reg.StaticPath != "/usr/share/fonts/google-noto/NotoSans-Regular.ttf" {
		t.Errorf("unexpected static fallback: %s", reg.StaticPath)
	}
	bold := res.Faces[Bold]
	if bold.StaticPath != "/usr/share/fonts/google-noto/NotoSans-Bold.ttf" {
		t.Errorf("unexpected bold static fallback: %s", bold.StaticPath)
	}
	if bold.Weight != 700 {
		t.Errorf("expected bold weight 700, got %d", bold.Weight)
	}
}

func TestResolveDefaultFamily(t *testing.T) {
	loc := fakeLocator{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf": true,
	}
	res, err := Resolve("", loc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Family.Name != "dejavu-sans" {
		t.Errorf("expected dejavu-sans, got %s", res.Family.Name)
	}
}

func TestResolveUnknownFamily(t *testing.T) {
	_, err := Resolve("comic-sans", fakeLocator{})
	var unknown *UnknownFamilyError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownFamilyError, got %v", err)
	}
	if unknown.Name != "comic-sans" || len(unknown.Known) != len(registry) {
		t.Errorf("incomplete error: %v", unknown)
	}
}

func TestResolveNotInstalled(t *testing.T) {
	_, err := Resolve("noto-serif", fakeLocator{})
	var missing *NotInstalledError
	if !errors.As(err, &missing) {
		t.Fatalf("expected NotInstalledError, got %v", err)
	}
	if missing.DisplayName != "Noto Serif" {
		t.Errorf("unexpected display name: %s", missing.DisplayName)
	}
}

func TestIsVariable(t *testing.T) {
	if !IsVariable("/usr/share/fonts/google-noto-vf/NotoSans[wght].ttf") {
		t.Error("variable font not detected")
	}
	if IsVariable("/usr/share/fonts/google-noto/NotoSans-Regular.ttf") {
		t.Error("static font misdetected as variable")
	}
}
