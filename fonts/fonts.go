// Package fonts knows which Unicode font families the PDF renderer can use
// and where their files usually live on a host system.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Style selects one of the four faces every family provides.
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

// String returns the PDF style selector for the face.
func (s Style) String() string {
	switch s {
	case Regular:
		return ""
	case Bold:
		return "B"
	case Italic:
		return "I"
	case BoldItalic:
		return "BI"
	default:
		// this should never happen
		panic("unsupported font style")
	}
}

// Weight returns the weight axis value used when loading variable fonts.
func (s Style) Weight() int {
	if s == Bold || s == BoldItalic {
		return 700
	}
	return 400
}

// Styles lists all faces in loading order.
func Styles() []Style {
	return []Style{Regular, Bold, Italic, BoldItalic}
}

// Family describes a font family with per-face candidate file locations in
// preference order. Locations cover common Fedora, Debian/Ubuntu and Arch
// layouts.
type Family struct {
	Name        string
	DisplayName string
	Regular     []string
	Bold        []string
	Italic      []string
	BoldItalic  []string
}

// Candidates returns the candidate list for a face.
func (f *Family) Candidates(s Style) []string {
	switch s {
	case Bold:
		return f.Bold
	case Italic:
		return f.Italic
	case BoldItalic:
		return f.BoldItalic
	default:
		return f.Regular
	}
}

// registry order matters - Default picks the first installed family.
var registry = []Family{
	{
		Name:        "noto-sans",
		DisplayName: "Noto Sans",
		Regular: []string{
			"/usr/share/fonts/google-noto-vf/NotoSans[wght].ttf",
			"/usr/share/fonts/google-noto/NotoSans-Regular.ttf",
			"/usr/share/fonts/noto/NotoSans-Regular.ttf",
		},
		Bold: []string{
			"/usr/share/fonts/google-noto-vf/NotoSans[wght].ttf",
			"/usr/share/fonts/google-noto/NotoSans-Bold.ttf",
			"/usr/share/fonts/noto/NotoSans-Bold.ttf",
		},
		Italic: []string{
			"/usr/share/fonts/google-noto-vf/NotoSans-Italic[wght].ttf",
			"/usr/share/fonts/google-noto/NotoSans-Italic.ttf",
			"/usr/share/fonts/noto/NotoSans-Italic.ttf",
		},
		BoldItalic: []string{
			"/usr/share/fonts/google-noto-vf/NotoSans-Italic[wght].ttf",
			"/usr/share/fonts/google-noto/NotoSans-BoldItalic.ttf",
			"/usr/share/fonts/noto/NotoSans-BoldItalic.ttf",
		},
	},
	{
		Name:        "noto-serif",
		DisplayName: "Noto Serif",
		Regular: []string{
			"/usr/share/fonts/google-noto-vf/NotoSerif[wght].ttf",
			"/usr/share/fonts/google-noto/NotoSerif-Regular.ttf",
			"/usr/share/fonts/noto/NotoSerif-Regular.ttf",
		},
		Bold: []string{
			"/usr/share/fonts/google-noto-vf/NotoSerif[wght].ttf",
			"/usr/share/fonts/google-noto/NotoSerif-Bold.ttf",
			"/usr/share/fonts/noto/NotoSerif-Bold.ttf",
		},
		Italic: []string{
			"/usr/share/fonts/google-noto-vf/NotoSerif-Italic[wght].ttf",
			"/usr/share/fonts/google-noto/NotoSerif-Italic.ttf",
			"/usr/share/fonts/noto/NotoSerif-Italic.ttf",
		},
		BoldItalic: []string{
			"/usr/share/fonts/google-noto-vf/NotoSerif-Italic[wght].ttf",
			"/usr/share/fonts/google-noto/NotoSerif-BoldItalic.ttf",
			"/usr/share/fonts/noto/NotoSerif-BoldItalic.ttf",
		},
	},
	{
		Name:        "liberation-sans",
		DisplayName: "Liberation Sans",
		Regular: []string{
			"/usr/share/fonts/liberation-sans/LiberationSans-Regular.ttf",
			"/usr/share/fonts/liberation-sans-fonts/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		},
		Bold: []string{
			"/usr/share/fonts/liberation-sans/LiberationSans-Bold.ttf",
			"/usr/share/fonts/liberation-sans-fonts/LiberationSans-Bold.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
		},
		Italic: []string{
			"/usr/share/fonts/liberation-sans/LiberationSans-Italic.ttf",
			"/usr/share/fonts/liberation-sans-fonts/LiberationSans-Italic.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-Italic.ttf",
		},
		BoldItalic: []string{
			"/usr/share/fonts/liberation-sans/LiberationSans-BoldItalic.ttf",
			"/usr/share/fonts/liberation-sans-fonts/LiberationSans-BoldItalic.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-BoldItalic.ttf",
		},
	},
	{
		Name:        "liberation-serif",
		DisplayName: "Liberation Serif",
		Regular: []string{
			"/usr/share/fonts/liberation-serif/LiberationSerif-Regular.ttf",
			"/usr/share/fonts/liberation-serif-fonts/LiberationSerif-Regular.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSerif-Regular.ttf",
		},
		Bold: []string{
			"/usr/share/fonts/liberation-serif/LiberationSerif-Bold.ttf",
			"/usr/share/fonts/liberation-serif-fonts/LiberationSerif-Bold.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSerif-Bold.ttf",
		},
		Italic: []string{
			"/usr/share/fonts/liberation-serif/LiberationSerif-Italic.ttf",
			"/usr/share/fonts/liberation-serif-fonts/LiberationSerif-Italic.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSerif-Italic.ttf",
		},
		BoldItalic: []string{
			"/usr/share/fonts/liberation-serif/LiberationSerif-BoldItalic.ttf",
			"/usr/share/fonts/liberation-serif-fonts/LiberationSerif-BoldItalic.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSerif-BoldItalic.ttf",
		},
	},
	{
		Name:        "free-sans",
		DisplayName: "Free Sans",
		Regular: []string{
			"/usr/share/fonts/gnu-free/FreeSans.ttf",
			"/usr/share/fonts/truetype/freefont/FreeSans.ttf",
		},
		Bold: []string{
			"/usr/share/fonts/gnu-free/FreeSansBold.ttf",
			"/usr/share/fonts/truetype/freefont/FreeSansBold.ttf",
		},
		Italic: []string{
			"/usr/share/fonts/gnu-free/FreeSansOblique.ttf",
			"/usr/share/fonts/truetype/freefont/FreeSansOblique.ttf",
		},
		BoldItalic: []string{
			"/usr/share/fonts/gnu-free/FreeSansBoldOblique.ttf",
			"/usr/share/fonts/truetype/freefont/FreeSansBoldOblique.ttf",
		},
	},
	{
		Name:        "free-serif",
		DisplayName: "Free Serif",
		Regular: []string{
			"/usr/share/fonts/gnu-free/FreeSerif.ttf",
			"/usr/share/fonts/truetype/freefont/FreeSerif.ttf",
		},
		Bold: []string{
			"/usr/share/fonts/gnu-free/FreeSerifBold.ttf",
			"/usr/share/fonts/truetype/freefont/FreeSerifBold.ttf",
		},
		Italic: []string{
			"/usr/share/fonts/gnu-free/FreeSerifItalic.ttf",
			"/usr/share/fonts/truetype/freefont/FreeSerifItalic.ttf",
		},
		BoldItalic: []string{
			"/usr/share/fonts/gnu-free/FreeSerifBoldItalic.ttf",
			"/usr/share/fonts/truetype/freefont/FreeSerifBoldItalic.ttf",
		},
	},
	{
		Name:        "dejavu-sans",
		DisplayName: "DejaVu Sans",
		Regular: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/dejavu-sans-fonts/DejaVuSans.ttf",
			"/usr/share/fonts/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/TTF/DejaVuSans.ttf",
			"C:/Windows/Fonts/DejaVuSans.ttf",
		},
		Bold: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
			"/usr/share/fonts/dejavu-sans-fonts/DejaVuSans-Bold.ttf",
			"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
			"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
			"C:/Windows/Fonts/DejaVuSans-Bold.ttf",
		},
		Italic: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans-Oblique.ttf",
			"/usr/share/fonts/dejavu-sans-fonts/DejaVuSans-Oblique.ttf",
			"/usr/share/fonts/dejavu/DejaVuSans-Oblique.ttf",
			"/usr/share/fonts/TTF/DejaVuSans-Oblique.ttf",
			"C:/Windows/Fonts/DejaVuSans-Oblique.ttf",
		},
		BoldItalic: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans-BoldOblique.ttf",
			"/usr/share/fonts/dejavu-sans-fonts/DejaVuSans-BoldOblique.ttf",
			"/usr/share/fonts/dejavu/DejaVuSans-BoldOblique.ttf",
			"/usr/share/fonts/TTF/DejaVuSans-BoldOblique.ttf",
			"C:/Windows/Fonts/DejaVuSans-BoldOblique.ttf",
		},
	},
	{
		Name:        "dejavu-serif",
		DisplayName: "DejaVu Serif",
		Regular: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSerif.ttf",
			"/usr/share/fonts/dejavu-serif-fonts/DejaVuSerif.ttf",
			"/usr/share/fonts/dejavu/DejaVuSerif.ttf",
			"/usr/share/fonts/TTF/DejaVuSerif.ttf",
			"C:/Windows/Fonts/DejaVuSerif.ttf",
		},
		Bold: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSerif-Bold.ttf",
			"/usr/share/fonts/dejavu-serif-fonts/DejaVuSerif-Bold.ttf",
			"/usr/share/fonts/dejavu/DejaVuSerif-Bold.ttf",
			"/usr/share/fonts/TTF/DejaVuSerif-Bold.ttf",
			"C:/Windows/Fonts/DejaVuSerif-Bold.ttf",
		},
		Italic: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSerif-Italic.ttf",
			"/usr/share/fonts/dejavu-serif-fonts/DejaVuSerif-Italic.ttf",
			"/usr/share/fonts/dejavu/DejaVuSerif-Italic.ttf",
			"/usr/share/fonts/TTF/DejaVuSerif-Italic.ttf",
			"C:/Windows/Fonts/DejaVuSerif-Italic.ttf",
		},
		BoldItalic: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSerif-BoldItalic.ttf",
			"/usr/share/fonts/dejavu-serif-fonts/DejaVuSerif-BoldItalic.ttf",
			"/usr/share/fonts/dejavu/DejaVuSerif-BoldItalic.ttf",
			"/usr/share/fonts/TTF/DejaVuSerif-BoldItalic.ttf",
			"C:/Windows/Fonts/DejaVuSerif-BoldItalic.ttf",
		},
	},
}

// Locator checks font file presence. Production code uses OSLocator, tests
// substitute their own.
type Locator interface {
	Exists(path string) bool
}

// OSLocator checks the real file system.
type OSLocator struct{}

func (OSLocator) Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// ErrNoFontsAvailable is returned when no known family is installed.
var ErrNoFontsAvailable = errors.New(
	"no Unicode fonts found, install one of the following:\n" +
		"  - Noto Sans: sudo dnf install google-noto-sans-fonts\n" +
		"  - Liberation Sans: sudo dnf install liberation-sans-fonts\n" +
		"  - DejaVu Sans: sudo dnf install dejavu-sans-fonts\n" +
		"  - Free Sans: sudo dnf install gnu-free-sans-fonts\n" +
		"for Debian/Ubuntu use 'apt install', for Arch use 'pacman -S'")

// UnknownFamilyError reports a family name outside the registry.
type UnknownFamilyError struct {
	Name  string
	Known []string
}

func (e *UnknownFamilyError) Error() string {
	return fmt.Sprintf("unknown font family %q, supported families: %s", e.Name, strings.Join(e.Known, ", "))
}

// NotInstalledError reports a known family with no font files on the system.
type NotInstalledError struct {
	Name        string
	DisplayName string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("font family %q (%s) is not installed", e.Name, e.DisplayName)
}

// IsVariable reports whether the file is a variable font. Such fonts carry
// the weight axis marker in the file name.
func IsVariable(path string) bool {
	return strings.Contains(path, "[wght]")
}

// Families returns the registry in definition order.
func Families() []Family {
	return append([]Family(nil), registry...)
}

// Available returns names of families whose regular face is installed, in
// registry order.
func Available(loc Locator) []string {
	if loc == nil {
		loc = OSLocator{}
	}
	var names []string
	for i := range registry {
		if _, ok := locate(loc, registry[i].Regular); ok {
			names = append(names, registry[i].Name)
		}
	}
	return names
}

// Default returns the name of the first installed family.
func Default(loc Locator) (string, error) {
	names := Available(loc)
	if len(names) == 0 {
		return "", ErrNoFontsAvailable
	}
	return names[0], nil
}

// Face is a single resolved font file.
type Face struct {
	Path     string
	Weight   int
	Variable bool
	// StaticPath is the first installed non-variable candidate for the same
	// face, used when a variable font fails to load. Empty when there is no
	// such file.
	StaticPath string
}

// Resolved carries everything the PDF renderer needs to register a family.
type Resolved struct {
	Family Family
	Faces  map[Style]Face
}

// Resolve maps a family name to installed font files, one per face. Missing
// faces silently reuse the regular file so style switches never fail. Empty
// name selects the first installed family.
func Resolve(name string, loc Locator) (*Resolved, error) {
	if loc == nil {
		loc = OSLocator{}
	}
	if len(name) == 0 {
		def, err := Default(loc)
		if err != nil {
			return nil, err
		}
		name = def
	}

	var family *Family
	for i := range registry {
		if registry[i].Name == name {
			family = &registry[i]
			break
		}
	}
	if family == nil {
		known := make([]string, 0, len(registry))
		for i := range registry {
			known = append(known, registry[i].Name)
		}
		return nil, &UnknownFamilyError{Name: name, Known: known}
	}

	regular, ok := locate(loc, family.Regular)
	if !ok {
		return nil, &NotInstalledError{Name: family.Name, DisplayName: family.DisplayName}
	}

	res := &Resolved{Family: *family, Faces: make(map[Style]Face, 4)}
	for _, style := range Styles() {
		candidates := family.Candidates(style)
		path, found := locate(loc, candidates)
		if !found {
			path = regular
			candidates = family.Regular
		}
		face := Face{Path: path, Weight: style.Weight(), Variable: IsVariable(path)}
		if face.Variable {
			for _, c := range candidates {
				if !IsVariable(c) && loc.Exists(c) {
					face.StaticPath = c
					break
				}
			}
		}
		res.Faces[style] = face
	}
	return res, nil
}

func locate(loc Locator, candidates []string) (string, bool) {
	for _, path := range candidates {
		if loc.Exists(path) {
			return path, true
		}
	}
	return "", false
}
