package convert

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"u2b/common"
	"u2b/config"
	"u2b/content"
	"u2b/state"
)

// buildOutputPath returns the output file path. Explicit file destination is
// used as is, otherwise the name comes from the naming template or from the
// article title and goes into the destination directory (current directory
// when none was given).
func buildOutputPath(doc *content.Document, src, dst string, format common.OutputFmt, env *state.LocalEnv) (string, error) {
	if isFileDestination(dst) {
		return filepath.Abs(dst)
	}

	outDir := dst
	if len(outDir) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
		outDir = wd
	}
	outDir, err := filepath.Abs(outDir)
	if err != nil {
		return "", err
	}

	if env.Cfg.Document.OutputNameTemplate == "" {
		return filepath.Join(outDir, defaultFileName(doc, src, format, env)), nil
	}

	expandedName := expandOutputNameTemplate(doc, format, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(outDir, defaultFileName(doc, src, format, env)), nil
	}
	return assemblePathWithSubdirs(outDir, expandedName, format, env), nil
}

// isFileDestination reports whether dst names an output file rather than a
// directory. A known output extension on a non-directory path wins.
func isFileDestination(dst string) bool {
	if len(dst) == 0 {
		return false
	}
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		return false
	}
	_, err := common.ParseOutputFmtFromPath(dst)
	return err == nil
}

func defaultFileName(doc *content.Document, src string, format common.OutputFmt, env *state.LocalEnv) string {
	baseName := doc.Meta.Title
	if len(baseName) == 0 {
		baseName = sourceBaseName(src)
	}
	return cleanPathSegment(baseName, env) + format.Ext()
}

// sourceBaseName derives a usable name from the article URL when the page
// had no title.
func sourceBaseName(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return "article"
	}
	base := strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path))
	if len(base) == 0 || base == "." || base == "/" {
		base = u.Hostname()
	}
	if len(base) == 0 {
		return "article"
	}
	return base
}

func expandOutputNameTemplate(doc *content.Document, format common.OutputFmt, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(doc, outputNameTemplateField, env.Cfg.Document.OutputNameTemplate, format)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(expandedName)
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output
// path, cleaning and transliterating segments as needed.
func assemblePathWithSubdirs(outDir, expandedName string, format common.OutputFmt, env *state.LocalEnv) string {
	pathSegments := splitAndCleanPath(expandedName)
	if len(pathSegments) == 0 {
		return outDir
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], env) + format.Ext()
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)
	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}
	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
		path = head
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Document.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
