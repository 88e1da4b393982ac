package scaffold

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Placeholders baked into the template tree. Generate rewrites every
// occurrence, in file contents and in file names.
const (
	placeholderModule  = "github.com/veloflow/service-template"
	placeholderName    = "service-template"
	placeholderSvcID   = "your-service-v1"
	placeholderDisplay = "VeloFlow Service Template"
)

var serviceNameRe = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Options control one scaffold generation.
type Options struct {
	// ServiceName is the kebab-case name of the new service, e.g.
	// "pdf-to-xls". Required.
	ServiceName string
	// DisplayName is the human-readable name; defaults to ServiceName.
	DisplayName string
	// ModulePath is the new Go module path; defaults to
	// "github.com/veloflow/{ServiceName}".
	ModulePath string
}

// skipped directories and files: VCS state, editor droppings and local env
// files never belong in a freshly scaffolded service.
var skipDirs = map[string]bool{
	".git":         true,
	".idea":        true,
	".vscode":      true,
	"node_modules": true,
}

var skipFiles = map[string]bool{
	".env":      true,
	".DS_Store": true,
}

// Generate copies the template tree at templateDir into destDir, replacing
// the known placeholders. destDir must not already exist; a partial previous
// run has to be removed by the caller first.
func Generate(templateDir, destDir string, opts Options) error {
	if !serviceNameRe.MatchString(opts.ServiceName) {
		return fmt.Errorf("invalid service name %q: must be kebab-case (letters, digits, dashes)", opts.ServiceName)
	}
	if _, err := os.Stat(destDir); err == nil {
		return fmt.Errorf("destination %s already exists", destDir)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat destination %s: %w", destDir, err)
	}

	replacer := newReplacer(opts)

	err := filepath.WalkDir(templateDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(templateDir, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if rel != "." && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(destDir, replacer.Replace(rel)), 0o755)
		}

		if skipFiles[d.Name()] {
			return nil
		}

		return copySubstituted(path, filepath.Join(destDir, replacer.Replace(rel)), replacer)
	})
	if err != nil {
		return fmt.Errorf("scaffold %s: %w", opts.ServiceName, err)
	}
	return nil
}

// newReplacer builds the placeholder substitution. strings.Replacer picks the
// longest match first, so the module path wins over the bare service name it
// contains.
func newReplacer(opts Options) *strings.Replacer {
	display := opts.DisplayName
	if display == "" {
		display = opts.ServiceName
	}
	modulePath := opts.ModulePath
	if modulePath == "" {
		modulePath = "github.com/veloflow/" + opts.ServiceName
	}

	return strings.NewReplacer(
		placeholderModule, modulePath,
		placeholderDisplay, display,
		placeholderSvcID, opts.ServiceName+"-v1",
		placeholderName, opts.ServiceName,
	)
}

func copySubstituted(srcPath, destPath string, replacer *strings.Replacer) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", srcPath, err)
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", srcPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", destPath, err)
	}

	out := replacer.Replace(string(data))
	if err := os.WriteFile(destPath, []byte(out), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return nil
}
