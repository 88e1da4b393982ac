package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"go.mod": "module github.com/veloflow/service-template\n\ngo 1.24.1\n",
		"cmd/lambda/main.go": `package main

import "github.com/veloflow/service-template/internal/config"

// SERVICE_ID defaults to your-service-v1
var _ = config.Load
`,
		"service.yaml":               "name: service-template\ndisplay_name: VeloFlow Service Template\n",
		"docs/service-template.md":   "# VeloFlow Service Template\n",
		".env":                       "SECRET=1\n",
		".git/config":                "[core]\n",
		"internal/processor/tmpl.go": "package processor\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestGenerateSubstitutesPlaceholders(t *testing.T) {
	tmpl := writeTemplate(t)
	dest := filepath.Join(t.TempDir(), "pdf-to-xls")

	err := Generate(tmpl, dest, Options{
		ServiceName: "pdf-to-xls",
		DisplayName: "PDF to XLS Converter",
	})
	require.NoError(t, err)

	gomod, err := os.ReadFile(filepath.Join(dest, "go.mod"))
	require.NoError(t, err)
	assert.Contains(t, string(gomod), "module github.com/veloflow/pdf-to-xls")
	assert.NotContains(t, string(gomod), "service-template")

	mainGo, err := os.ReadFile(filepath.Join(dest, "cmd/lambda/main.go"))
	require.NoError(t, err)
	assert.Contains(t, string(mainGo), "github.com/veloflow/pdf-to-xls/internal/config")
	assert.Contains(t, string(mainGo), "pdf-to-xls-v1")

	manifest, err := os.ReadFile(filepath.Join(dest, "service.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), "name: pdf-to-xls")
	assert.Contains(t, string(manifest), "display_name: PDF to XLS Converter")
}

func TestGenerateRenamesFiles(t *testing.T) {
	tmpl := writeTemplate(t)
	dest := filepath.Join(t.TempDir(), "svc")

	require.NoError(t, Generate(tmpl, dest, Options{ServiceName: "invoice-parser"}))

	_, err := os.Stat(filepath.Join(dest, "docs/invoice-parser.md"))
	assert.NoError(t, err)
}

func TestGenerateSkipsLocalState(t *testing.T) {
	tmpl := writeTemplate(t)
	dest := filepath.Join(t.TempDir(), "svc")

	require.NoError(t, Generate(tmpl, dest, Options{ServiceName: "clean-svc"}))

	_, err := os.Stat(filepath.Join(dest, ".env"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dest, ".git"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateRejectsBadNames(t *testing.T) {
	tmpl := writeTemplate(t)

	for _, name := range []string{"", "Bad-Name", "1starts-with-digit", "has_underscore", "has space"} {
		err := Generate(tmpl, filepath.Join(t.TempDir(), "x"), Options{ServiceName: name})
		assert.Error(t, err, "name %q should be rejected", name)
	}
}

func TestGenerateRefusesExistingDestination(t *testing.T) {
	tmpl := writeTemplate(t)
	dest := t.TempDir() // already exists

	err := Generate(tmpl, dest, Options{ServiceName: "pdf-to-xls"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "service.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: pdf-to-xls
type: pdf_processor
display_name: PDF to XLS Converter
capabilities:
  supported_formats: [pdf]
  max_file_size_mb: 50
constraints:
  max_concurrency: 10
  timeout_seconds: 900
  memory_mb: 3008
parameters:
  - name: processing_date
    type: date
    required: false
`), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, "pdf-to-xls", m.Name)
	assert.Equal(t, "1.0.0", m.Version) // defaulted
	assert.Equal(t, 10, m.Priority)     // defaulted
	assert.Equal(t, 900, m.Constraints.TimeoutSeconds)
	assert.Equal(t, "pdf-to-xls-dev-v1", m.ServiceID("dev"))
	assert.Equal(t, "veloflow-qa-pdf-to-xls", m.LambdaName("qa"))
}

func TestLoadManifestRejectsMissingName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "service.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: template\n"), 0o644))

	_, err := LoadManifest(path)
	assert.Error(t, err)
}
