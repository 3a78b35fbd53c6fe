package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/customsdoc/internal/model"
)

const manifestCSV = `# Shipper: Acme Exports
# Consignee: Globex GmbH
# Incoterm: FOB

partNumber,description,quantity,netWeightKg,valueUsd,htsCode,countryOfOrigin
A-100,Laptop,2,3.5,2400.00,8471.30.0100,CN
B-200,Monitor,1,4.2,320.50,8528.52.0000,KR
`

const validShipmentJSON = `{
  "shipment": {
    "id": "S1",
    "shipper": {"name": "Acme Exports"},
    "consignee": {"name": "Globex GmbH"},
    "incoterm": "FOB",
    "destinationCountry": "DE",
    "totalCustomsValue": 200,
    "totalWeightKg": 3,
    "aesItn": "X20240101123456"
  },
  "lineItems": [
    {"description": "Laptop", "quantity": 1, "unitValue": 100, "extendedValue": 100, "netWeightKg": 1.5, "htsCode": "8471.50"},
    {"description": "Monitor", "quantity": 1, "unitValue": 100, "extendedValue": 100, "netWeightKg": 1.5, "htsCode": "8528.52.00"}
  ]
}`

// blockingShipmentJSON has no shipper
const blockingShipmentJSON = `{
  "shipment": {"consignee": {"name": "Globex GmbH"}, "incoterm": "FOB", "destinationCountry": "DE"},
  "lineItems": [{"description": "Laptop", "quantity": 1, "unitValue": 100, "htsCode": "8471.50"}]
}`

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the root command with a fresh config file and flags reset to
// their defaults
func run(t *testing.T, configYAML string, args ...string) result {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	if configYAML == "" {
		configYAML = "log:\n  level: disabled\n"
	}
	cfg := writeFile(t, t.TempDir(), "config.yaml", configYAML)

	resetFlags(rootCmd)
	appConfig = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))

	err := rootCmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func yamlUnmarshal(s string, v any) error {
	return yaml.Unmarshal([]byte(s), v)
}

func TestVersion(t *testing.T) {
	res := run(t, "", "version")
	require.NoError(t, res.err)
	assert.Equal(t, "customsdoc "+Version+"\n", res.stdout)
}

func TestParse_PrintsIndentedDocument(t *testing.T) {
	path := writeFile(t, t.TempDir(), "manifest.csv", manifestCSV)

	res := run(t, "", "parse", path)
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "{\n  \"header\""))

	var doc model.CanonicalDocument
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	assert.Len(t, doc.Lines, 2)
	assert.Equal(t, "FOB", doc.Header.Incoterm)
	assert.Equal(t, 3.0, doc.Checksums.Quantity)
}

func TestParse_OutputFileAndCompact(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "manifest.csv", manifestCSV)
	out := filepath.Join(dir, "out", "doc.json")

	res := run(t, "", "parse", path, "--compact", "-o", out)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
}

func TestParse_FileNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	res := run(t, "", "parse", missing)
	require.Error(t, res.err)
	assert.Equal(t, "File not found: "+missing, res.err.Error())
	assert.Equal(t, ExitFailure, ExitCode(res.err))
	assert.Empty(t, res.stdout)
}

func TestParse_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "invoice.pdf", "%PDF-1.7")

	res := run(t, "", "parse", path)
	require.Error(t, res.err)
	assert.Equal(t, "Unsupported file extension: .pdf. Supported: csv, hocr, htm, html, tsv, txt", res.err.Error())
	assert.Equal(t, ExitFailure, ExitCode(res.err))
}

func TestParse_ParseFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.csv", "partNumber,quantity\nA,1\n")

	res := run(t, "", "parse", path)
	require.Error(t, res.err)
	assert.True(t, strings.HasPrefix(res.err.Error(), "Parse failed: "))
	assert.Equal(t, ExitFailure, ExitCode(res.err))
}

func TestParse_TabDelimiterFromConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "manifest.txt", "# Shipper: Acme\n\npartNumber\tquantity\nA\t5\n")

	res := run(t, "log:\n  level: disabled\ningest:\n  csv_delimiter: tab\n", "parse", path)
	require.NoError(t, res.err)

	var doc model.CanonicalDocument
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, "5", doc.Lines[0].Quantity)
}

func TestValidate_CleanShipment(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shipment.json", validShipmentJSON)

	res := run(t, "", "validate", path, "--strict")
	require.NoError(t, res.err)

	var report model.Report
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	assert.Empty(t, report.Issues)
	assert.False(t, report.Blocking)
	assert.Equal(t, "S1", report.ShipmentID)
	assert.NotEmpty(t, report.RunID)
}

func TestValidate_StrictExitsTwoWhenBlocking(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shipment.json", blockingShipmentJSON)

	res := run(t, "", "validate", path, "--strict")
	require.Error(t, res.err)
	assert.Equal(t, ExitBlocking, ExitCode(res.err))

	var report model.Report
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	assert.True(t, report.Blocking)
	assert.Equal(t, "MISSING_SHIPPER", report.Issues[0].Code)
	assert.Equal(t, "parties", report.Issues[0].Rule)
}

func TestValidate_NotStrictSucceedsWhenBlocking(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shipment.json", blockingShipmentJSON)

	res := run(t, "", "validate", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "MISSING_SHIPPER")
}

func TestValidate_DisableRules(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shipment.json", blockingShipmentJSON)

	res := run(t, "", "validate", path, "--strict", "--disable", "parties,numeric_consistency")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stdout, "MISSING_SHIPPER")
	assert.NotContains(t, res.stdout, `"parties"`)
}

func TestValidate_YAMLInput(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shipment.yaml", `shipment:
  incoterm: XYZ
lineItems: []
`)

	res := run(t, "", "validate", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "VAL-002")
	assert.Contains(t, res.stdout, "NO_LINE_ITEMS")
}

func TestValidate_InputErrors(t *testing.T) {
	dir := t.TempDir()

	res := run(t, "", "validate", filepath.Join(dir, "missing.json"))
	require.Error(t, res.err)
	assert.Equal(t, "File not found: "+filepath.Join(dir, "missing.json"), res.err.Error())

	res = run(t, "", "validate", writeFile(t, dir, "shipment.csv", manifestCSV))
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "Unsupported shipment format")
	assert.Equal(t, ExitFailure, ExitCode(res.err))
}

func TestValidate_EnvSelectsTariffSource(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shipment.json", validShipmentJSON)
	t.Setenv("CUSTOMSDOC_TARIFF_SOURCE", "carrier-pigeon")

	res := run(t, "", "validate", path)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "Tariff registry unavailable")
	assert.Contains(t, res.err.Error(), "carrier-pigeon")
}

func TestValidate_TariffFile(t *testing.T) {
	dir := t.TempDir()
	codes := writeFile(t, dir, "codes.yaml", "codes:\n  - \"8471.50\"\n")
	path := writeFile(t, dir, "shipment.json", validShipmentJSON)

	res := run(t, "", "validate", path, "--tariff-source", "file", "--tariff-path", codes)
	require.NoError(t, res.err)

	var report model.Report
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "HTS_UNKNOWN", report.Issues[0].Code)
	assert.Equal(t, "lines[1].htsCode", report.Issues[0].Path)
	assert.False(t, report.Blocking)
}

func TestRules(t *testing.T) {
	res := run(t, "log:\n  level: disabled\nvalidation:\n  disabled_rules: [eei]\n", "rules")
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "parties"))
	assert.True(t, strings.HasPrefix(lines[4], "hts_reference"))
	assert.Equal(t, []string{"eei", "disabled"}, strings.Fields(lines[6]))
	assert.Equal(t, []string{"dangerous_goods", "enabled"}, strings.Fields(lines[7]))
}

func TestConfigShow_ReflectsFileAndEnv(t *testing.T) {
	t.Setenv("CUSTOMSDOC_CONCURRENCY_RULE_WORKERS", "9")

	res := run(t, "log:\n  level: disabled\ntariff:\n  timeout: 5s\n", "config", "show")
	require.NoError(t, res.err)

	var cfg model.Config
	require.NoError(t, yamlUnmarshal(res.stdout, &cfg))
	assert.Equal(t, "static", cfg.Tariff.Source)
	assert.Equal(t, "5s", cfg.Tariff.Timeout.String())
	assert.Equal(t, 9, cfg.Concurrency.RuleWorkers)
	assert.Equal(t, 4, cfg.Concurrency.BatchWorkers)
	assert.Contains(t, res.stderr, "Configuration file:")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	res := run(t, "", "config", "init", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Created default configuration")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cfg model.Config
	require.NoError(t, yamlUnmarshal(string(data), &cfg))
	assert.Equal(t, *model.DefaultConfig(), cfg)

	res = run(t, "", "config", "init", path)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "already exists")

	res = run(t, "", "config", "init", path, "--force")
	assert.NoError(t, res.err)
}

func TestBatch(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "a.csv", manifestCSV)
	writeFile(t, in, "a.tsv", strings.ReplaceAll(manifestCSV, ",", "\t"))
	writeFile(t, in, "broken.csv", "no separator here\n")
	writeFile(t, in, "ignored.pdf", "%PDF")

	outDir := filepath.Join(t.TempDir(), "out")
	metricsPath := filepath.Join(t.TempDir(), "customsdoc.prom")

	res := run(t, "", "batch", in, "--output-dir", outDir, "--metrics-file", metricsPath, "--concurrency", "2")
	require.Error(t, res.err)
	assert.Equal(t, "1 of 3 documents failed", res.err.Error())
	assert.Equal(t, ExitFailure, ExitCode(res.err))
	assert.Contains(t, res.stderr, "broken.csv")

	for _, name := range []string{"a.json", "a-2.json"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		var doc model.CanonicalDocument
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Len(t, doc.Lines, 2, name)
	}
	_, err := os.Stat(filepath.Join(outDir, "ignored.json"))
	assert.True(t, os.IsNotExist(err))

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `customsdoc_ingest_total{outcome="ok",source="csv"} 1`)
	assert.Contains(t, string(prom), `customsdoc_ingest_total{outcome="ok",source="tsv"} 1`)
	assert.Contains(t, string(prom), `customsdoc_ingest_total{outcome="error",source="csv"} 1`)
}

func TestBatch_ListFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.csv", manifestCSV)
	list := writeFile(t, dir, "files.txt", "# inbox\none.csv\n")
	outDir := filepath.Join(t.TempDir(), "out")

	res := run(t, "", "batch", list, "--output-dir", outDir)
	require.NoError(t, res.err)
	assert.FileExists(t, filepath.Join(outDir, "one.json"))
}

func TestOutputName(t *testing.T) {
	seen := make(map[string]int)
	assert.Equal(t, "invoice.json", outputName("/a/invoice.hocr", seen))
	assert.Equal(t, "invoice-2.json", outputName("/b/invoice.csv", seen))
	assert.Equal(t, ".env.json", outputName("/c/.env", seen))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitBlocking, ExitCode(fail(ExitBlocking, nil, "blocking")))

	wrapped := fail(ExitFailure, os.ErrNotExist, "File not found: x")
	assert.ErrorIs(t, wrapped, os.ErrNotExist)
}
