//go:build integration

package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var binaryPath string

// TestMain builds the binary before running tests
func TestMain(m *testing.M) {
	binaryPath = filepath.Join(os.TempDir(), "metro-test")
	build := exec.Command("go", "build", "-o", binaryPath, ".")
	if err := build.Run(); err != nil {
		os.Exit(1)
	}

	code := m.Run()

	_ = os.Remove(binaryPath)
	os.Exit(code)
}

// runCommand runs the binary with a clean environment so a developer's
// config file or API key never leaks into the result
func runCommand(t *testing.T, env []string, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append([]string{
		"HOME=" + t.TempDir(),
		"XDG_CONFIG_HOME=" + t.TempDir(),
		"PATH=" + os.Getenv("PATH"),
	}, env...)

	stdout, err := cmd.Output()
	stderr := ""
	exitCode := 0

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			stderr = string(exitErr.Stderr)
		}
	}

	return string(stdout), stderr, exitCode
}

func TestCLI_Version(t *testing.T) {
	stdout, _, exitCode := runCommand(t, nil, "--version")

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stdout, "metro version") {
		t.Errorf("Expected version output, got: %s", stdout)
	}
}

func TestCLI_Help(t *testing.T) {
	stdout, _, exitCode := runCommand(t, nil, "--help")

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stdout, "metro shows the next Washington Metro trains") {
		t.Errorf("Expected help text, got: %s", stdout)
	}

	for _, cmd := range []string{"arrivals", "stations", "run", "serve", "tui", "config"} {
		if !strings.Contains(stdout, cmd) {
			t.Errorf("Expected command '%s' in help output", cmd)
		}
	}
}

func TestCLI_ArrivalsCommand_Help(t *testing.T) {
	stdout, _, exitCode := runCommand(t, nil, "arrivals", "--help")

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stdout, "Show the next trains") {
		t.Errorf("Expected arrivals help text, got: %s", stdout)
	}
}

func TestCLI_ArrivalsCommand_MissingKey(t *testing.T) {
	_, stderr, exitCode := runCommand(t, nil, "arrivals", "--no-cache")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code without an API key")
	}
	if !strings.Contains(stderr, "WMATA_API_KEY") {
		t.Errorf("Expected API key hint, got: %s", stderr)
	}
}

func TestCLI_ArrivalsCommand_JSONOutput(t *testing.T) {
	key := os.Getenv("WMATA_API_KEY")
	if testing.Short() || key == "" {
		t.Skip("Skipping API call without WMATA_API_KEY")
	}

	stdout, stderr, exitCode := runCommand(t, []string{"WMATA_API_KEY=" + key},
		"arrivals", "--json", "--no-cache", "--station", "metro center")

	if exitCode != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", exitCode, stderr)
	}

	var board struct {
		Rows []map[string]any `json:"rows"`
		Real int              `json:"real"`
	}
	if err := json.Unmarshal([]byte(stdout), &board); err != nil {
		t.Fatalf("Expected valid JSON board, got error: %v", err)
	}
	if len(board.Rows) < 3 {
		t.Errorf("Expected at least 3 rows, got %d", len(board.Rows))
	}
}

func TestCLI_StationsCommand(t *testing.T) {
	stdout, _, exitCode := runCommand(t, nil, "stations", "--color", "never")

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}
	for _, want := range []string{"Code", "A01", "Metro Center", "B01", "Gallery Place"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected %q in station list", want)
		}
	}
	if strings.Contains(stdout, "\033[") {
		t.Error("Expected no ANSI codes with --color never")
	}
}

func TestCLI_StationsCommand_FilterJSON(t *testing.T) {
	stdout, _, exitCode := runCommand(t, nil, "stations", "gallery", "--json")

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}

	var stations []struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(stdout), &stations); err != nil {
		t.Fatalf("Expected valid JSON array, got error: %v", err)
	}
	if len(stations) != 1 || stations[0].Code != "B01" {
		t.Errorf("Expected only Gallery Place, got %+v", stations)
	}
}

func TestCLI_ConfigShow_MasksKey(t *testing.T) {
	stdout, _, exitCode := runCommand(t, []string{"WMATA_API_KEY=super-secret"}, "config", "show")

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}
	if strings.Contains(stdout, "super-secret") {
		t.Error("API key leaked in config show")
	}
	if !strings.Contains(stdout, `"***"`) {
		t.Errorf("Expected masked key, got: %s", stdout)
	}
}

func TestCLI_ConfigValidate(t *testing.T) {
	_, stderr, exitCode := runCommand(t, []string{"METRO_REFRESH_INTERVAL=5"}, "config", "validate", "--color", "never")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for an invalid config")
	}
	for _, field := range []string{"wmata_api_key", "refresh_interval"} {
		if !strings.Contains(stderr, field) {
			t.Errorf("Expected %q in validation output, got: %s", field, stderr)
		}
	}

	stdout, _, exitCode := runCommand(t, []string{"WMATA_API_KEY=k"}, "config", "validate")
	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stdout, "configuration OK") {
		t.Errorf("Expected OK output, got: %s", stdout)
	}
}

func TestCLI_ExplicitConfigMustExist(t *testing.T) {
	_, _, exitCode := runCommand(t, nil, "config", "show", "--config", "/nonexistent/metro.yaml")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for a missing explicit config")
	}
}

func TestCLI_RunCommand_UnknownSink(t *testing.T) {
	_, stderr, exitCode := runCommand(t, []string{"WMATA_API_KEY=k"}, "run", "--sink", "hologram", "--no-cache")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for an unknown sink")
	}
	if !strings.Contains(stderr, "display.sink") {
		t.Errorf("Expected sink error, got: %s", stderr)
	}
}

func TestCLI_InvalidCommand(t *testing.T) {
	_, _, exitCode := runCommand(t, nil, "invalidcommand")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for invalid command")
	}
}
