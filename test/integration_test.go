// ABOUTME: Integration tests for full workflow
// ABOUTME: Builds the binary and drives area, list, show, export, measure and remove end-to-end

package test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}

	binary := filepath.Join(t.TempDir(), "acreage")
	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/acreage")
	buildCmd.Dir = projectRoot
	buildOutput, err := buildCmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Failed to build: %v\nOutput: %s", err, buildOutput)
	}

	home := t.TempDir()
	env := append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(home, "config"),
		"XDG_DATA_HOME="+filepath.Join(home, "data"),
		"ACREAGE_OWNER=integration",
		"ACREAGE_BACKEND=sqlite",
		"NO_COLOR=1",
	)

	runWithInput := func(input string, args ...string) (string, error) {
		cmd := exec.Command(binary, args...)
		cmd.Env = env
		cmd.Stdin = strings.NewReader(input)
		output, err := cmd.CombinedOutput()
		return string(output), err
	}
	run := func(args ...string) (string, error) {
		return runWithInput("", args...)
	}

	// Measure and save in one shot
	output, err := run("area", "--save", "north field", "0,0", "0,0.001", "0.001,0.001", "0.001,0")
	if err != nil {
		t.Fatalf("Failed to save area: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Saved north field") {
		t.Errorf("Expected success message, got:\n%s", output)
	}

	// Config should have been created on first run
	if _, err := os.Stat(filepath.Join(home, "config", "acreage", "config.json")); err != nil {
		t.Errorf("Expected config file: %v", err)
	}

	// List should show it
	output, err = run("list")
	if err != nil {
		t.Fatalf("Failed to list: %v\n%s", err, output)
	}
	if !strings.Contains(output, "north field") {
		t.Errorf("Expected north field in list:\n%s", output)
	}

	// Show in square meters
	output, err = run("show", "north field", "--area-unit", "m2")
	if err != nil {
		t.Fatalf("Failed to show: %v\n%s", err, output)
	}
	if !strings.Contains(output, "m²") {
		t.Errorf("Expected square meters in detail:\n%s", output)
	}

	// Headless measuring session saves a second area
	script := "add 1 1\nadd 1 1.001\nadd 1.001 1.001\nsave south field\nquit\n"
	output, err = runWithInput(script, "measure", "--headless")
	if err != nil {
		t.Fatalf("Failed to measure: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Saved south field") {
		t.Errorf("Expected save in session output:\n%s", output)
	}

	// Export both as KML
	output, err = run("export", "--format", "kml")
	if err != nil {
		t.Fatalf("Failed to export: %v\n%s", err, output)
	}
	if !strings.Contains(output, "north field") || !strings.Contains(output, "south field") {
		t.Errorf("Expected both areas in KML:\n%s", output)
	}

	// Edit the first area and add a point
	script = "add 0.0005 -0.0005\nsave north field\nquit\n"
	output, err = runWithInput(script, "measure", "--headless", "--edit", "north field")
	if err != nil {
		t.Fatalf("Failed to edit: %v\n%s", err, output)
	}
	output, err = run("show", "north field")
	if err != nil {
		t.Fatalf("Failed to show: %v\n%s", err, output)
	}
	if !strings.Contains(output, "5. ") {
		t.Errorf("Expected five vertices after edit:\n%s", output)
	}

	// Remove
	output, err = run("remove", "--confirm", "south field")
	if err != nil {
		t.Fatalf("Failed to remove: %v\n%s", err, output)
	}
	output, err = run("list")
	if err != nil {
		t.Fatalf("Failed to list: %v\n%s", err, output)
	}
	if strings.Contains(output, "south field") {
		t.Errorf("Expected south field to be gone:\n%s", output)
	}
}

func TestAreaRejectsBadPoint(t *testing.T) {
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}

	binary := filepath.Join(t.TempDir(), "acreage")
	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/acreage")
	buildCmd.Dir = projectRoot
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\nOutput: %s", err, out)
	}

	home := t.TempDir()
	cmd := exec.Command(binary, "area", "95,0", "0,0", "0,1")
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(home, "config"),
		"XDG_DATA_HOME="+filepath.Join(home, "data"),
	)
	output, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("Expected failure for out-of-range latitude, got:\n%s", output)
	}
	if !strings.Contains(string(output), "latitude") {
		t.Errorf("Expected latitude error, got:\n%s", output)
	}
}
