package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cli struct {
	t       *testing.T
	dataDir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return &cli{t: t, dataDir: t.TempDir()}
}

func (c *cli) run(args ...string) (string, string, error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--backend", "sqlite", "--data-dir", c.dataDir}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, errOut, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("%v: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

func TestAddListAcrossRuns(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "--title", "Buy milk", "--description", "2%", "--status", "pending")
	c.mustRun("add", "-t", "Write report", "-d", "Q3", "-s", "in progress")

	out := c.mustRun("list")
	for _, want := range []string{"Buy milk", "Write report", "Pending", "In Progress"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list missing %q:\n%s", want, out)
		}
	}

	out = c.mustRun("list", "--status", "Pending")
	if !strings.Contains(out, "Buy milk") || strings.Contains(out, "Write report") {
		t.Fatalf("filtered list:\n%s", out)
	}

	out = c.mustRun("list", "--status", "Completed")
	if !strings.Contains(out, "No tasks match Completed.") {
		t.Fatalf("empty filtered list:\n%s", out)
	}
}

func TestEditKeepsUnchangedFields(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "-t", "a", "-d", "one", "-s", "pending")
	c.mustRun("add", "-t", "b", "-d", "two", "-s", "pending")
	c.mustRun("edit", "2", "--status", "completed")

	out := c.mustRun("export", "--format", "json")
	var rows []struct {
		Position    int    `json:"position"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode export: %v\n%s", err, out)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	got := rows[1]
	if got.Position != 2 || got.Title != "b" || got.Description != "two" || got.Status != "Completed" {
		t.Fatalf("row = %+v", got)
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "-t", "a", "-d", "x")
	c.mustRun("add", "-t", "b", "-d", "x")
	c.mustRun("add", "-t", "c", "-d", "x")

	c.mustRun("rm", "2")
	out := c.mustRun("export", "-f", "csv")
	if strings.Contains(out, ",b,") || !strings.Contains(out, ",c,") {
		t.Fatalf("csv after rm:\n%s", out)
	}

	c.mustRun("clear")
	if out := c.mustRun("list"); !strings.Contains(out, "No tasks available.") {
		t.Fatalf("list after clear:\n%s", out)
	}
}

func TestUserErrorsExitWithUsageCode(t *testing.T) {
	c := newCLI(t)
	cases := [][]string{
		{"add", "--title", "no description"},
		{"add", "-t", "a", "-d", "x", "-s", "someday"},
		{"rm", "1"},
		{"rm", "zero"},
		{"export", "--format", "xml"},
	}
	for _, args := range cases {
		_, _, err := c.run(args...)
		if err == nil {
			t.Fatalf("%v: expected error", args)
		}
		if code := exitCode(err); code != exitUserError {
			t.Fatalf("%v: exit code = %d, want %d (%v)", args, code, exitUserError, err)
		}
	}
}

func TestExportPDFToFile(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "-t", "a", "-d", "x", "-s", "done")
	path := filepath.Join(t.TempDir(), "out", "tasks.pdf")
	c.mustRun("export", "-f", "pdf", "-o", path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", data[:min(len(data), 16)])
	}
}

func TestConfigInit(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	c.mustRun("config", "init", path)
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.run("config", "init", path); err == nil {
		t.Fatal("second init should refuse to overwrite")
	}

	// 配置文件可以被读回
	if _, errOut, err := c.run("--config", path, "list"); err != nil {
		t.Fatalf("list with written config: %v\n%s", err, errOut)
	}
}
