package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const idProgram = `
definitions:
  - name: main
    rules:
      - body:
          type: Use
          name: id
          value: {type: Lam, name: x, body: x}
          next: {type: App, fun: {type: App, fun: id, arg: id}, arg: id}
  - name: start
    rules:
      - body: 1
`

func writeProgram(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "prog.yml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write program: %v", err)
	}
	return path
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersionAndHelp(t *testing.T) {
	if code, out, _ := runCLI("--version"); code != 0 || strings.TrimSpace(out) != cliToolVersion {
		t.Fatalf("--version = (%d, %q)", code, out)
	}
	if code, _, errOut := runCLI("--help"); code != 0 || !strings.Contains(errOut, "lumec check") {
		t.Fatalf("--help = (%d, %q)", code, errOut)
	}
	if code, _, _ := runCLI(); code != 1 {
		t.Fatalf("no args exit = %d, want 1", code)
	}
	if code, _, errOut := runCLI("build"); code != 1 || !strings.Contains(errOut, `unknown command "build"`) {
		t.Fatalf("unknown command = (%d, %q)", code, errOut)
	}
}

func TestCheckResolvesMain(t *testing.T) {
	path := writeProgram(t, t.TempDir(), idProgram)
	code, out, errOut := runCLI("check", path)
	if code != 0 {
		t.Fatalf("check exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != "ok: entry point 'main'" {
		t.Fatalf("stdout = %q", out)
	}
}

func TestDesugarPrintsInlinedBook(t *testing.T) {
	path := writeProgram(t, t.TempDir(), idProgram)
	code, out, errOut := runCLI("desugar", path)
	if code != 0 {
		t.Fatalf("desugar exit %d: %s", code, errOut)
	}
	want := "main = (λx x λx x λx x)\n\nstart = 1\n"
	if out != want {
		t.Fatalf("stdout = %q, want %q", out, want)
	}
}

func TestEntryFlagOverridesManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lume.yml"), []byte("name: demo\nentrypoint: missing\n"), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	path := writeProgram(t, dir, idProgram)

	code, out, errOut := runCLI("check", path)
	if code != 0 || strings.TrimSpace(out) != "ok: entry point 'main'" {
		t.Fatalf("manifest entry = (%d, %q, %q)", code, out, errOut)
	}
	if !strings.Contains(errOut, "warning: entry point 'missing' is not defined; using 'main'") {
		t.Fatalf("expected fallback warning, got %q", errOut)
	}

	code, out, errOut = runCLI("check", path, "--entry", "main")
	if code != 0 {
		t.Fatalf("--entry exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != "ok: entry point 'main'" {
		t.Fatalf("stdout = %q", out)
	}

	code, _, errOut = runCLI("check", path, "--entry=start")
	if code != 1 || !strings.Contains(errOut, "error: File has both 'start' and 'main' definitions") {
		t.Fatalf("--entry=start = (%d, %q)", code, errOut)
	}
}

func TestConfiguredEntryNotFound(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lume.yml"), []byte("name: demo\nentrypoint: missing\nauthors: [Ada]\n"), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	path := writeProgram(t, dir, "definitions:\n  - name: helper\n    rules: [{body: 1}]\n")

	code, out, errOut := runCLI("check", path)
	if code != 1 || out != "" {
		t.Fatalf("check = (%d, %q)", code, out)
	}
	if !strings.Contains(errOut, "compilation failed:\n- error: File has no 'missing' definition") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestCheckReportsShapeErrors(t *testing.T) {
	path := writeProgram(t, t.TempDir(), `
definitions:
  - name: main
    rules:
      - patterns: [x]
        body: x
`)
	code, out, errOut := runCLI("check", path)
	if code != 1 || out != "" {
		t.Fatalf("check = (%d, %q)", code, out)
	}
	if !strings.Contains(errOut, "error: Main definition can't have any arguments") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestInvocationErrors(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"check"}, "requires a program file"},
		{[]string{"check", "a.yml", "b.yml"}, "unexpected arguments: b.yml"},
		{[]string{"check", "a.yml", "--entry"}, "--entry requires a definition name"},
		{[]string{"check", "a.yml", "--fast"}, "unknown flag --fast"},
	}
	for _, tc := range cases {
		code, _, errOut := runCLI(tc.args...)
		if code != 1 || !strings.Contains(errOut, tc.want) {
			t.Fatalf("%v = (%d, %q), want %q", tc.args, code, errOut, tc.want)
		}
	}
}

func TestParseInvocationEntryForms(t *testing.T) {
	inv, err := parseInvocation("check", []string{"--entry=run", "-v", "prog.yml"})
	if err != nil {
		t.Fatalf("parseInvocation: %v", err)
	}
	if inv.entry != "run" || !inv.verbose || inv.file != "prog.yml" {
		t.Fatalf("invocation = %+v", inv)
	}
}

func TestMissingProgramFile(t *testing.T) {
	code, _, errOut := runCLI("check", filepath.Join(t.TempDir(), "nope.yml"))
	if code != 1 || !strings.Contains(errOut, "loader: read") {
		t.Fatalf("missing file = (%d, %q)", code, errOut)
	}
}
