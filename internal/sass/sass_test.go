package sass

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"assetforge/internal/pipeline"
)

// stubCompiler writes a shell script that echoes fixed CSS, standing in for
// the real sass binary.
func stubCompiler(t *testing.T, output string, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub compiler script requires a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-sass")
	script := "#!/bin/sh\n"
	if exitCode == 0 {
		script += "printf '%s' '" + output + "'\n"
	} else {
		script += "echo 'Error: expected \";\".' >&2\nexit " + strconv.Itoa(exitCode) + "\n"
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing stub: %v", err)
	}
	return path
}

func TestCompile_CapturesStdout(t *testing.T) {
	bin := stubCompiler(t, "body{color:red}", 0)
	c := New(bin)

	out, err := c.Compile(context.Background(), "app.scss")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if string(out) != "body{color:red}" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCompile_NonZeroExitFoldsStderr(t *testing.T) {
	bin := stubCompiler(t, "", 65)
	c := New(bin)

	_, err := c.Compile(context.Background(), "broken.scss")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "broken.scss") {
		t.Fatalf("error must name the entrypoint: %v", err)
	}
	if !strings.Contains(err.Error(), "Error:") {
		t.Fatalf("error must carry compiler stderr: %v", err)
	}
}

func TestCheck_MissingBinary(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "no-such-sass"))
	if err := c.Check(); !errors.Is(err, ErrCompilerNotFound) {
		t.Fatalf("expected ErrCompilerNotFound, got %v", err)
	}
}

func TestStage_CompilesSassAndSkipsPartials(t *testing.T) {
	bin := stubCompiler(t, "body{color:red}", 0)
	c := New(bin)

	assets := []*pipeline.Asset{
		{Path: "scss/app.scss", Base: "scss", Contents: []byte("$c: red; body { color: $c; }")},
		{Path: "scss/_mixins.scss", Base: "scss", Contents: []byte("@mixin x {}")},
		{Path: "scss/print.css", Base: "scss", Contents: []byte("@media print {}")},
	}

	got, err := c.Stage().Run(context.Background(), assets)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected compiled entry plus passthrough css, got %d assets", len(got))
	}
	if got[0].Path != "scss/app.css" {
		t.Fatalf("expected compiled asset renamed to .css, got %q", got[0].Path)
	}
	if string(got[0].Contents) != "body{color:red}" {
		t.Fatalf("unexpected compiled contents: %q", got[0].Contents)
	}
	if got[1].Path != "scss/print.css" {
		t.Fatalf("non-sass asset must pass through, got %q", got[1].Path)
	}
}

func TestStage_MissingCompilerFailsUpFront(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "no-such-sass"))
	assets := []*pipeline.Asset{{Path: "app.scss", Contents: nil}}

	_, err := c.Stage().Run(context.Background(), assets)
	if !errors.Is(err, ErrCompilerNotFound) {
		t.Fatalf("expected ErrCompilerNotFound, got %v", err)
	}
}
