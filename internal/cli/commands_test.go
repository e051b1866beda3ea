package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/heightwalk/pkg/errors"
)

// execute runs the root command with args and returns what it wrote to its
// output stream.
func execute(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	root := New(io.Discard, LogDebug).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(bytes.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHelloCommand(t *testing.T) {
	out, err := execute(t, nil, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if out != "42\n" {
		t.Errorf("hello output = %q, want %q", out, "42\n")
	}
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "out", "map")

	args := []string{"generate", "--size", "8", "--max-long-age", "3", "--max-generations", "1",
		"--seed", "5", "--radius", "0", "-f", "raw,json,mask", "-o", base + ".png"}
	if _, err := execute(t, nil, args...); err != nil {
		t.Fatalf("generate error = %v", err)
	}

	raw, err := os.ReadFile(base + ".raw")
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if len(raw) != 64 {
		t.Errorf("raw len = %d, want 64", len(raw))
	}
	for _, name := range []string{base + ".json", base + ".mask.png"} {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	// Same seed, same bytes.
	again, err := execute(t, nil, append(args[:len(args)-4], "-f", "raw", "-o", "-")...)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal([]byte(again), raw) {
		t.Error("generate is not deterministic for a fixed seed")
	}
}

func TestGenerateCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"stdout with two formats", []string{"generate", "--size", "4", "-f", "raw,png", "-o", "-"}},
		{"bad format", []string{"generate", "--size", "4", "-f", "gif", "-o", "-"}},
		{"bad paint", []string{"generate", "--size", "4", "--paint", "spray", "-o", "-"}},
		{"unknown preset", []string{"generate", "--preset", "lumpy"}},
		{"negative radius", []string{"generate", "--size", "4", "--radius", "-2", "-f", "raw", "-o", "-"}},
		{"walker budget", []string{"generate", "--size", "64", "--children", "1000", "--max-generations", "1000", "-f", "raw", "-o", "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, nil, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestOutputPathValidation(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		in   []byte
		args []string
	}{
		{"generate into directory", nil, []string{"generate", "--size", "4", "-f", "raw", "-o", dir + "/"}},
		{"generate control char", nil, []string{"generate", "--size", "4", "-f", "raw", "-o", filepath.Join(dir, "map\x01")}},
		{"image into directory", []byte{0, 7}, []string{"image", "-", "-o", filepath.Join(dir, "..")}},
		{"blur into directory", []byte{0, 7, 9, 1}, []string{"blur", "-", "-r", "1", "-o", dir + "/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.in, tt.args...)
			if !errors.Is(err, errors.ErrCodeInvalidPath) {
				t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidPath)
			}
		})
	}
}

func TestImageCommand(t *testing.T) {
	out, err := execute(t, []byte{0, 7}, "image", "-", "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 0, 0, 255, 255, 255, 255}
	if !bytes.Equal([]byte(out), want) {
		t.Errorf("image output = %v, want %v", []byte(out), want)
	}
}

func TestImageCommandDerivedPath(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "map.raw")
	if err := os.WriteFile(in, make([]byte, 16), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, nil, "image", "--png", in); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "map.mask.png")); err != nil {
		t.Errorf("derived output missing: %v", err)
	}
}

func TestBlurCommand(t *testing.T) {
	in := bytes.Repeat([]byte{100}, 16)

	out, err := execute(t, in, "blur", "-", "-r", "2", "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal([]byte(out), in) {
		t.Errorf("blur of a constant field = %v", []byte(out))
	}

	out, err = execute(t, in, "blur", "-", "-r", "2", "--detail-max", "20", "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []byte(out) {
		if v != 120 {
			t.Fatalf("detail blur = %v", []byte(out))
		}
	}

	limits := []struct {
		args []string
		code errors.Code
	}{
		{[]string{"blur", "-", "-r", "50000000", "-o", "-"}, errors.ErrCodeInvalidRadius},
		{[]string{"blur", "-", "--detail-max", "300", "-o", "-"}, errors.ErrCodeInvalidParams},
	}
	for _, tt := range limits {
		if _, err := execute(t, in, tt.args...); !errors.Is(err, tt.code) {
			t.Errorf("%v: error = %v, want %s", tt.args, err, tt.code)
		}
	}

	if _, err := execute(t, in, "blur", "-", "--width", "3", "-o", "-"); err == nil {
		t.Error("expected error for a width that does not divide the input")
	}
	if _, err := execute(t, nil, "blur", filepath.Join(t.TempDir(), "missing.raw")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestPresetCommands(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, err := execute(t, nil, "preset", "show", "sparse")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[simulation]") || !strings.Contains(out, `name = "sparse"`) {
		t.Errorf("preset show output:\n%s", out)
	}

	if _, err := execute(t, nil, "preset", "init", "mine", "--from", "dense"); err != nil {
		t.Fatalf("preset init error = %v", err)
	}
	if _, err := execute(t, nil, "preset", "init", "mine"); err == nil {
		t.Error("init over an existing preset should fail without --force")
	}
	if _, err := execute(t, nil, "preset", "init", "mine", "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}

	out, err = execute(t, nil, "preset", "show", "mine")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `name = "mine"`) {
		t.Errorf("user preset show output:\n%s", out)
	}

	if _, err := execute(t, nil, "preset", "list"); err != nil {
		t.Errorf("preset list error = %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := execute(t, nil, "completion", shell)
		if err != nil {
			t.Errorf("completion %s error = %v", shell, err)
		}
		if !strings.Contains(out, "heightwalk") {
			t.Errorf("completion %s output does not mention heightwalk", shell)
		}
	}
	if _, err := execute(t, nil, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"map", "map"},
		{"map.png", "map"},
		{"map.mask.png", "map"},
		{"dir/map.tiff", "dir/map"},
		{"map.v2", "map.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.in); got != tt.want {
			t.Errorf("basePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDerivedPath(t *testing.T) {
	if got := derivedPath("a/map.raw", "blur", "raw"); got != "a/map.blur.raw" {
		t.Errorf("derivedPath() = %q", got)
	}
	if got := derivedPath("-", "mask", "rgba"); got != "-" {
		t.Errorf("derivedPath(stdin) = %q", got)
	}
}
