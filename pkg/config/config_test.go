package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/heightwalk/pkg/errors"
	"github.com/matzehuels/heightwalk/pkg/pipeline"
	"github.com/matzehuels/heightwalk/pkg/walk"
)

func TestBuiltinsValidate(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			p, err := Resolve(name)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", name, err)
			}
			if p.Name != name {
				t.Errorf("Name = %q, want %q", p.Name, name)
			}
			if err := p.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestDefaultPreset(t *testing.T) {
	p := Default()
	if p.Simulation.Size != 512 {
		t.Errorf("Size = %d, want 512", p.Simulation.Size)
	}
	if p.Blur.Radius != 8 {
		t.Errorf("Radius = %d, want 8", p.Blur.Radius)
	}
	if p.Blur.DetailMax == nil || *p.Blur.DetailMax != 64 {
		t.Errorf("DetailMax = %v, want 64", p.Blur.DetailMax)
	}
	if p.Simulation.ShortBranchFrequency != 20 {
		t.Errorf("ShortBranchFrequency = %d, want 20", p.Simulation.ShortBranchFrequency)
	}
}

func TestPresetOptions(t *testing.T) {
	p := Default()
	opts := p.Options()

	if opts.Size != p.Simulation.Size || opts.MaxLongAge != p.Simulation.MaxLongAge {
		t.Errorf("Options() = %+v", opts)
	}
	if opts.Seed != nil {
		t.Error("preset options should not fix the seed")
	}
	if !opts.Blurs() {
		t.Error("default preset should blur")
	}

	// The options must not alias the preset.
	*opts.DetailMax = 1
	opts.Formats[0] = "raw"
	if *p.Blur.DetailMax != 64 || p.Output.Formats[0] != "png" {
		t.Error("Options() aliases preset fields")
	}
}

func TestDecode(t *testing.T) {
	data := []byte(`
name = "ridges"

[simulation]
size = 64
max_long_age = 40
paint = "generation"
initial_walkers = "cardinals"

[blur]
radius = 3
saturate = true

[output]
formats = ["png", "json"]
`)
	p, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if p.Name != "ridges" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.Simulation.Size != 64 || p.Simulation.MaxLongAge != 40 {
		t.Errorf("Simulation = %+v", p.Simulation)
	}
	if p.Simulation.Paint != walk.PaintGeneration {
		t.Errorf("Paint = %v", p.Simulation.Paint)
	}
	if p.Simulation.InitialWalkers != walk.Cardinals {
		t.Errorf("InitialWalkers = %v", p.Simulation.InitialWalkers)
	}
	// Unset keys keep defaults.
	if p.Simulation.Children != pipeline.DefaultChildren {
		t.Errorf("Children = %d, want default %d", p.Simulation.Children, pipeline.DefaultChildren)
	}
	if p.Blur.Radius != 3 || !p.Blur.Saturate {
		t.Errorf("Blur = %+v", p.Blur)
	}
	if !slices.Equal(p.Output.Formats, []string{"png", "json"}) {
		t.Errorf("Formats = %v", p.Output.Formats)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `name = `},
		{"unknown key", "[simulation]\nwalkers = 3\n"},
		{"unknown paint", "[simulation]\npaint = \"spray\"\n"},
		{"negative radius", "[blur]\nradius = -1\n"},
		{"bad format", "[output]\nformats = [\"gif\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}
}

func TestDecodeUnnamed(t *testing.T) {
	p, err := Decode([]byte("[blur]\nradius = 2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "custom" {
		t.Errorf("Name = %q, want custom", p.Name)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	p, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode(Encode()) error = %v\n%s", err, buf.String())
	}
	if p.Name != PresetDefault || p.Simulation != Default().Simulation {
		t.Errorf("round trip = %+v", p)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.toml")
	if err := os.WriteFile(path, []byte("name = \"mine\"\n[simulation]\nsize = 32\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve(file) error = %v", err)
	}
	if p.Name != "mine" || p.Simulation.Size != 32 {
		t.Errorf("Resolve(file) = %+v", p)
	}

	if _, err := Resolve("lumpy"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Resolve(unknown) error = %v, want NOT_FOUND", err)
	}
	if _, err := Resolve(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Resolve(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}
