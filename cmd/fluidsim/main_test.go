package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/fluid"
)

func TestParseCounts(t *testing.T) {
	got, err := parseCounts(" 100, 400,,2000 ")
	if err != nil {
		t.Fatalf("parseCounts: %v", err)
	}
	want := []int{100, 400, 2000}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("count %d = %d, want %d", i, got[i], want[i])
		}
	}

	if _, err := parseCounts("10,x"); err == nil {
		t.Error("expected error for non-numeric count")
	}
	if _, err := parseCounts(" , "); err == nil {
		t.Error("expected error for empty list")
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	addConfigFlags(cmd)
	cmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	return cmd
}

func TestBuildConfigOverrides(t *testing.T) {
	configFile = ""
	cmd := newConfigCmd()
	if err := cmd.ParseFlags([]string{"--preset", "calm", "--particles", "150", "--frames", "20"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	calm := config.GetPreset("calm")
	if cfg.Particles != 150 {
		t.Errorf("particles = %d, want 150", cfg.Particles)
	}
	if cfg.Frames != 20 {
		t.Errorf("frames = %d, want 20", cfg.Frames)
	}
	if cfg.Fluid.Viscosity != calm.Fluid.Viscosity {
		t.Errorf("viscosity = %v, want preset value %v", cfg.Fluid.Viscosity, calm.Fluid.Viscosity)
	}
}

func TestConfigFlagDefaults(t *testing.T) {
	def := fluid.DefaultParams()
	flags := newConfigCmd().Flags()
	for name, want := range map[string]float64{
		"viscosity": def.Viscosity,
		"tension":   def.Tension,
		"gravity":   def.Gravity,
	} {
		got, err := flags.GetFloat64(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != want {
			t.Errorf("--%s default = %v, want %v", name, got, want)
		}
	}
}

func TestBuildConfigRejects(t *testing.T) {
	configFile = ""
	cmd := newConfigCmd()
	if err := cmd.ParseFlags([]string{"--particles=-5"}); err != nil {
		t.Fatal(err)
	}
	if _, err := buildConfig(cmd); !errors.Is(err, config.ErrParticleCount) {
		t.Errorf("expected ErrParticleCount, got %v", err)
	}

	cmd = newConfigCmd()
	if err := cmd.ParseFlags([]string{"--preset", "nope"}); err != nil {
		t.Fatal(err)
	}
	if _, err := buildConfig(cmd); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestListPresetsOutput(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	if err := listPresets(cmd, nil); err != nil {
		t.Fatal(err)
	}
	for _, name := range config.ListPresets() {
		if !bytes.Contains(buf.Bytes(), []byte(name)) {
			t.Errorf("preset %q missing from output", name)
		}
	}
}

func TestRunNameFromConfigFile(t *testing.T) {
	defer func() { configFile = "" }()
	configFile = "/tmp/cfgs/wave.yaml"
	if got := runName(); got != "wave" {
		t.Errorf("runName = %q, want wave", got)
	}
	configFile = ""
	preset = "splash"
	if got := runName(); got != "splash" {
		t.Errorf("runName = %q, want splash", got)
	}
}
