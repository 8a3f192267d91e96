package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApply_OnlyChangedFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--tools", "30", "--hyde", "no"}); err != nil {
		t.Fatal(err)
	}

	var f runFlags
	f.tools, f.hyde = 30, "no"

	path := writeConfig(t, "experiment:\n  queries: 12\n  hyde: false\n  top_k: 3\n")
	f.configPath = path
	cfg, err := f.loadConfig("local")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	f.apply(cmd, &cfg)

	if cfg.Experiment.Tools != 30 {
		t.Errorf("Tools = %d, want flag value 30", cfg.Experiment.Tools)
	}
	if cfg.Experiment.Queries != 12 {
		t.Errorf("Queries = %d, want config value 12", cfg.Experiment.Queries)
	}
	if cfg.Experiment.TopK != 3 {
		t.Errorf("TopK = %d, want config value 3", cfg.Experiment.TopK)
	}
	// Anything but the literal "false" turns HyDE on.
	if !*cfg.Experiment.HyDE {
		t.Error("expected --hyde no to enable HyDE")
	}
}

func TestExperimentConfig_ZeroToolsFromFlag(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--tools", "0", "--seed", "9"}); err != nil {
		t.Fatal(err)
	}
	f := runFlags{tools: 0, seed: 9, configPath: writeConfig(t, "{}\n")}

	cfg, err := f.loadConfig("local")
	if err != nil {
		t.Fatal(err)
	}
	f.apply(cmd, &cfg)

	exp, err := experimentConfig(cfg)
	if err != nil {
		t.Fatalf("experimentConfig: %v", err)
	}
	if exp.ToolCount() != 0 || exp.Seed() != 9 {
		t.Errorf("ToolCount=%d Seed=%d", exp.ToolCount(), exp.Seed())
	}
}

func TestExperimentConfig_RejectsBadTopK(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--top-k", "0"}); err != nil {
		t.Fatal(err)
	}
	f := runFlags{topK: 0, configPath: writeConfig(t, "{}\n")}

	cfg, err := f.loadConfig("local")
	if err != nil {
		t.Fatal(err)
	}
	f.apply(cmd, &cfg)

	if _, err := experimentConfig(cfg); err == nil {
		t.Fatal("expected error for --top-k 0")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	f := runFlags{configPath: filepath.Join(t.TempDir(), "nope.yaml")}
	if _, err := f.loadConfig("local"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestRootCmd_Version(t *testing.T) {
	if newRootCmd().Version == "" {
		t.Error("expected version string")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toolsel.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
