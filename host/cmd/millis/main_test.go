package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProfilesBuiltin(t *testing.T) {
	boardsFile = ""
	ps, err := loadProfiles()
	if err != nil {
		t.Fatalf("loadProfiles failed: %v", err)
	}
	if _, err := ps.Lookup("mega2560"); err != nil {
		t.Errorf("Expected built-in mega2560 profile: %v", err)
	}
}

func TestLoadProfilesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boards.yaml")
	if err := os.WriteFile(path, []byte("profiles:\n  - name: bench\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	boardsFile = path
	defer func() { boardsFile = "" }()

	ps, err := loadProfiles()
	if err != nil {
		t.Fatalf("loadProfiles failed: %v", err)
	}
	if len(ps) != 1 || ps[0].Name != "bench" {
		t.Errorf("Expected single bench profile, got %v", ps.Names())
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"run", "configs", "probe"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected %s subcommand, got %v (%v)", name, cmd, err)
		}
	}
}
