package cmd

import "testing"

func TestRootCommand_Structure(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd should not be nil")
	}
	if rootCmd.Use != "tasktalk" {
		t.Errorf("Use mismatch: got %q, want %q", rootCmd.Use, "tasktalk")
	}

	for _, flagName := range []string{"config", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(flagName) == nil {
			t.Errorf("expected persistent flag %q to exist", flagName)
		}
	}
}

func TestSubcommands_Registered(t *testing.T) {
	expected := map[string]bool{"chat": false, "serve": false, "version": false}

	for _, c := range rootCmd.Commands() {
		if _, ok := expected[c.Name()]; ok {
			expected[c.Name()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("version should not be empty")
	}
}
