package main

import (
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "pageocr [flags] <input>" {
			t.Errorf("unexpected use %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has global flags", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			shorthand string
			def       string
		}{
			{"verbose", "v", "false"},
			{"config", "c", ""},
			{"log-format", "", "text"},
		}
		for _, tt := range tests {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand || flag.DefValue != tt.def {
				t.Errorf("%s: shorthand %q default %q, want %q %q",
					tt.name, flag.Shorthand, flag.DefValue, tt.shorthand, tt.def)
			}
		}
	})

	t.Run("has conversion flags", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			shorthand string
			def       string
		}{
			{"force", "f", "false"},
			{"png", "p", "false"},
			{"json", "j", "false"},
			{"text", "t", "false"},
			{"ratio", "r", "2"},
			{"locales", "l", "[]"},
			{"start", "s", "0"},
			{"end", "e", "0"},
			{"out", "o", "out"},
			{"engine", "", "tesseract"},
			{"pretty", "", "false"},
			{"no-history", "", "false"},
		}
		for _, tt := range tests {
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand || flag.DefValue != tt.def {
				t.Errorf("%s: shorthand %q default %q, want %q %q",
					tt.name, flag.Shorthand, flag.DefValue, tt.shorthand, tt.def)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		want := map[string]bool{"history": false, "init": false, "version": false}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})
}

// TestRootCmdRequiresInput tests positional argument validation.
func TestRootCmdRequiresInput(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{}, {"a.pdf", "b.pdf"}} {
		cmd := NewRootCmd()
		cmd.SetArgs(args)
		if err := cmd.Execute(); err == nil {
			t.Errorf("args %v: expected error", args)
		}
	}
}
