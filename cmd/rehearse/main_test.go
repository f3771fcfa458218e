package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/rehearse/internal/interview"
)

func TestNewRand_SeedIsRepeatable(t *testing.T) {
	a, b := newRand(7), newRand(7)
	for i := 0; i < 10; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
	}
}

func TestRolesCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"roles", "--questions"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("roles: %v", err)
	}

	text := out.String()
	for _, role := range interview.Roles {
		cfg, _ := interview.Config(role)
		if !strings.Contains(text, string(role)) || !strings.Contains(text, cfg.Title) {
			t.Errorf("output missing %s:\n%s", role, text)
		}
		if !strings.Contains(text, "1. "+cfg.Questions[0]) {
			t.Errorf("output missing first %s question", role)
		}
	}
}
