package main

import (
	"testing"
)

func TestFlagsBuildOverrides(t *testing.T) {
	app, flags := newApp()
	_, err := app.Parse([]string{
		"--config", "a.properties",
		"--config", "conf.d",
		"--set", "web.ui.theme=dark",
		"--port", "9000",
		"--rate-limit-rps", "0",
	})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	overrides := flags.overrides()
	if len(overrides.ConfigFiles) != 2 || overrides.ConfigFiles[1] != "conf.d" {
		t.Fatalf("unexpected config files %v", overrides.ConfigFiles)
	}
	if overrides.Set["web.ui.theme"] != "dark" {
		t.Fatalf("expected --set override, got %v", overrides.Set)
	}
	if overrides.Port == nil || *overrides.Port != "9000" {
		t.Fatalf("expected port override")
	}
	if overrides.RateLimitRPS == nil || *overrides.RateLimitRPS != 0 {
		t.Fatalf("expected explicit zero rps override")
	}
	if overrides.RateLimitBurst != nil {
		t.Fatalf("expected burst to stay unset, got %d", *overrides.RateLimitBurst)
	}
}

func TestFlagsDefaultsLeaveOverridesEmpty(t *testing.T) {
	app, flags := newApp()
	if _, err := app.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	overrides := flags.overrides()
	if overrides.Port != nil || overrides.RateLimitRPS != nil || overrides.RateLimitBurst != nil {
		t.Fatalf("expected no typed overrides, got %+v", overrides)
	}
	if len(overrides.ConfigFiles) != 0 {
		t.Fatalf("expected no config files, got %v", overrides.ConfigFiles)
	}
}
