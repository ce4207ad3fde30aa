// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags(t *testing.T) {
	type params struct {
		Caption string        `flag:"caption" desc:"post caption"`
		Yes     bool          `flag:"yes,y" desc:"skip confirmation" default:"false"`
		Limit   int           `flag:"limit" desc:"max posts" default:"20"`
		Wait    time.Duration `flag:"wait" desc:"per-request timeout" default:"30s"`
		Tags    []string      `flag:"tag" desc:"tags"`
		Skipped string        // no flag tag
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	err := flagSet.Parse([]string{
		"--caption", "hello", "-y", "--wait", "5s", "--tag", "a", "--tag", "b",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Caption != "hello" {
		t.Errorf("Caption = %q", p.Caption)
	}
	if !p.Yes {
		t.Error("shorthand -y did not set Yes")
	}
	if p.Limit != 20 {
		t.Errorf("Limit = %d, want default 20", p.Limit)
	}
	if p.Wait != 5*time.Second {
		t.Errorf("Wait = %v", p.Wait)
	}
	if len(p.Tags) != 2 {
		t.Errorf("Tags = %v", p.Tags)
	}
	if flagSet.Lookup("Skipped") != nil || flagSet.Lookup("skipped") != nil {
		t.Error("untagged field got a flag")
	}
}

func TestBindFlagsRejectsNonPointer(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(struct{}{}, flagSet); err == nil {
		t.Fatal("expected error for non-pointer params")
	}
}

type binderParams struct {
	Connection ClientConnection
	Caption    string `flag:"caption" desc:"caption"`
}

func TestBindFlagsFlagBinder(t *testing.T) {
	var p binderParams
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	// ClientConnection's own flags are present alongside the tagged field.
	for _, name := range []string{"server", "config", "session-dir", "timeout", "caption"} {
		if flagSet.Lookup(name) == nil {
			t.Errorf("flag --%s not bound", name)
		}
	}

	if err := flagSet.Parse([]string{"--server", "http://x.test"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Connection.Server != "http://x.test" {
		t.Errorf("Connection.Server = %q", p.Connection.Server)
	}
}

func TestBindFlagsUnsupportedType(t *testing.T) {
	var p struct {
		Bad float32 `flag:"bad"`
	}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err == nil {
		t.Fatal("expected error for unsupported field type")
	}
}
