//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, integration, race, fuzz).
type Test mg.Namespace

// fuzzTargets lists the fuzz tests of the query string codec. go test
// fuzzes one target per run.
var fuzzTargets = []string{"FuzzDecodeValue", "FuzzDecodeState"}

const (
	fuzzPackage     = "./internal/urlcodec"
	defaultFuzzTime = "30s"
)

// All runs all tests (unit and integration).
func (Test) All() error {
	mg.Deps(Build)
	return sh.RunV(binGo, "test", "./...")
}

// Unit runs only unit tests, excluding the tests/ directory.
func (Test) Unit() error {
	pkgs, err := unitPackages()
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	return sh.RunV(binGo, append([]string{"test"}, pkgs...)...)
}

// Race runs the unit tests with the race detector.
func (Test) Race() error {
	pkgs, err := unitPackages()
	if err != nil {
		return err
	}
	return sh.RunV(binGo, append([]string{"test", "-race"}, pkgs...)...)
}

// Integration builds first, then runs only integration tests.
func (Test) Integration() error {
	if _, err := os.Stat("tests"); os.IsNotExist(err) {
		fmt.Println("No integration test directory found (tests/).")
		return nil
	}
	mg.Deps(Build)
	return sh.RunV(binGo, "test", "-v", "./tests/...")
}

// Fuzz runs each query codec fuzz target in turn. FUZZTIME overrides the
// per-target duration.
func (Test) Fuzz() error {
	fuzzTime := os.Getenv("FUZZTIME")
	if fuzzTime == "" {
		fuzzTime = defaultFuzzTime
	}
	for _, target := range fuzzTargets {
		fmt.Printf("Fuzzing %s for %s\n", target, fuzzTime)
		err := sh.RunV(binGo, "test", "-run", "^$", "-fuzz", "^"+target+"$", "-fuzztime", fuzzTime, fuzzPackage)
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
	}
	return nil
}

func unitPackages() ([]string, error) {
	out, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return nil, err
	}
	var pkgs []string
	for pkg := range strings.SplitSeq(out, "\n") {
		if pkg != "" && !strings.Contains(pkg, "/tests/") && !strings.HasSuffix(pkg, "/tests") {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs, nil
}
