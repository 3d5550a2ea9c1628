//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides the mage build targets for grid.
//
// Usage:
//
//	mage build             Compile the grid binary to bin/
//	mage test:all          Run unit and integration tests
//	mage test:unit         Run unit tests only
//	mage test:integration  Build, then run tests/integration
//	mage test:race         Run unit tests with the race detector
//	mage test:fuzz         Fuzz the query string codec (FUZZTIME per target)
//	mage smoke             Build, then round-trip a query through the CLI
//	mage vet               Run go vet
//	mage lint              Run golangci-lint
//	mage clean             Remove build artifacts
//	mage install           Install grid to GOPATH/bin
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "grid"
	binaryDir  = "bin"
	cmdDir     = "./cmd/grid"
)

// Build compiles the grid binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// smokeArgs encode a query with one filter of each URL shape the CLI
// writes, plus a sort and a page size.
var smokeArgs = []string{
	"encode",
	"--set", "region=us-east",
	"--preset", "created=7d",
	"--range", "updated=2026-01-01..2026-02-01",
	"--sort", "name:asc",
	"--size", "25",
}

// Smoke builds grid, encodes a query and checks that decode reads back the
// same filters, sort and page size.
func Smoke() error {
	mg.Deps(Build)
	bin := filepath.Join(binaryDir, binaryName)

	query, err := sh.Output(bin, smokeArgs...)
	if err != nil {
		return err
	}
	out, err := sh.Output(bin, "--json", "decode", query)
	if err != nil {
		return err
	}
	var decoded struct {
		Filters []struct {
			Column string `json:"column"`
			Kind   string `json:"kind"`
		} `json:"filters"`
		Sort     string   `json:"sort"`
		PageSize int      `json:"page_size"`
		Dropped  []string `json:"dropped"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		return fmt.Errorf("decode output: %w", err)
	}

	kinds := map[string]string{}
	for _, f := range decoded.Filters {
		kinds[f.Column] = f.Kind
	}
	want := map[string]string{"region": "set", "created": "preset", "updated": "range"}
	for col, kind := range want {
		if kinds[col] != kind {
			return fmt.Errorf("smoke: %s decoded as %q, want %q (query %s)", col, kinds[col], kind, query)
		}
	}
	if decoded.Sort != "name:asc" || decoded.PageSize != 25 || len(decoded.Dropped) > 0 {
		return fmt.Errorf("smoke: unexpected decode of %s: %s", query, out)
	}
	fmt.Println("smoke ok:", query)
	return nil
}
