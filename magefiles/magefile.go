//go:build mage

// Package main provides build targets for the vellum project using Mage.
//
// Usage:
//
//	mage build      Compile the vellum binary to bin/
//	mage test       Run all tests
//	mage testRace   Run all tests with the race detector
//	mage testPostgres Run the backend suite against VELLUM_TEST_POSTGRES_DSN
//	mage cover      Run all tests and write coverage.out
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install vellum to GOPATH/bin
//	mage serve      Build and run the HTTP API with the default config
package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo        = "go"
	binaryName   = "vellum"
	binaryDir    = "bin"
	cmdDir       = "./cmd/vellum"
	coverProfile = "coverage.out"
)

// Build compiles the vellum binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestRace runs all tests with the race detector.
func TestRace() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// TestPostgres runs the store backend suite against the Postgres server
// named by VELLUM_TEST_POSTGRES_DSN.
func TestPostgres() error {
	if os.Getenv("VELLUM_TEST_POSTGRES_DSN") == "" {
		return errors.New("VELLUM_TEST_POSTGRES_DSN must be set")
	}
	return sh.RunV(binGo, "test", "-count=1", "-run", "TestBackend_Postgres", "./internal/store/")
}

// Cover runs all tests and prints per-function coverage.
func Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverProfile)
}

// Lint runs go vet and golangci-lint.
func Lint() error {
	if err := sh.RunV(binGo, "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := os.Remove(coverProfile); err != nil && !os.IsNotExist(err) {
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

// Serve builds and runs the HTTP API.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "serve")
}
