//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "delimit"

var Default = Build

// Build compiles the delimit binary
func Build() error {
	return sh.RunV("go", "build", "-o", binary, "./cmd/delimit")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Install builds and copies the binary to ~/go/bin
func Install() error {
	mg.Deps(Build)

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dst := filepath.Join(home, "go", "bin")
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	return sh.Copy(filepath.Join(dst, binary), binary)
}

// Clean removes the built binary
func Clean() error {
	return sh.Rm(binary)
}
