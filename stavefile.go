//go:build stave

package main

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

const (
	binaryName  = "treewrite"
	mainPackage = "./cmd/treewrite"
	coverFile   = "coverage.out"
)

var (
	// Default target compiles the binary.
	Default = Build

	Aliases = map[string]any{
		"b":  Build,
		"t":  Test.All,
		"g":  Test.Golden,
		"l":  Lint.All,
		"fz": Fuzz.All,
		"ci": CI.Gate,
	}

	// binaryPath is where Build leaves the executable.
	binaryPath = filepath.Join("bin", binaryName)

	// sources are the inputs whose changes trigger a rebuild.
	sources = []string{"cmd/", "internal/", "pkg/", "go.mod", "go.sum"}

	// fuzzTargets maps each fuzz function to the package declaring it.
	fuzzTargets = []struct{ pkg, fn string }{
		{"./pkg/rewrite", "FuzzComputeEdits"},
		{"./pkg/fsutil", "FuzzWriteAtomic"},
	}

	// releasePlatforms are the GOOS/GOARCH pairs CI.Cross builds.
	releasePlatforms = []string{
		"linux/amd64", "linux/arm64",
		"darwin/amd64", "darwin/arm64",
		"windows/amd64",
		"freebsd/amd64",
	}
)

type (
	Test st.Namespace
	Lint st.Namespace
	Fuzz st.Namespace
	CI   st.Namespace
)

// Build compiles bin/treewrite when any source is newer than it.
func Build() error {
	stale, err := target.Dir(binaryPath, sources...)
	if err != nil {
		return err
	}
	if !stale {
		fmt.Printf("%s is up to date\n", binaryPath)
		return nil
	}
	fmt.Printf("Building %s...\n", binaryPath)
	return sh.RunV("go", "build", "-trimpath", "-ldflags", versionFlags(), "-o", binaryPath, mainPackage)
}

// Install puts treewrite in $GOBIN.
func Install() error {
	fmt.Printf("Installing %s...\n", binaryName)
	return sh.RunV("go", "install", "-trimpath", "-ldflags", versionFlags(), mainPackage)
}

// Smoke builds the binary and runs its version command.
func Smoke() error {
	st.Deps(Build)
	out, err := sh.Output(binaryPath, "version")
	if err != nil {
		return fmt.Errorf("run %s version: %w", binaryPath, err)
	}
	fmt.Println(out)
	return nil
}

// Clean removes bin/ and coverage output.
func Clean() error {
	for _, path := range []string{"bin", coverFile, "coverage.html"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// All runs every package's tests with the race detector and writes coverage.out.
func (Test) All() error {
	return goTest("-race", "-coverprofile="+coverFile, "-covermode=atomic", "./...")
}

// Short runs the core packages in -short mode.
func (Test) Short() error {
	return goTest("-short", "./pkg/rewrite/...", "./pkg/script/...", "./pkg/edit/...")
}

// Golden rewrites the output section of every script golden archive.
func (Test) Golden() error {
	fmt.Println("Updating script golden files...")
	return sh.RunV("go", "test", "./pkg/script/", "-run", "^TestGolden$", "-update")
}

// Cover renders coverage.out as HTML after a full test run.
func (Test) Cover() error {
	st.Deps(Test.All)
	return sh.RunV("go", "tool", "cover", "-html="+coverFile, "-o", "coverage.html")
}

// All formats, vets and lints the tree.
func (Lint) All() {
	st.SerialDeps(Lint.Fmt, Lint.Vet, Lint.Golangci)
}

// Fmt rewrites unformatted files in place.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-s", "-w", "cmd", "internal", "pkg")
}

// Vet runs go vet on every package.
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Golangci runs golangci-lint; set LINT_FIX=1 to let it fix findings.
func (Lint) Golangci() error {
	args := []string{"run"}
	if os.Getenv("LINT_FIX") == "1" {
		args = append(args, "--fix")
	}
	return sh.RunV("golangci-lint", append(args, "./...")...)
}

// All runs each fuzz target for FUZZ_TIME (default 30s).
func (Fuzz) All() error {
	for _, ft := range fuzzTargets {
		if err := runFuzz(ft.pkg, ft.fn); err != nil {
			return err
		}
	}
	return nil
}

// Engine fuzzes edit computation only.
func (Fuzz) Engine() error {
	return runFuzz(fuzzTargets[0].pkg, fuzzTargets[0].fn)
}

// Gate fails on unformatted code, vet or lint findings, failing tests,
// an untidy go.mod or a platform that does not build.
func (CI) Gate() {
	st.SerialDeps(CI.Formatted, Lint.Vet, Lint.Golangci, Test.All, CI.Tidy, CI.Cross)
	fmt.Println("CI gate passed")
}

// Formatted lists files gofmt would change and fails if there are any.
func (CI) Formatted() error {
	out, err := sh.Output("gofmt", "-s", "-l", "cmd", "internal", "pkg")
	if err != nil {
		return err
	}
	if out = strings.TrimSpace(out); out != "" {
		return fmt.Errorf("gofmt would change:\n%s", out)
	}
	return nil
}

// Tidy fails when go mod tidy would modify go.mod or go.sum.
func (CI) Tidy() error {
	before, err := readModFiles()
	if err != nil {
		return err
	}
	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}
	after, err := readModFiles()
	if err != nil {
		return err
	}
	if !bytes.Equal(before, after) {
		return errors.New("go mod tidy changed go.mod or go.sum")
	}
	return nil
}

// Cross builds the binary for every release platform without cgo.
func (CI) Cross() error {
	for _, platform := range releasePlatforms {
		goos, goarch, _ := strings.Cut(platform, "/")
		env := map[string]string{"GOOS": goos, "GOARCH": goarch, "CGO_ENABLED": "0"}
		if err := sh.RunWith(env, "go", "build", "-o", os.DevNull, mainPackage); err != nil {
			return fmt.Errorf("build %s: %w", platform, err)
		}
		fmt.Printf("  %s ok\n", platform)
	}
	return nil
}

func goTest(args ...string) error {
	procs := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), fmt.Sprint(runtime.NumCPU()))
	return sh.RunV("go", append([]string{"test", "-p", procs}, args...)...)
}

func runFuzz(pkg, fn string) error {
	fuzzTime := cmp.Or(os.Getenv("FUZZ_TIME"), "30s")
	fmt.Printf("Fuzzing %s in %s for %s...\n", fn, pkg, fuzzTime)
	if err := sh.RunV("go", "test", "-run=^$", "-fuzz=^"+fn+"$", "-fuzztime="+fuzzTime, pkg); err != nil {
		return fmt.Errorf("fuzz %s: %w", fn, err)
	}
	return nil
}

func readModFiles() ([]byte, error) {
	var buf bytes.Buffer
	for _, name := range []string{"go.mod", "go.sum"} {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// versionFlags injects the build metadata printed by treewrite version.
func versionFlags() string {
	describe := func(args ...string) string {
		out, err := sh.Output("git", args...)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(out)
	}
	return fmt.Sprintf("-s -w -X main.version=%s -X main.commit=%s -X main.date=%s",
		cmp.Or(describe("describe", "--tags", "--always", "--dirty"), "dev"),
		cmp.Or(describe("rev-parse", "--short", "HEAD"), "none"),
		time.Now().UTC().Format(time.RFC3339),
	)
}
