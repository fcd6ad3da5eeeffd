// Command aptgen is a thin flag-based wrapper around the repogen
// orchestrator. It reads a release configuration and a
// secret key, walks a directory of package archives, and writes the
// resulting signed repository tree to an output directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/debrepod/deb"
	"github.com/etnz/debrepod/repogen"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("aptgen", flag.ContinueOnError)
	confPath := fs.String("c", "", "configuration file (TOML, [release] table)")
	inputDir := fs.String("i", "", "input directory of package archives (recursive)")
	outputDir := fs.String("o", "", "output directory for the repository")
	keyPath := fs.String("k", "", "armored secret key file")
	overwrite := fs.Bool("overwrite", false, "delete any existing output directory first")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *confPath == "" || *inputDir == "" || *outputDir == "" || *keyPath == "" {
		fmt.Fprintln(os.Stderr, "aptgen: -c, -i, -o, and -k are all required")
		return 2
	}

	if err := generate(*confPath, *inputDir, *outputDir, *keyPath, *overwrite); err != nil {
		fmt.Fprintf(os.Stderr, "aptgen: %v\n", err)
		return 1
	}
	return 0
}

func generate(confPath, inputDir, outputDir, keyPath string, overwrite bool) error {
	cfg, err := repogen.LoadConfig(confPath)
	if err != nil {
		return err
	}

	armoredKey, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("read key file %s: %w", keyPath, err)
	}

	if err := prepareOutputDir(outputDir, overwrite); err != nil {
		return err
	}

	listener := repogen.Listener(func(e fmt.Stringer) { fmt.Fprintln(os.Stderr, e.String()) })

	walked, err := repogen.WalkPackages(inputDir, listener)
	if err != nil {
		return err
	}

	files, err := repogen.GenerateRepository(cfg.ToReleaseMetadata(), string(armoredKey), repogen.Packages(walked), time.Now(), listener)
	if err != nil {
		return err
	}

	if err := writeFiles(outputDir, files); err != nil {
		return err
	}
	return copyPool(outputDir, walked)
}

// copyPool copies every accepted package's original archive bytes into
// pool/main under its canonical name. The generator itself never touches
// these bytes; writing them is the CLI's job.
func copyPool(outputDir string, walked []repogen.WalkedPackage) error {
	for _, w := range walked {
		dest := filepath.Join(outputDir, filepath.FromSlash(w.Package.Meta.Filename))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("create pool directory for %s: %w", w.Package.Meta.Filename, err)
		}
		raw, err := os.ReadFile(w.SourcePath)
		if err != nil {
			return fmt.Errorf("read %s: %w", w.SourcePath, err)
		}
		if err := os.WriteFile(dest, raw, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dest, err)
		}
	}
	return nil
}

// prepareOutputDir ensures outputDir is ready to receive a fresh repository
// tree: with overwrite set, any existing directory is removed first;
// without it, a pre-existing directory is an error.
func prepareOutputDir(outputDir string, overwrite bool) error {
	if _, err := os.Stat(outputDir); err == nil {
		if !overwrite {
			return fmt.Errorf("output directory %s already exists (use --overwrite)", outputDir)
		}
		if err := os.RemoveAll(outputDir); err != nil {
			return fmt.Errorf("remove existing output directory: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat output directory: %w", err)
	}
	return os.MkdirAll(outputDir, 0o755)
}

// writeFiles persists every generated file under outputDir, creating
// parent directories as needed.
func writeFiles(outputDir string, files []deb.FileToUpload) error {
	for _, f := range files {
		dest := filepath.Join(outputDir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(dest, f.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.Path, err)
		}
	}
	return nil
}
