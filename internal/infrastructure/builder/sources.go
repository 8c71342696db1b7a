package builder

import (
	"fmt"
	"go/build"
	"io"
	"os"
	"path/filepath"
)

// cycleFile is added to every staged package. Its content differs per cycle,
// which gives the build a plugin path of its own even when the sources did
// not change.
const cycleFile = "zz_mirage_cycle.go"

// stage copies the request's package for {sources}. It returns the staging
// directory, which the caller removes, and the staged file paths.
func (i *Invoker) stage(req Request) (string, []string, error) {
	root := i.opts.StagingDir
	if root == "" {
		root = filepath.Join(os.TempDir(), "mirage-sources")
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return "", nil, err
	}

	pkgDir := req.Package
	if !filepath.IsAbs(pkgDir) {
		pkgDir = filepath.Join(i.opts.Dir, pkgDir)
	}

	dir := filepath.Join(root, req.CycleID)
	sources, err := stageSources(pkgDir, dir, req.CycleID)
	if err != nil {
		return dir, nil, err
	}
	i.logger.Debug("Staged %d files from %s in %s", len(sources), pkgDir, dir)
	return dir, sources, nil
}

// stageSources copies the Go files of the package in pkgDir that match the
// host build context into dst and writes the cycle file next to them. The
// go command reads all named files from one directory, which is why the
// package is copied rather than listed in place.
//
// Only .go files are copied: //go:embed targets and cgo headers next to the
// sources are not available to staged builds.
func stageSources(pkgDir, dst, cycleID string) ([]string, error) {
	bp, err := build.ImportDir(pkgDir, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read package %s: %w", pkgDir, err)
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	names := make([]string, 0, len(bp.GoFiles)+len(bp.CgoFiles))
	names = append(names, bp.GoFiles...)
	names = append(names, bp.CgoFiles...)

	files := make([]string, 0, len(names)+1)
	for _, name := range names {
		target := filepath.Join(dst, name)
		if err := copyFile(filepath.Join(bp.Dir, name), target); err != nil {
			return nil, fmt.Errorf("failed to stage %s: %w", name, err)
		}
		files = append(files, target)
	}

	stamp := filepath.Join(dst, cycleFile)
	content := fmt.Sprintf("// Code generated by mirage. DO NOT EDIT.\n\npackage %s\n\nvar _ = %q\n", bp.Name, cycleID)
	if err := os.WriteFile(stamp, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", cycleFile, err)
	}
	return append(files, stamp), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
