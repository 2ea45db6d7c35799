package generate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jptrs93/brsproto/internal/logging"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

func WriteFiles(outputs []OutputFile, logger log.Logger) error {
	logger = logging.OrNop(logger)
	var total uint64
	for _, file := range outputs {
		if err := os.MkdirAll(filepath.Dir(file.Path), 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", filepath.Dir(file.Path), err)
		}
		if err := os.WriteFile(file.Path, file.Content, 0o644); err != nil {
			return fmt.Errorf("write file %s: %w", file.Path, err)
		}
		size := uint64(len(file.Content))
		total += size
		level.Info(logger).Log("msg", "wrote file", "path", file.Path, "size", humanize.Bytes(size))
	}
	level.Info(logger).Log("msg", "generated files", "count", len(outputs), "size", humanize.Bytes(total))
	return nil
}

// Mirror replaces dst with a copy of the files under src. It is how the
// generated tree reaches an application source directory.
func Mirror(src, dst string, logger log.Logger) error {
	logger = logging.OrNop(logger)
	if err := checkDisjoint(src, dst); err != nil {
		return err
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("clear %s: %w", dst, err)
	}
	var outputs []OutputFile
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		outputs = append(outputs, OutputFile{Path: filepath.Join(dst, rel), Content: content})
		return nil
	})
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	level.Info(logger).Log("msg", "copied generated tree", "from", src, "to", dst)
	return WriteFiles(outputs, logger)
}

// checkDisjoint refuses a mirror target that is, or contains, the source.
func checkDisjoint(src, dst string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absDst, absSrc)
	if err != nil {
		return err
	}
	if rel == "." || !strings.HasPrefix(rel, "..") {
		return fmt.Errorf("embed dir %s contains output dir %s", dst, src)
	}
	return nil
}
