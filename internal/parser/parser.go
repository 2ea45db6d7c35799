package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jptrs93/brsproto/internal/ir"
	"github.com/jptrs93/brsproto/internal/logging"

	"github.com/bufbuild/protocompile"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"google.golang.org/protobuf/reflect/protoreflect"
)

type Parser struct {
	ImportPaths []string
	Logger      log.Logger
	// Accessor replaces file system access, e.g. for in-memory sources.
	Accessor func(path string) (io.ReadCloser, error)
}

// Parse compiles the named files and normalizes them for generation.
func (p *Parser) Parse(ctx context.Context, filePaths []string) ([]ir.File, error) {
	files, err := p.Compile(ctx, filePaths)
	if err != nil {
		return nil, err
	}
	return Normalize(files, p.Logger)
}

// Compile resolves the named files and their imports. Names are relative to
// the import paths.
func (p *Parser) Compile(ctx context.Context, filePaths []string) ([]protoreflect.FileDescriptor, error) {
	if len(filePaths) == 0 {
		return nil, fmt.Errorf("no proto files to compile")
	}
	importPaths := p.ImportPaths
	if len(importPaths) == 0 {
		importPaths = []string{"."}
	}
	open := p.Accessor
	if open == nil {
		open = func(path string) (io.ReadCloser, error) { return os.Open(path) }
	}
	resolver := &protocompile.SourceResolver{
		ImportPaths: importPaths,
		Accessor: func(path string) (io.ReadCloser, error) {
			if path == optionsProtoPath || strings.HasSuffix(path, string(os.PathSeparator)+optionsProtoPath) {
				return io.NopCloser(strings.NewReader(optionsProtoSource)), nil
			}
			return open(path)
		},
	}
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(resolver),
	}
	files, err := compiler.Compile(ctx, filePaths...)
	if err != nil {
		return nil, fmt.Errorf("compile protos: %w", err)
	}
	out := make([]protoreflect.FileDescriptor, 0, len(files))
	for _, f := range files {
		out = append(out, f)
	}
	return out, nil
}

// Normalize converts compiled files into generation descriptors. Map fields,
// groups and fields whose message type is not generated are dropped; so are
// messages left without fields. Messages from imported files are generated
// when a message in files refers to them; those files follow files in the
// result.
func Normalize(files []protoreflect.FileDescriptor, logger log.Logger) ([]ir.File, error) {
	n := &normalizer{logger: logging.OrNop(logger), owners: make(map[string]string)}
	var result []ir.File
	for _, file := range files {
		irFile, err := n.file(file)
		if err != nil {
			return nil, err
		}
		result = append(result, irFile)
	}
	referenced := referencedMessages(files)
	for _, file := range imports(files) {
		irFile, err := n.file(file)
		if err != nil {
			return nil, err
		}
		var kept []ir.Message
		for _, m := range irFile.Messages {
			if referenced[m.FullName] {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			continue
		}
		level.Debug(n.logger).Log("msg", "including imported file", "file", irFile.Path, "messages", len(kept))
		irFile.Messages = kept
		result = append(result, irFile)
	}
	n.prune(result)
	kept := result[:len(files)]
	for _, f := range result[len(files):] {
		if len(f.Messages) > 0 {
			kept = append(kept, f)
		}
	}
	result = kept
	if err := n.checkIdentifiers(result); err != nil {
		return nil, err
	}
	return result, nil
}
