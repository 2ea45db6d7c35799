package generate

import (
	"github.com/jptrs93/brsproto/internal/ir"

	"github.com/go-kit/log"
)

type OutputFile struct {
	Path    string
	Content []byte
}

type Options struct {
	// OutDir is the root of the generated tree.
	OutDir string
	// EmbedDir, when set, receives a copy of the tree after it is written.
	EmbedDir     string
	DecodeCase   ir.CaseStyle
	EmitDefaults bool
	// Parallelism bounds concurrent message rendering. Zero means GOMAXPROCS.
	Parallelism int
	// Inputs are the proto files named in the generated README.
	Inputs []string
	Logger log.Logger
}

type Generator interface {
	Name() string
	Generate(files []ir.File, options Options) ([]OutputFile, error)
}
