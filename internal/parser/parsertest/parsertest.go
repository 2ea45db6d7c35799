// Package parsertest compiles in-memory proto sources for tests.
package parsertest

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/jptrs93/brsproto/internal/ir"
	"github.com/jptrs93/brsproto/internal/parser"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Accessor serves sources by name and reports os.ErrNotExist otherwise.
func Accessor(sources map[string]string) func(string) (io.ReadCloser, error) {
	return func(path string) (io.ReadCloser, error) {
		src, ok := sources[strings.TrimPrefix(path, "./")]
		if !ok {
			return nil, os.ErrNotExist
		}
		return io.NopCloser(strings.NewReader(src)), nil
	}
}

// Compile compiles every source and returns both the descriptors and the
// normalized files, in name order.
func Compile(t testing.TB, sources map[string]string) ([]protoreflect.FileDescriptor, []ir.File) {
	t.Helper()
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	p := parser.Parser{Accessor: Accessor(sources)}
	fds, err := p.Compile(context.Background(), names)
	require.NoError(t, err)
	files, err := parser.Normalize(fds, nil)
	require.NoError(t, err)
	return fds, files
}

// Message finds a message descriptor by full name.
func Message(t testing.TB, fds []protoreflect.FileDescriptor, fullName string) protoreflect.MessageDescriptor {
	t.Helper()
	for _, fd := range fds {
		if md := find(fd.Messages(), protoreflect.FullName(fullName)); md != nil {
			return md
		}
	}
	require.FailNow(t, "message not found", fullName)
	return nil
}

func find(msgs protoreflect.MessageDescriptors, name protoreflect.FullName) protoreflect.MessageDescriptor {
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		if md.FullName() == name {
			return md
		}
		if nested := find(md.Messages(), name); nested != nil {
			return nested
		}
	}
	return nil
}
