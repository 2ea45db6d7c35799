package parser

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

// imports returns the files transitively imported by files, each once, in
// depth-first order. The input files and the options proto are left out.
func imports(files []protoreflect.FileDescriptor) []protoreflect.FileDescriptor {
	seen := make(map[string]bool)
	for _, f := range files {
		seen[f.Path()] = true
	}
	var out []protoreflect.FileDescriptor
	var walk func(protoreflect.FileDescriptor)
	walk = func(f protoreflect.FileDescriptor) {
		list := f.Imports()
		for i := 0; i < list.Len(); i++ {
			imp := list.Get(i).FileDescriptor
			if imp == nil || imp.IsPlaceholder() || seen[imp.Path()] || imp.Path() == optionsProtoPath {
				continue
			}
			seen[imp.Path()] = true
			out = append(out, imp)
			walk(imp)
		}
	}
	for _, f := range files {
		walk(f)
	}
	return out
}

// referencedMessages returns the full names of every message a field of a
// message in files refers to, directly or through other messages. Map
// fields are skipped since they are never generated.
func referencedMessages(files []protoreflect.FileDescriptor) map[string]bool {
	seen := make(map[string]bool)
	var visit func(protoreflect.MessageDescriptor)
	visit = func(md protoreflect.MessageDescriptor) {
		fields := md.Fields()
		for i := 0; i < fields.Len(); i++ {
			field := fields.Get(i)
			if field.IsMap() || field.Kind() != protoreflect.MessageKind {
				continue
			}
			name := string(field.Message().FullName())
			if seen[name] {
				continue
			}
			seen[name] = true
			visit(field.Message())
		}
	}
	var walk func(protoreflect.MessageDescriptors)
	walk = func(msgs protoreflect.MessageDescriptors) {
		for i := 0; i < msgs.Len(); i++ {
			md := msgs.Get(i)
			if md.IsMapEntry() {
				continue
			}
			visit(md)
			walk(md.Messages())
		}
	}
	for _, f := range files {
		walk(f.Messages())
	}
	return seen
}
