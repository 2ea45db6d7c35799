package parser

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

const optionsProtoPath = "brsproto/options.proto"

const optionsProtoSource = `
syntax = "proto3";

package brsproto;

import "google/protobuf/descriptor.proto";

extend google.protobuf.FileOptions {
  string decode_case = 51000;
}

extend google.protobuf.FieldOptions {
  string key = 51010;
}
`

const (
	decodeCaseOption       protoreflect.FullName = "brsproto.decode_case"
	decodeCaseOptionNumber protowire.Number      = 51000
	keyOption              protoreflect.FullName = "brsproto.key"
	keyOptionNumber        protowire.Number      = 51010
)

func decodeCaseFromOptions(file protoreflect.FileDescriptor) string {
	return stringOption(file.Options(), decodeCaseOption, decodeCaseOptionNumber)
}

func keyFromFieldOptions(field protoreflect.FieldDescriptor) string {
	return stringOption(field.Options(), keyOption, keyOptionNumber)
}

// stringOption reads a string extension from an options message. The
// compiler may store a custom option either as a resolved extension or as
// unknown bytes, so both are checked.
func stringOption(opts proto.Message, name protoreflect.FullName, number protowire.Number) string {
	if opts == nil {
		return ""
	}
	m := opts.ProtoReflect()
	if !m.IsValid() {
		return ""
	}
	var out string
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		if fd.IsExtension() && fd.FullName() == name {
			out = v.String()
			return false
		}
		return true
	})
	if out != "" {
		return out
	}
	unknown := m.GetUnknown()
	for len(unknown) > 0 {
		num, typ, n := protowire.ConsumeTag(unknown)
		if n < 0 {
			return ""
		}
		unknown = unknown[n:]
		if num == number && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(unknown)
			if n < 0 {
				return ""
			}
			out = string(v)
			unknown = unknown[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, unknown)
		if n < 0 {
			return ""
		}
		unknown = unknown[n:]
	}
	return out
}

// explicitPacked returns the packed option when the field sets it.
func explicitPacked(field protoreflect.FieldDescriptor) (packed, ok bool) {
	opts, isField := field.Options().(*descriptorpb.FieldOptions)
	if !isField || opts == nil || opts.Packed == nil {
		return false, false
	}
	return opts.GetPacked(), true
}
