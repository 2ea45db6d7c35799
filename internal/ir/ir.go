package ir

import (
	"google.golang.org/protobuf/encoding/protowire"
)

type File struct {
	Path     string
	Package  string
	Syntax   Syntax
	Enums    []Enum
	Messages []Message
	// DecodeCase overrides the generation-wide decode case when set by the
	// brsproto.decode_case file option.
	DecodeCase string
}

// CaseStyle is the decode case for messages in the file: the file option
// when set, otherwise fallback.
func (f File) CaseStyle(fallback CaseStyle) (CaseStyle, error) {
	if f.DecodeCase == "" {
		return fallback, nil
	}
	return ParseCaseStyle(f.DecodeCase)
}

type Syntax int

const (
	SyntaxProto3 Syntax = iota
	SyntaxProto2
	SyntaxEditions
)

func (s Syntax) String() string {
	switch s {
	case SyntaxProto2:
		return "proto2"
	case SyntaxEditions:
		return "editions"
	default:
		return "proto3"
	}
}

type Enum struct {
	Name     string
	FullName string
	Values   []EnumValue
}

type EnumValue struct {
	Name   string
	Number int32
}

type Message struct {
	Name     string
	FullName string
	Fields   []Field
}

type Field struct {
	Name            string
	JSONName        string
	Number          int
	Kind            Kind
	IsRepeated      bool
	IsOptional      bool
	IsPacked        bool
	MessageFullName string
	Enum            *Enum
	Default         string
	HasDefault      bool
	// Alias is an extra key encoders accept, from the brsproto.key option.
	Alias string
}

// Class returns the polymorphic variant of the field.
func (f Field) Class() Class {
	return f.Kind.Class()
}

func (f Field) WireType() protowire.Type {
	return f.Kind.WireType()
}

// Tag is the tag of a single element on the wire.
func (f Field) Tag() uint64 {
	return protowire.EncodeTag(protowire.Number(f.Number), f.WireType())
}

// WireTag is the tag actually written for the field, which is the
// length-delimited tag for packed repeated fields.
func (f Field) WireTag() uint64 {
	if f.Packed() {
		return protowire.EncodeTag(protowire.Number(f.Number), protowire.BytesType)
	}
	return f.Tag()
}

// Packed reports whether repeated elements are written as one blob.
func (f Field) Packed() bool {
	return f.IsRepeated && f.IsPacked && f.Kind.Packable()
}

// AcceptsPacked reports whether the decoder must also take the
// length-delimited form for this field.
func (f Field) AcceptsPacked() bool {
	return f.IsRepeated && f.Kind.Packable()
}

// ImplicitPresence reports whether a zero value is omitted on encode.
func (f Field) ImplicitPresence() bool {
	return !f.IsRepeated && !f.IsOptional && f.Class() != ClassMessage
}

type Kind int

const (
	KindBool Kind = iota
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindSint32
	KindSint64
	KindFixed32
	KindFixed64
	KindSfixed32
	KindSfixed64
	KindFloat
	KindDouble
	KindString
	KindBytes
	KindMessage
	KindEnum
)

var kindNames = [...]string{
	KindBool:     "bool",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindSint32:   "sint32",
	KindSint64:   "sint64",
	KindFixed32:  "fixed32",
	KindFixed64:  "fixed64",
	KindSfixed32: "sfixed32",
	KindSfixed64: "sfixed64",
	KindFloat:    "float",
	KindDouble:   "double",
	KindString:   "string",
	KindBytes:    "bytes",
	KindMessage:  "message",
	KindEnum:     "enum",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

type Class int

const (
	ClassScalar Class = iota
	ClassEnum
	ClassMessage
)

func (k Kind) Class() Class {
	switch k {
	case KindEnum:
		return ClassEnum
	case KindMessage:
		return ClassMessage
	default:
		return ClassScalar
	}
}

func (k Kind) WireType() protowire.Type {
	switch k {
	case KindString, KindBytes, KindMessage:
		return protowire.BytesType
	case KindFixed32, KindSfixed32, KindFloat:
		return protowire.Fixed32Type
	case KindFixed64, KindSfixed64, KindDouble:
		return protowire.Fixed64Type
	default:
		return protowire.VarintType
	}
}

func (k Kind) Packable() bool {
	switch k {
	case KindString, KindBytes, KindMessage:
		return false
	default:
		return true
	}
}

// Is64Bit reports whether values are carried as decimal strings.
func (k Kind) Is64Bit() bool {
	switch k {
	case KindInt64, KindUint64, KindSint64, KindFixed64, KindSfixed64:
		return true
	default:
		return false
	}
}
