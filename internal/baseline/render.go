package baseline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jptrs93/brsproto/internal/generate"
	"github.com/jptrs93/brsproto/internal/generate/brs"
)

const (
	JSONFile = "baseline.json"
	DataFile = "__baselineData.brs"
)

// Outputs renders baseline.json into fixtureDir and the BrightScript copy
// of the same document into sourceDir.
func Outputs(doc Document, fixtureDir, sourceDir string) ([]generate.OutputFile, error) {
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", JSONFile, err)
	}
	return []generate.OutputFile{
		{Path: filepath.Join(fixtureDir, JSONFile), Content: append(content, '\n')},
		{Path: filepath.Join(sourceDir, DataFile), Content: []byte(RenderBrightScript(doc))},
	}, nil
}

// RenderBrightScript renders GetBaselineData(), which returns the document
// as nested associative arrays.
func RenderBrightScript(doc Document) string {
	var b strings.Builder
	b.WriteString("' Generated by brsproto baseline. Do not edit.\n")
	b.WriteString("function GetBaselineData() as Object\n")
	b.WriteString("    data = {}\n")
	fmt.Fprintf(&b, "    data.AddReplace(\"generatedAt\", %s)\n", brs.Literal(doc.GeneratedAt))
	b.WriteString("    data.AddReplace(\"files\", [])\n")
	for _, file := range doc.Files {
		fmt.Fprintf(&b, "    data.files.Push(%s)\n", brs.Literal(file))
	}
	b.WriteString("    data.AddReplace(\"cases\", [])\n")
	for i, c := range doc.Cases {
		v := fmt.Sprintf("case%d", i)
		set := func(key, value string) {
			fmt.Fprintf(&b, "    %s.AddReplace(%q, %s)\n", v, key, value)
		}
		fmt.Fprintf(&b, "    %s = {}\n", v)
		set("type", brs.Literal(c.Type))
		set("protoType", brs.Literal(c.ProtoType))
		set("field", brs.Literal(c.Field))
		set("fieldId", brs.Literal(float64(c.FieldID)))
		set("sampleLabel", brs.Literal(c.SampleLabel))
		set("valueType", brs.Literal(c.ValueType))
		set("value", brs.Literal(c.Value))
		set("encodedBase64", brs.Literal(c.EncodedBase64))
		set("decoded", "{}")
		keys := make([]string, 0, len(c.Decoded))
		for k := range c.Decoded {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "    %s.decoded.AddReplace(%s, %s)\n", v, brs.Literal(k), brs.Literal(c.Decoded[k]))
		}
		if len(c.AlternateEncodings) > 0 {
			alternates := make([]any, len(c.AlternateEncodings))
			for j, a := range c.AlternateEncodings {
				alternates[j] = a
			}
			set("alternateEncodings", brs.Literal(alternates))
		}
		fmt.Fprintf(&b, "    data.cases.Push(%s)\n", v)
	}
	b.WriteString("    return data\n")
	b.WriteString("end function\n")
	return b.String()
}
