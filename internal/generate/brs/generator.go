// Package brs generates BrightScript encoders and decoders: one module per
// message under messages/, the shared runtime, a handler registry and a
// README describing the output.
package brs

import (
	"bytes"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"

	"github.com/jptrs93/brsproto/internal/codec"
	"github.com/jptrs93/brsproto/internal/generate"
	"github.com/jptrs93/brsproto/internal/generate/templates"
	"github.com/jptrs93/brsproto/internal/ir"
	"github.com/jptrs93/brsproto/internal/logging"

	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"
)

const (
	RuntimeFile  = "runtime.brs"
	MessagesDir  = "messages"
	RegistryFile = "__index.brs"
	ReadmeFile   = "README.md"
)

type Generator struct{}

func (g Generator) Name() string {
	return "brs"
}

type job struct {
	file  ir.File
	msg   ir.Message
	style ir.CaseStyle
}

func (g Generator) Generate(files []ir.File, options generate.Options) ([]generate.OutputFile, error) {
	logger := logging.OrNop(options.Logger)
	tmpl, err := template.ParseFS(templates.FS, templates.Message, templates.Registry, templates.Readme)
	if err != nil {
		return nil, err
	}
	runtimeSource, err := templates.FS.ReadFile(templates.Runtime)
	if err != nil {
		return nil, err
	}

	names := indexMessages(files)
	var jobs []job
	for _, file := range files {
		style, err := file.CaseStyle(options.DecodeCase)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Path, err)
		}
		for _, msg := range file.Messages {
			jobs = append(jobs, job{file: file, msg: msg, style: style})
		}
	}

	// Every message renders independently; results keep declaration order.
	rendered := make([]generate.OutputFile, len(jobs))
	var group errgroup.Group
	limit := options.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	group.SetLimit(limit)
	for i, j := range jobs {
		i, j := i, j
		group.Go(func() error {
			content, err := renderMessage(tmpl, j, names, options.EmitDefaults)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", j.file.Path, j.msg.FullName, err)
			}
			rendered[i] = generate.OutputFile{
				Path:    filepath.Join(options.OutDir, MessagesDir, j.msg.Name+".brs"),
				Content: content,
			}
			level.Debug(logger).Log("msg", "rendered message", "message", j.msg.FullName, "fields", len(j.msg.Fields))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	registry, err := renderRegistry(tmpl, jobs)
	if err != nil {
		return nil, err
	}
	readme, err := renderReadme(tmpl, jobs, options)
	if err != nil {
		return nil, err
	}

	outputs := []generate.OutputFile{{
		Path:    filepath.Join(options.OutDir, RuntimeFile),
		Content: runtimeSource,
	}}
	outputs = append(outputs, rendered...)
	outputs = append(outputs,
		generate.OutputFile{Path: filepath.Join(options.OutDir, MessagesDir, RegistryFile), Content: registry},
		generate.OutputFile{Path: filepath.Join(options.OutDir, ReadmeFile), Content: readme},
	)
	return outputs, nil
}

func indexMessages(files []ir.File) map[string]string {
	index := make(map[string]string)
	for _, file := range files {
		for _, msg := range file.Messages {
			index[msg.FullName] = msg.Name
		}
	}
	return index
}

type messageData struct {
	Source   string
	FullName string
	Name     string
	Enums    []enumData
	Encode   string
	Defaults []keyedValue
	Lists    []listData
	Dispatch string
}

type enumData struct {
	ValuesFunc string
	NamesFunc  string
	Values     string
	Names      string
}

type keyedValue struct {
	Keys  string
	Value string
}

type listData struct {
	Var  string
	Keys string
}

func renderMessage(tmpl *template.Template, j job, names map[string]string, emitDefaults bool) ([]byte, error) {
	e := &emitter{msg: j.msg, style: j.style, names: names}
	data := messageData{
		Source:   j.file.Path,
		FullName: j.msg.FullName,
		Name:     j.msg.Name,
	}
	var encode, dispatch strings.Builder
	for i, field := range j.msg.Fields {
		if field.Class() == ir.ClassEnum && field.Enum != nil {
			data.Enums = append(data.Enums, enumData{
				ValuesFunc: e.valuesFunc(field),
				NamesFunc:  e.namesFunc(field),
				Values:     enumValues(field.Enum),
				Names:      enumNames(field.Enum),
			})
		}
		if err := e.encodeField(&encode, field); err != nil {
			return nil, err
		}
		if err := e.decodeField(&dispatch, field, i == 0); err != nil {
			return nil, err
		}
		keys := keyList(ir.DecodeKeys(field, j.style))
		switch {
		case field.IsRepeated:
			data.Lists = append(data.Lists, listData{Var: listVar(field), Keys: keys})
		case emitDefaults && field.Class() != ir.ClassMessage:
			data.Defaults = append(data.Defaults, keyedValue{Keys: keys, Value: literal(codec.DefaultValue(field))})
		}
	}
	if len(j.msg.Fields) > 0 {
		dispatch.WriteString("        end if\n")
	}
	data.Encode = encode.String()
	data.Dispatch = dispatch.String()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, templates.Message, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderRegistry(tmpl *template.Template, jobs []job) ([]byte, error) {
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.msg.Name
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, templates.Registry, names); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type readmeData struct {
	Inputs     []string
	Messages   []ir.Message
	DecodeCase string
	EmbedDir   string
	Command    string
}

func renderReadme(tmpl *template.Template, jobs []job, options generate.Options) ([]byte, error) {
	data := readmeData{
		Inputs:     options.Inputs,
		DecodeCase: describeCase(options.DecodeCase),
		EmbedDir:   filepath.ToSlash(options.EmbedDir),
		Command:    strings.Join(options.Inputs, " "),
	}
	for _, j := range jobs {
		data.Messages = append(data.Messages, j.msg)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, templates.Readme, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func describeCase(style ir.CaseStyle) string {
	switch style {
	case ir.CaseSnake:
		return "snake_case"
	case ir.CaseCamel:
		return "camelCase"
	default:
		return "both snake_case and camelCase"
	}
}
