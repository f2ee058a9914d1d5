// Package deploy defines the JSON-shaped deployment schema from spec.md §6
// as typed Go structs, grounded on original_source/deployer/src/main.rs's
// action enum. Per spec.md §1 the deployment driver is an external
// collaborator treated only at its interface with the core: this package
// gives that interface a documented Go surface without pulling the
// original's traversal/orchestration logic into the module.
package deploy

import (
	"context"
	"encoding/json"
	"fmt"
)

// Kind discriminates an Action's concrete type, read from the action's
// "kind" JSON field.
type Kind string

const (
	KindCompileFile      Kind = "compile-file"
	KindCompileDirectory Kind = "compile-directory"
	KindCompileAgainst   Kind = "compile-against"
	KindCopyFile         Kind = "copy-file"
	KindCopyDirectory    Kind = "copy-directory"
	KindDeleteFile       Kind = "delete-file"
)

// CompileFile compiles one template against one context file.
type CompileFile struct {
	Template string `json:"template"`
	Context  string `json:"context"`
	Output   string `json:"output"`
}

// CompileDirectory compiles every template in a directory against a shared
// context file, writing results into a parallel output directory.
type CompileDirectory struct {
	TemplateDir string   `json:"template-dir"`
	Context     string   `json:"context"`
	OutputDir   string   `json:"output-dir"`
	Extensions  []string `json:"extensions,omitempty"`
}

// Target describes how compile-against drills into a nested array within
// the shared context to produce one output per element.
type Target struct {
	Alias             string `json:"alias"`
	ForEach           string `json:"for-each"`
	FilenameExtractor string `json:"filename-extractor"`
	AliasTo           string `json:"alias-to"`
}

// CompileAgainst applies one template to many contexts drawn from Targets
// drilling into a shared context document.
type CompileAgainst struct {
	Template  string   `json:"template"`
	Context   string   `json:"context"`
	OutputDir string   `json:"output-dir"`
	Targets   []Target `json:"target,omitempty"`
}

// CopyFile duplicates one file.
type CopyFile struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

// CopyDirectory duplicates a directory tree.
type CopyDirectory struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

// DeleteFile removes one path (file or directory tree).
type DeleteFile struct {
	Path string `json:"path"`
}

// Action is exactly one of the six deployment action kinds, decoded from
// its "kind" discriminator field.
type Action struct {
	Kind             Kind
	CompileFile      *CompileFile
	CompileDirectory *CompileDirectory
	CompileAgainst   *CompileAgainst
	CopyFile         *CopyFile
	CopyDirectory    *CopyDirectory
	DeleteFile       *DeleteFile
}

// UnmarshalJSON decodes an Action by first reading its "kind" field, then
// unmarshaling the rest into the matching concrete type.
func (a *Action) UnmarshalJSON(data []byte) error {
	var head struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	a.Kind = head.Kind
	switch head.Kind {
	case KindCompileFile:
		a.CompileFile = new(CompileFile)
		return json.Unmarshal(data, a.CompileFile)
	case KindCompileDirectory:
		a.CompileDirectory = new(CompileDirectory)
		return json.Unmarshal(data, a.CompileDirectory)
	case KindCompileAgainst:
		a.CompileAgainst = new(CompileAgainst)
		return json.Unmarshal(data, a.CompileAgainst)
	case KindCopyFile:
		a.CopyFile = new(CopyFile)
		return json.Unmarshal(data, a.CopyFile)
	case KindCopyDirectory:
		a.CopyDirectory = new(CopyDirectory)
		return json.Unmarshal(data, a.CopyDirectory)
	case KindDeleteFile:
		a.DeleteFile = new(DeleteFile)
		return json.Unmarshal(data, a.DeleteFile)
	default:
		return fmt.Errorf("deploy: unknown action kind %q", head.Kind)
	}
}

// Document is the top-level deployment schema: a JSON document with an
// "actions" array.
type Document struct {
	Actions []Action `json:"actions"`
}

// Driver executes one deployment Action. Implementations translate an
// Action into core operations (template compile, fsutil copy/delete); none
// is provided here, per spec.md §1's "external collaborator, treated only
// at its interface with the core".
type Driver interface {
	Run(ctx context.Context, action Action) error
}
