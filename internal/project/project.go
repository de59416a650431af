// Package project loads project settings from CUE.
//
// A project file sets any of name, width, height and fps under a
// top-level project field:
//
//	project: {
//		name: "intro"
//		fps:  30
//	}
//
// Unset fields take their defaults. The schema rejects non-integer or
// non-positive dimensions and frame rates, and unknown fields.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/framescript/internal/frame"
)

// FileName is the conventional project file name.
const FileName = "project.cue"

const schema = `
#Project: {
	name:   string | *"untitled"
	width:  int & >0 | *1920
	height: int & >0 | *1080
	fps:    int & >0 | *60
}

project: #Project
`

// Error codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load or parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	ErrCodeInvalidFPS    = "E101"
	ErrCodeInvalidWidth  = "E102"
	ErrCodeInvalidHeight = "E103"
	ErrCodeInvalidName   = "E104"
	ErrCodeUnknownField  = "E105"
)

// LoadError is a project loading failure with a CUE position when known.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads settings from path, which is either a .cue file or a
// directory of them. A directory without CUE files yields E003.
func Load(path string) (frame.Settings, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return frame.Settings{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("project not found: %s", path)}
	}
	if err != nil {
		return frame.Settings{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing project: %v", err)}
	}

	ctx := cuecontext.New()
	var value cue.Value
	if info.IsDir() {
		value, err = buildDir(ctx, path)
	} else {
		value, err = buildFile(ctx, path)
	}
	if err != nil {
		return frame.Settings{}, err
	}
	return decode(ctx, value)
}

// Parse reads settings from CUE source. filename is used in positions.
func Parse(filename string, src []byte) (frame.Settings, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return frame.Settings{}, convertCUEError(ErrCodeLoadFailed, err)
	}
	return decode(ctx, value)
}

func buildFile(ctx *cue.Context, path string) (cue.Value, error) {
	if filepath.Ext(path) != ".cue" {
		return cue.Value{}, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("not a CUE file: %s", path)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return cue.Value{}, convertCUEError(ErrCodeLoadFailed, err)
	}
	return value, nil
}

func buildDir(ctx *cue.Context, dir string) (cue.Value, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil || len(matches) == 0 {
		return cue.Value{}, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, convertCUEError(ErrCodeLoadFailed, inst.Err)
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, convertCUEError(ErrCodeBuildFailed, err)
	}
	return value, nil
}

func decode(ctx *cue.Context, value cue.Value) (frame.Settings, error) {
	unified := ctx.CompileString(schema, cue.Filename("schema.cue")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return frame.Settings{}, convertCUEError("", err)
	}

	var s frame.Settings
	if err := unified.LookupPath(cue.ParsePath("project")).Decode(&s); err != nil {
		return frame.Settings{}, convertCUEError(ErrCodeGeneric, err)
	}
	if err := s.Validate(); err != nil {
		return frame.Settings{}, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	return s, nil
}

// convertCUEError keeps the first CUE error with its position. When code
// is empty it is derived from the failing field.
func convertCUEError(code string, err error) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		if code == "" {
			code = ErrCodeGeneric
		}
		return &LoadError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	if code == "" {
		code = fieldCode(cueerrors.Path(first))
	}
	loadErr := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}

func fieldCode(path []string) string {
	if len(path) < 2 || path[0] != "project" {
		return ErrCodeGeneric
	}
	switch path[1] {
	case "fps":
		return ErrCodeInvalidFPS
	case "width":
		return ErrCodeInvalidWidth
	case "height":
		return ErrCodeInvalidHeight
	case "name":
		return ErrCodeInvalidName
	default:
		return ErrCodeUnknownField
	}
}
