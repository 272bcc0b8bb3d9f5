package document

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Error code constants.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Document path not found
	ErrCodeUnsupported = "E003" // Unsupported file extension
	ErrCodeParseFailed = "E004" // YAML decode or CUE load failed
	ErrCodeBuildFailed = "E005" // CUE build or schema check failed
	ErrCodeInvalid     = "E006" // Document fails validation
	ErrCodeWriteFailed = "E007" // File write error
)

// LoadError represents an error that occurred while loading a document.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorCode returns the code of a *LoadError in err's chain, or ErrCodeGeneric.
func ErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}

// Load reads a YAML or CUE document and builds it.
func Load(path string) (*Document, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Build(f)
}

// ReadFile decodes a document file without building it.
func ReadFile(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document not found: %s", path)}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading %s: %v", path, err)}
		}
		return DecodeYAML(data)
	case ".cue":
		return DecodeCUE(path)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported document type %q (want .yaml, .yml or .cue)", filepath.Ext(path))}
	}
}

// DecodeYAML decodes a YAML document, rejecting unknown fields.
func DecodeYAML(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}
	return &f, nil
}

// DecodeCUE loads a CUE file, checks it against the #Document schema and
// decodes it.
func DecodeCUE(path string) (*File, error) {
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: filepath.Dir(path)}
	instances := load.Instances([]string{filepath.Base(path)}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, cueLoadError(ErrCodeParseFailed, "loading CUE file", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "building CUE value", err)
	}
	return decodeValue(ctx, value)
}

// DecodeCUEBytes is DecodeCUE for in-memory source. filename is used in
// error positions only.
func DecodeCUEBytes(filename string, src []byte) (*File, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, cueLoadError(ErrCodeParseFailed, "compiling CUE source", err)
	}
	return decodeValue(ctx, value)
}

func decodeValue(ctx *cue.Context, value cue.Value) (*File, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, cueLoadError(ErrCodeGeneric, "compiling document schema", err)
	}

	doc := schema.LookupPath(cue.ParsePath("#Document")).Unify(value)
	if err := doc.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "document does not match schema", err)
	}

	var f File
	if err := doc.Decode(&f); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "decoding document", err)
	}
	return &f, nil
}

// cueLoadError converts a CUE error to a LoadError, keeping the first
// reported position.
func cueLoadError(code, context string, err error) *LoadError {
	loadErr := &LoadError{Code: code, Message: fmt.Sprintf("%s: %v", context, err)}
	for _, e := range cueerrors.Errors(err) {
		if pos := e.Position(); pos.IsValid() {
			loadErr.Pos = pos
			break
		}
	}
	return loadErr
}
