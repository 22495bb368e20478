package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/voicecmd/internal/catalog"
	"github.com/roach88/voicecmd/internal/navigation"
)

// LoadResult contains a loaded catalog.
type LoadResult struct {
	Catalog   *catalog.Catalog
	Builtin   bool // the built-in navigation catalog was used
	FileCount int  // Number of CUE files found
}

// LoadError represents an error that occurred during catalog loading.
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

// Line returns the source line of the error, or 0.
func (e *LoadError) Line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// LoadCatalog loads the catalog at path, or the built-in navigation catalog
// when path is empty. The catalog is compiled but not validated.
func LoadCatalog(path string) (*LoadResult, error) {
	if path == "" {
		cat, err := navigation.Builtin()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("built-in catalog: %v", err)}
		}
		return &LoadResult{Catalog: cat, Builtin: true, FileCount: 1}, nil
	}

	// Verify path exists
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog: %v", err)}
	}

	fileCount := 1
	if info.IsDir() {
		cueFiles, err := catalog.FindCUEFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(cueFiles) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
		fileCount = len(cueFiles)
	}

	cat, err := catalog.LoadCatalog(path)
	if err != nil {
		return nil, convertCompileError(err)
	}
	if len(cat.Commands) == 0 {
		return nil, &LoadError{Code: ErrCodeNoCommands, Message: fmt.Sprintf("no commands found in %s", path)}
	}

	return &LoadResult{Catalog: cat, FileCount: fileCount}, nil
}

// convertCompileError converts a catalog compile error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *catalog.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands.
// Catalog validation codes (E2xx) live in the catalog package.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeScanError  = "E002" // Directory scan error
	ErrCodeNoFiles    = "E003" // No CUE files found
	ErrCodeLoadFailed = "E004" // CUE load or build failed
	ErrCodeNotFound   = "E005" // Path not found
	ErrCodeNoCommands = "E006" // Catalog declares no commands
)

// MapFieldToErrorCode maps a compile error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "label":
		return catalog.ErrLabelEmpty
	case "patterns":
		return catalog.ErrNoPatterns
	case "action":
		return catalog.ErrInvalidAction
	case "cue", "command":
		return ErrCodeLoadFailed
	default:
		return ErrCodeGeneric
	}
}
