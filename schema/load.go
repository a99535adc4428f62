package schema

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/accounts-coder/errors"
)

// LoadFile reads a schema from disk. ".hcl" files are HCL schema documents;
// ".json" files are Anchor IDL documents.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read schema", err)
	}
	return Parse(path, data)
}

// Parse dispatches on the file extension of name, like LoadFile.
func Parse(name string, data []byte) (*Schema, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".hcl":
		return ParseHCL(name, data)
	case ".json":
		return ParseIDL(data)
	default:
		return nil, errors.InvalidInput(errors.PhaseLoad, "unknown schema format: "+name)
	}
}
