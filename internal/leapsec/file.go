package leapsec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadFile reads a table from path, choosing the format by extension:
// .yaml and .yml documents, .cue documents checked against the schema, and
// IERS leap-seconds .list files.
func LoadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("read table: %w", err)
		}
		defer f.Close()
		return LoadYAML(f)
	case ".cue":
		return LoadCUE(path)
	case ".list":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("read table: %w", err)
		}
		defer f.Close()
		return ParseIERS(f)
	default:
		return nil, fmt.Errorf("read table %s: unknown format %q (want .yaml, .cue or .list)", path, filepath.Ext(path))
	}
}
