package leapsec

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/tscale/internal/timeerr"
)

//go:embed schema.cue
var schemaCUE string

// LoadCUE reads a table document written in CUE from path.
func LoadCUE(path string) (*Table, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return CompileCUE(src, filepath.Base(path))
}

// CompileCUE unifies src with the #Table schema and builds a table from the
// result. Syntax errors are parse errors; schema violations are validation
// errors. Both carry the CUE source position in their message.
func CompileCUE(src []byte, filename string) (*Table, error) {
	const op = "leapsec.CompileCUE"
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueError(op, timeerr.CodeParse, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Table")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(op, timeerr.CodeValidation, err)
	}

	var doc Document
	if err := unified.Decode(&doc); err != nil {
		return nil, cueError(op, timeerr.CodeValidation, err)
	}
	return doc.Table(op)
}

// cueError keeps the first CUE error and its position.
func cueError(op string, code timeerr.Code, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &timeerr.Error{Code: code, Op: op, Message: err.Error(), Err: err}
	}
	first := errs[0]
	msg := first.Error()
	if positions := errors.Positions(first); len(positions) > 0 && positions[0].IsValid() {
		pos := positions[0]
		msg = fmt.Sprintf("%s:%d:%d: %s", pos.Filename(), pos.Line(), pos.Column(), msg)
	}
	return &timeerr.Error{Code: code, Op: op, Message: msg, Err: err}
}
