package timeerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := Parse("tai.Parse", "12s", "missing fraction")
	assert.Equal(t, `tai.Parse: PARSE: missing fraction (input="12s")`, err.Error())

	err = Overflow("", "seconds out of range")
	assert.Equal(t, "OVERFLOW: seconds out of range", err.Error())
}

func TestError_Cause(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Code: CodeValidation, Op: "leapsec.LoadCUE", Message: "schema", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestIsHelpers_SeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("converting: %w", Overflow("convert.ToTAI", "day count"))

	assert.True(t, IsOverflow(wrapped))
	assert.False(t, IsParse(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.False(t, IsNullReference(wrapped))
	assert.Equal(t, CodeOverflow, CodeOf(wrapped))
}

func TestIsHelpers_OtherErrors(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.True(t, IsNullReference(NullReference("utc.Of", "rules")))
	assert.True(t, IsValidation(Validation("tai.WithNano", "nano %d out of range", -1)))
}
