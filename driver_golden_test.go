package snakec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGolden compiles every tests/golden/*.snake.json fixture and
// checks its companion file: a *.expected fixture asserts that every
// one of its non-blank lines appears somewhere in the generated NASM
// source, and a *.expected_err fixture asserts Compile fails with an
// error whose message contains that text. There is no assembler
// available to actually run the output, so these are structural
// checks on the emitted instruction stream rather than behavioral
// ones.
func TestGolden(t *testing.T) {
	fixtures, err := filepath.Glob("tests/golden/*.snake.json")
	assert.NoError(t, err)
	assert.NotEmpty(t, fixtures)

	for _, fixture := range fixtures {
		fixture := fixture
		name := strings.TrimSuffix(filepath.Base(fixture), ".snake.json")
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(fixture)
			assert.NoError(t, err)

			prog, decodeErr := DecodeAST(data)

			base := strings.TrimSuffix(fixture, ".snake.json")
			if errData, err := os.ReadFile(base + ".expected_err"); err == nil {
				var compileErr error
				if decodeErr != nil {
					compileErr = decodeErr
				} else {
					_, compileErr = Compile(prog, nil)
				}
				if assert.Error(t, compileErr) {
					for _, line := range nonBlankLines(string(errData)) {
						assert.Contains(t, compileErr.Error(), line)
					}
				}
				return
			}

			assert.NoError(t, decodeErr)
			asm, err := Compile(prog, nil)
			assert.NoError(t, err)

			expected, err := os.ReadFile(base + ".expected")
			assert.NoError(t, err)
			for _, line := range nonBlankLines(string(expected)) {
				assert.Contains(t, asm, line)
			}
		})
	}
}

func nonBlankLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
