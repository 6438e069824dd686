package commands

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Sumatoshi-tech/changanya/internal/ops"
)

const stdinPath = "-"

// readInputs collects inputs from files. Each file is one input, or one
// input per non-empty line when perLine is set. A path of "-" reads stdin.
func readInputs(stdin io.Reader, paths []string, perLine bool) ([]string, error) {
	var inputs []string

	for _, path := range paths {
		data, err := readPath(stdin, path)
		if err != nil {
			return nil, err
		}

		if !perLine {
			inputs = append(inputs, string(data))

			continue
		}

		scanner := bufio.NewScanner(bytes.NewReader(data))
		scanner.Buffer(nil, ops.MaxInputBytes)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				inputs = append(inputs, line)
			}
		}

		err = scanner.Err()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	return inputs, nil
}

func readPath(stdin io.Reader, path string) ([]byte, error) {
	var r io.Reader = stdin

	if path != stdinPath {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()

		r = f
	}

	// One byte past the limit lets the operation report the overflow.
	data, err := io.ReadAll(io.LimitReader(r, ops.MaxInputBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return data, nil
}
