package script_test

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/rewrite"
	"github.com/yaklabco/treewrite/pkg/script"
	"github.com/yaklabco/treewrite/pkg/syntax/parser"
)

// update rewrites the output section of every golden archive.
// Usage: go test ./pkg/script -run TestGolden -update.
var update = flag.Bool("update", false, "update golden files")

// Golden archives hold an input.tw and a script.yaml section, plus either
// the expected output.tw or an error section with a substring of the
// expected error.
func TestGolden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no golden archives found")

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".txtar")
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			archive, err := txtar.ParseFile(path)
			require.NoError(t, err)
			sections := make(map[string][]byte, len(archive.Files))
			for _, f := range archive.Files {
				sections[f.Name] = f.Data
			}
			require.Contains(t, sections, "input.tw")
			require.Contains(t, sections, "script.yaml")

			got, err := run(sections["input.tw"], sections["script.yaml"])
			if want, ok := sections["error"]; ok {
				require.Error(t, err)
				assert.Contains(t, err.Error(), strings.TrimSpace(string(want)))
				return
			}
			require.NoError(t, err)

			if *update {
				for idx := range archive.Files {
					if archive.Files[idx].Name == "output.tw" {
						archive.Files[idx].Data = got
					}
				}
				require.NoError(t, os.WriteFile(path, txtar.Format(archive), 0o600))
				return
			}
			assert.Equal(t, string(sections["output.tw"]), string(got))
		})
	}
}

func run(input, scriptData []byte) ([]byte, error) {
	file, err := parser.ParseFile("input.tw", input)
	if err != nil {
		return nil, err
	}
	s, err := script.Parse(scriptData)
	if err != nil {
		return nil, err
	}

	rw := rewrite.NewRewriter(file, rewrite.DefaultOptions())
	ctx := logging.WithLogger(context.Background(), logging.Discard())
	if err := script.Apply(ctx, rw, s); err != nil {
		return nil, err
	}
	out, _, err := rw.Result()
	return out, err
}
