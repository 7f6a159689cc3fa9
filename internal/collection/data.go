package collection

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// LoadDataFiles decodes every *.json file under dir, keyed by file name
// without extension. A later file with the same name in a deeper directory
// replaces an earlier one. A missing dir yields an empty set.
func LoadDataFiles(dir string) (map[string]any, error) {
	data := map[string]any{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return ferrors.CollectionError("invalid data file").WithCause(err).WithContext("file", p).Build()
		}
		data[strings.TrimSuffix(d.Name(), ".json")] = v
		return nil
	})
	if err != nil {
		if _, ok := ferrors.AsClassified(err); ok {
			return nil, err
		}
		return nil, ferrors.FileSystemError("read data files").WithCause(err).WithContext("file", dir).Build()
	}
	return data, nil
}
