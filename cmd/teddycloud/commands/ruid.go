package commands

import (
	"fmt"
	"path/filepath"
	"strings"
)

// splitOutPath decomposes a content-root output path of the form
// <root>/<8hex>/<8hex> into its content root and rUID, the inverse of
// content.Store.Resolve's on-disk layout.
func splitOutPath(out string) (root, ruid string, err error) {
	out = filepath.Clean(out)
	file := filepath.Base(out)
	dir := filepath.Base(filepath.Dir(out))
	root = filepath.Dir(filepath.Dir(out))

	if len(dir) != 8 || len(file) != 8 {
		return "", "", fmt.Errorf("--out must look like <content-dir>/<8hex>/<8hex>, got %q", out)
	}

	ruid = strings.ToLower(dir + file)
	return root, ruid, nil
}
