package providers

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// extractJarEntry copies a single jar entry out to a temporary file so a
// definition resolving into library source can still be opened by the
// editor as a real file URI.
func extractJarEntry(ctx context.Context, jarPath, entryName string) (string, error) {
	r, err := zip.OpenReader(jarPath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entryName {
			continue
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()

		tmp, err := os.CreateTemp("", "jls-jarsrc-*-"+filepath.Base(entryName))
		if err != nil {
			return "", err
		}
		defer tmp.Close()

		if _, err := io.Copy(tmp, rc); err != nil {
			return "", err
		}
		return tmp.Name(), nil
	}
	return "", fmt.Errorf("jarextract: entry %s not found in %s", entryName, jarPath)
}
