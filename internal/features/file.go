package features

import (
	"context"
	"fmt"
	"os"

	"sitecompare/internal/common/fsutil"
	"sitecompare/pkg/types"
)

// FileSource reads Esri JSON FeatureSets from a single file or from every
// *.json file in a directory.
type FileSource struct {
	Path string
}

// Load implements Loader.
func (s FileSource) Load(ctx context.Context) ([]types.SiteFeature, error) {
	files, err := fsutil.ResolveFiles(s.Path, ".json")
	if err != nil {
		return nil, err
	}
	var out []types.SiteFeature
	for _, p := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		fs, err := decodeFeatureSet(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out = append(out, fs...)
	}
	return out, nil
}
