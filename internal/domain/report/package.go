package report

import (
	"context"
	"path"
	"strings"

	"github.com/storeadmin/backend/internal/domain/shared"
)

// PackagePrefix is the object storage prefix of mobile app packages
const PackagePrefix = "package/"

// PackagePath returns the storage key of an uploaded package file
func PackagePath(filename string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return "", shared.NewDomainError("INVALID_INPUT", "Package file name is required")
	}
	return PackagePrefix + name, nil
}

// CurrentPackage picks the published package from a listing of PackagePrefix.
// The first listed object is the current one.
func CurrentPackage(keys []string) (string, bool) {
	for _, k := range keys {
		if strings.HasPrefix(k, PackagePrefix) && len(k) > len(PackagePrefix) {
			return k, true
		}
	}
	return "", false
}

// PackageRepository stores the public download link of the current package
type PackageRepository interface {
	Link(ctx context.Context) (string, error)
	SetLink(ctx context.Context, link string) error
}
