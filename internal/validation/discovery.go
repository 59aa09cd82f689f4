package validation

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
)

// FileExt is the only file type discovery picks up
const FileExt = ".parquet"

// Discover returns every data file under root, recursively, in
// lexicographic path order. Read-only.
func Discover(root string) ([]contracts.FileIdentity, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), FileExt) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover files under %s: %w", root, err)
	}

	sort.Strings(paths)

	files := make([]contracts.FileIdentity, 0, len(paths))
	for _, p := range paths {
		files = append(files, Identify(p))
	}
	return files, nil
}

// Identify derives a file's partition identity from its path
func Identify(path string) contracts.FileIdentity {
	year, month, ok := ParsePartition(path)
	return contracts.FileIdentity{
		Path:     path,
		Name:     filepath.Base(path),
		Year:     year,
		Month:    month,
		Resolved: ok,
	}
}

// ParsePartition reads the first year=<v> and first month=<v> path
// segments. ok is false when either is absent, non-integer, or the month
// is outside 1..12.
func ParsePartition(path string) (year, month int, ok bool) {
	var yearRaw, monthRaw string
	var haveYear, haveMonth bool

	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if !haveYear && strings.HasPrefix(seg, "year=") {
			yearRaw, haveYear = partitionValue(seg), true
		}
		if !haveMonth && strings.HasPrefix(seg, "month=") {
			monthRaw, haveMonth = partitionValue(seg), true
		}
	}
	if !haveYear || !haveMonth {
		return 0, 0, false
	}

	y, err := strconv.Atoi(yearRaw)
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(monthRaw)
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}

	return y, m, true
}

// partitionValue returns the text between the first and second '='
func partitionValue(seg string) string {
	_, v, _ := strings.Cut(seg, "=")
	v, _, _ = strings.Cut(v, "=")
	return v
}
