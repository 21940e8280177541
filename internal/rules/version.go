package rules

import (
	"bufio"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ErrVersionNotFound is returned when none of the searched directories
// names its tzdata release.
var ErrVersionNotFound = errors.New("tzdata version not found")

// DetectVersion returns the tzdata release name (such as "2024a") of the
// first directory in dirs that records one, either in the header line of
// tzdata.zi ("# version 2024a") or in a +VERSION file.
func DetectVersion(fsys afero.Fs, dirs []string) (string, error) {
	for _, dir := range dirs {
		if v, ok := versionFromZi(fsys, path.Join(dir, "tzdata.zi")); ok {
			return v, nil
		}
		if data, err := afero.ReadFile(fsys, path.Join(dir, "+VERSION")); err == nil {
			if v := strings.TrimSpace(string(data)); v != "" {
				return v, nil
			}
		}
	}
	return "", errors.Wrapf(ErrVersionNotFound, "searched %s", strings.Join(dirs, ", "))
}

func versionFromZi(fsys afero.Fs, name string) (string, bool) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "#") {
			return "", false
		}
		fields := strings.Fields(strings.TrimPrefix(line, "#"))
		if len(fields) == 2 && fields[0] == "version" {
			return fields[1], true
		}
	}
	return "", false
}
