package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

var migrationName = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	upMarker   = "-- +goose Up"
	downMarker = "-- +goose Down"
)

// ValidateDir checks the migrations under dir on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return errors.New("dir is required")
	}
	if err := ValidateFS(os.DirFS(dir)); err != nil {
		return fmt.Errorf("%s: %w", dir, err)
	}
	return nil
}

// ValidateFS requires timestamped file names, unique versions, and an Up
// section followed by a Down section in every file.
func ValidateFS(migrations fs.FS) error {
	files, err := fs.Glob(migrations, "*.sql")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no migrations found")
	}

	versions := make(map[string]string, len(files))
	for _, name := range files {
		m := migrationName.FindStringSubmatch(path.Base(name))
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (want YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, dup := versions[m[1]]; dup {
			return fmt.Errorf("version %s used by both %q and %q", m[1], prev, name)
		}
		versions[m[1]] = name

		body, err := fs.ReadFile(migrations, name)
		if err != nil {
			return fmt.Errorf("read %q: %w", name, err)
		}
		text := string(body)
		up, down := strings.Index(text, upMarker), strings.Index(text, downMarker)
		switch {
		case up < 0:
			return fmt.Errorf("%q has no %q section", name, upMarker)
		case down < 0:
			return fmt.Errorf("%q has no %q section", name, downMarker)
		case down < up:
			return fmt.Errorf("%q declares Down before Up", name)
		}
	}
	return nil
}
