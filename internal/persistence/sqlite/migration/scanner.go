package migration

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// FSSource reads migration files from a directory inside an fs.FS.
type FSSource struct {
	fsys fs.FS
	dir  string
}

// NewFSSource returns a Source reading *.sql files from dir within fsys.
func NewFSSource(fsys fs.FS, dir string) *FSSource {
	if dir == "" {
		dir = "."
	}
	return &FSSource{fsys: fsys, dir: dir}
}

// Migrations implements Source.
func (s *FSSource) Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, fmt.Errorf("read migration directory %s: %w", s.dir, err)
	}

	migrations := make([]Migration, 0, len(entries))
	seen := make(map[int]string, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		migration, err := s.parse(entry.Name())
		if err != nil {
			return nil, err
		}

		version, _ := strconv.Atoi(migration.Version)
		if existing, ok := seen[version]; ok {
			return nil, newMigrationError(migration, "scan",
				fmt.Errorf("%w: %s and %s", ErrDuplicateVersion, existing, entry.Name()))
		}
		seen[version] = entry.Name()

		migrations = append(migrations, migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return versionNumber(migrations[i].Version) < versionNumber(migrations[j].Version)
	})

	return migrations, nil
}

func (s *FSSource) parse(name string) (Migration, error) {
	matches := fileNamePattern.FindStringSubmatch(name)
	if matches == nil {
		return Migration{}, &MigrationError{
			Path:      name,
			Operation: "validate filename",
			Err:       fmt.Errorf("%w: %q does not match {version}_{description}.sql", ErrInvalidMigrationFile, name),
		}
	}

	filePath := path.Join(s.dir, name)
	content, err := fs.ReadFile(s.fsys, filePath)
	if err != nil {
		return Migration{}, &MigrationError{Version: matches[1], Path: filePath, Operation: "read", Err: err}
	}

	migration := Migration{
		Version:     matches[1],
		Description: strings.ReplaceAll(matches[2], "_", " "),
		SQL:         string(content),
		Path:        filePath,
		Checksum:    fmt.Sprintf("%x", sha256.Sum256(content)),
	}

	if len(splitStatements(migration.SQL)) == 0 {
		return Migration{}, newMigrationError(migration, "validate content",
			fmt.Errorf("%w: no SQL statements", ErrInvalidMigrationFile))
	}

	if description := descriptionComment(migration.SQL); description != "" {
		migration.Description = description
	}

	return migration, nil
}

// descriptionComment returns the value of a leading "-- Description:" comment.
func descriptionComment(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "--") {
			return ""
		}
		if rest, ok := strings.CutPrefix(line, "-- Description:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// splitStatements splits migration SQL on semicolons and drops comment-only
// fragments. Migration files must not contain semicolons inside literals.
func splitStatements(sql string) []string {
	var statements []string
	for _, fragment := range strings.Split(sql, ";") {
		var lines []string
		for _, line := range strings.Split(fragment, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, trimmed)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}

func versionNumber(version string) int {
	n, err := strconv.Atoi(version)
	if err != nil {
		return -1
	}
	return n
}
