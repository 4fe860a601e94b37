// Package testutil holds test helpers that pin the layering of the lab:
// domain at the bottom, engine and stores above it, drivers on top.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// ImportPredicate reports whether an import path is off limits for a package.
type ImportPredicate func(importPath string) bool

// AssertNoDirectImports parses the non-test .go files in dir and fails when
// any import matches one of the predicates. Build tags are not evaluated.
func AssertNoDirectImports(t testing.TB, dir string, reason string, forbidden ...ImportPredicate) {
	t.Helper()
	viols, err := directImportViolations(dir, anyOf(forbidden))
	if err != nil {
		t.Fatalf("scan %s: %v", dir, err)
	}
	failIfViolations(t, reason, viols)
}

// InternalImportForbidden matches any package under an internal/ tree.
func InternalImportForbidden(path string) bool {
	return strings.Contains(path, "/internal/")
}

// InfraImportForbidden matches the concrete persistence and blob backends.
// Callers reach those through core.OpenPersistentStore and blob.Open.
func InfraImportForbidden(path string) bool {
	return strings.Contains(path, "/internal/infra/")
}

// DriverImportForbidden matches database drivers and cloud SDKs, which only
// the infra packages may link.
func DriverImportForbidden(path string) bool {
	for _, prefix := range []string{
		"modernc.org/sqlite",
		"github.com/jackc/pgx",
		"github.com/aws/aws-sdk-go-v2",
	} {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func anyOf(preds []ImportPredicate) ImportPredicate {
	return func(path string) bool {
		for _, p := range preds {
			if p != nil && p(path) {
				return true
			}
		}
		return false
	}
}

func directImportViolations(dir string, forbidden ImportPredicate) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range file.Imports {
			ip := strings.Trim(imp.Path.Value, "\"")
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	sort.Strings(viols)
	return viols, nil
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIfViolations(t fatalLogger, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("forbidden imports (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}
