package domain

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"

	"slimelab/testutil"
)

// TestDomainDoesNotImportInternal keeps the domain layer free of internal
// implementation packages so engines and stores can depend on it freely.
func TestDomainDoesNotImportInternal(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "slimelab/pkg/domain")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if len(pkgs) == 0 {
		t.Fatalf("domain package not found")
	}
	for _, p := range pkgs {
		for _, e := range p.Errors {
			t.Fatalf("package error: %v", e)
		}
		for path := range p.Imports {
			if strings.HasPrefix(path, "slimelab/internal/") {
				t.Errorf("domain package must not import internal packages: %s", path)
			}
		}
	}
}

func TestDomainSourcesStayDriverFree(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", "domain types are storage agnostic",
		testutil.InternalImportForbidden, testutil.DriverImportForbidden)
}
