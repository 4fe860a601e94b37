package core

import (
	"testing"

	"slimelab/testutil"
)

func TestCoreLeavesDriversToInfra(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", "database and cloud drivers belong to infra",
		testutil.DriverImportForbidden)
}
