package resolver

import (
	"strings"

	"github.com/tayrichie/alfresco-ng2-components/internal/types"
)

type suffixRole struct {
	suffix string
	role   types.Role
}

// Checked in order, most specific suffix first.
var suffixRoles = []suffixRole{
	{".service.ts", types.RoleService},
	{".pipe.ts", types.RolePipe},
	{".directive.ts", types.RoleDirective},
	{".page.ts", types.RolePage},
	{"Page.ts", types.RolePage},
	{".interface.ts", types.RoleInterface},
	{".model.ts", types.RoleModel},
	{".e2e.ts", types.RoleE2E},
	{".component.html", types.RoleComponentTemplate},
	{".component.ts", types.RoleComponentSource},
}

// Classify infers the role of a changed file from its name. Paths that match
// no convention are RoleUnknown.
func Classify(path string) types.Role {
	for _, sr := range suffixRoles {
		if strings.HasSuffix(path, sr.suffix) {
			return sr.role
		}
	}
	return types.RoleUnknown
}

// ClassifyAll classifies paths in arrival order.
func ClassifyAll(paths []string) []types.ChangedFile {
	files := make([]types.ChangedFile, 0, len(paths))
	for _, path := range paths {
		files = append(files, types.ChangedFile{Path: path, Role: Classify(path)})
	}
	return files
}
