package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tayrichie/alfresco-ng2-components/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path     string
		expected types.Role
	}{
		{"lib/core/services/widget.service.ts", types.RoleService},
		{"lib/core/pipes/highlight.pipe.ts", types.RolePipe},
		{"lib/core/directives/tooltip.directive.ts", types.RoleDirective},
		{"e2e/pages/login.page.ts", types.RolePage},
		{"e2e/pages/LoginPage.ts", types.RolePage},
		{"lib/core/models/node.interface.ts", types.RoleInterface},
		{"lib/core/models/node.model.ts", types.RoleModel},
		{"e2e/core/login.e2e.ts", types.RoleE2E},
		{"lib/core/login/login.component.html", types.RoleComponentTemplate},
		{"lib/core/login/login.component.ts", types.RoleComponentSource},
		{"lib/core/login/login.component.scss", types.RoleUnknown},
		{"lib/core/login/login.component.spec.ts", types.RoleUnknown},
		{"README.md", types.RoleUnknown},
		{"", types.RoleUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.path))
			assert.Equal(t, Classify(tt.path), Classify(tt.path))
		})
	}
}

func TestClassifyAll_KeepsArrivalOrder(t *testing.T) {
	files := ClassifyAll([]string{"b.pipe.ts", "README.md", "a.service.ts"})

	assert.Equal(t, []types.ChangedFile{
		{Path: "b.pipe.ts", Role: types.RolePipe},
		{Path: "README.md", Role: types.RoleUnknown},
		{Path: "a.service.ts", Role: types.RoleService},
	}, files)
}
