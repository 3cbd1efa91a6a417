package resolver

import "strings"

// PageName derives the page-object class for a component class by naming
// convention. Names without "Component" come back unchanged.
func PageName(className string) string {
	return strings.Replace(className, "Component", "Page", 1)
}
