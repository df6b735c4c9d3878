package domain

import "strings"

// RouteEntry describes one collaborator route reachable through the menu.
type RouteEntry struct {
	Namespace     string `json:"namespace"`
	NamespaceName string `json:"namespaceName"`
	Path          string `json:"path"`
	FullPath      string `json:"fullPath"`
	Name          string `json:"name"`
	Example       string `json:"example"`
}

// CustomNamespace labels paths that have no first segment.
const CustomNamespace = "custom"

// RouteNamespace returns the first path segment of a collaborator path.
func RouteNamespace(path string) string {
	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 2 || parts[1] == "" {
		return CustomNamespace
	}
	return parts[1]
}

// IsCollaboratorPath accepts only same-origin, non-API absolute paths.
func IsCollaboratorPath(path string) bool {
	switch {
	case !strings.HasPrefix(path, "/"):
		return false
	case strings.HasPrefix(path, "//"):
		return false
	case strings.Contains(path, "://"):
		return false
	case strings.HasPrefix(path, "/api/"):
		return false
	}
	return true
}
