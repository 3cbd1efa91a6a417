package types

import (
	"fmt"
	"slices"
)

// Role is the purpose of a changed file, inferred from its file name.
type Role int

const (
	RoleUnknown Role = iota
	RoleService
	RolePipe
	RoleDirective
	RolePage
	RoleInterface
	RoleModel
	RoleE2E
	RoleComponentTemplate
	RoleComponentSource
)

var roleNames = map[Role]string{
	RoleUnknown:           "unknown",
	RoleService:           "service",
	RolePipe:              "pipe",
	RoleDirective:         "directive",
	RolePage:              "page",
	RoleInterface:         "interface",
	RoleModel:             "model",
	RoleE2E:               "e2e",
	RoleComponentTemplate: "component-template",
	RoleComponentSource:   "component",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ChangedFile is a path from the change set together with its classified role.
type ChangedFile struct {
	Path string `json:"path"`
	Role Role   `json:"role"`
}

// Skip records an item that was dropped from the pipeline and why.
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result accumulates the output of every pipeline stage.
//
// AffectedComponents keeps duplicates in discovery order. AffectedE2E is a set
// and keeps the order in which each path was first seen.
type Result struct {
	ChangedFiles       []ChangedFile `json:"changed_files"`
	AffectedComponents []string      `json:"affected_components"`
	AffectedServices   []string      `json:"affected_services,omitempty"`
	AffectedPages      []string      `json:"affected_pages"`
	AffectedE2E        []string      `json:"affected_e2e"`
	Skipped            []Skip        `json:"skipped,omitempty"`

	seenE2E map[string]struct{}
}

func NewResult() *Result {
	return &Result{
		ChangedFiles:       []ChangedFile{},
		AffectedComponents: []string{},
		AffectedPages:      []string{},
		AffectedE2E:        []string{},
		seenE2E:            make(map[string]struct{}),
	}
}

// AddE2E appends the paths not already present in AffectedE2E.
func (r *Result) AddE2E(paths ...string) {
	if r.seenE2E == nil {
		r.seenE2E = make(map[string]struct{}, len(r.AffectedE2E))
		for _, p := range r.AffectedE2E {
			r.seenE2E[p] = struct{}{}
		}
	}
	for _, p := range paths {
		if _, ok := r.seenE2E[p]; ok {
			continue
		}
		r.seenE2E[p] = struct{}{}
		r.AffectedE2E = append(r.AffectedE2E, p)
	}
}

// Skip records that path was dropped. Repeated skips of the same path for the
// same reason are recorded once.
func (r *Result) Skip(path, reason string) {
	entry := Skip{Path: path, Reason: reason}
	if slices.Contains(r.Skipped, entry) {
		return
	}
	r.Skipped = append(r.Skipped, entry)
}
