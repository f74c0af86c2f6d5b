package models

import (
	"fmt"
	"strings"
)

// ProjectContext is the input document a roadmap is generated from.
// It is read-only for the lifetime of a generation run.
type ProjectContext struct {
	// Name is the project name; it also keys the persisted files.
	Name string `json:"name" yaml:"name"`
	// Vision describes what the project is meant to achieve.
	Vision string `json:"vision" yaml:"vision"`
	// TargetUsers lists who the project is for.
	TargetUsers []string `json:"target_users" yaml:"target_users"`
	// Constraints lists hard limits (budget, deadlines, compliance).
	Constraints []string `json:"constraints" yaml:"constraints"`
	// MustHave lists features the roadmap has to cover.
	MustHave []string `json:"must_have" yaml:"must_have"`
	// NiceToHave lists optional features.
	NiceToHave []string `json:"nice_to_have" yaml:"nice_to_have"`
	// TechPreferences lists preferred languages, frameworks and services.
	TechPreferences []string `json:"tech_preferences" yaml:"tech_preferences"`
	// Notes carries any free-form remarks.
	Notes string `json:"notes" yaml:"notes"`
}

// Validate checks the fields generation cannot proceed without.
func (c *ProjectContext) Validate() error {
	if c == nil {
		return fmt.Errorf("project context is nil")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("project context: name is required")
	}
	if strings.TrimSpace(c.Vision) == "" {
		return fmt.Errorf("project context: vision is required")
	}
	return nil
}
