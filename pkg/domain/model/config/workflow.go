package config

import "time"

// TemplateStep defines one step of a workflow template
type TemplateStep struct {
	Name          string
	EscalateAfter time.Duration // grace period after the step's due date; 0 disables escalation
}

// WorkflowTemplate defines a named, reusable step sequence
type WorkflowTemplate struct {
	ID    string
	Name  string
	Kind  string
	Steps []TemplateStep
}

// WorkflowConfig holds the configured workflow templates
type WorkflowConfig struct {
	Templates []WorkflowTemplate
}

// Template returns the template with the given ID, or nil
func (c *WorkflowConfig) Template(id string) *WorkflowTemplate {
	for i := range c.Templates {
		if c.Templates[i].ID == id {
			return &c.Templates[i]
		}
	}
	return nil
}
