package config

import (
	"os"
	"regexp"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	domainConfig "github.com/jungkj/riscura-sub000/pkg/domain/model/config"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

// Duration is a time.Duration that unmarshals from TOML strings
// such as "72h" or "30m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return goerr.Wrap(err, "invalid duration", goerr.V("value", string(text)))
	}
	*d = Duration(v)
	return nil
}

// AppConfig represents the application configuration loaded from a
// TOML file. The zero value carries only the --config flag; the
// document fields are populated by LoadAppConfig or DefaultAppConfig.
type AppConfig struct {
	path string

	Categories     []Category         `toml:"category"`
	Likelihood     []LikelihoodLevel  `toml:"likelihood"`
	Impact         []ImpactLevel      `toml:"impact"`
	Thresholds     *Thresholds        `toml:"thresholds"`
	NotifySeverity string             `toml:"notify_severity"`
	Workflows      []WorkflowTemplate `toml:"workflow"`
}

// Category represents a risk category configuration
type Category struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Validate checks if the Category is valid
func (c *Category) Validate() error {
	if err := types.CategoryID(c.ID).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidID, "invalid category ID", goerr.V(CategoryIDKey, c.ID))
	}
	if c.Name == "" {
		return goerr.Wrap(ErrMissingName, "category name is required", goerr.V(CategoryIDKey, c.ID))
	}
	return nil
}

// LikelihoodLevel represents a likelihood level configuration
type LikelihoodLevel struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Score       int    `toml:"score"`
}

// Validate checks if the LikelihoodLevel is valid
func (l *LikelihoodLevel) Validate() error {
	if err := types.LikelihoodID(l.ID).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidID, "invalid likelihood ID", goerr.V(LevelIDKey, l.ID))
	}
	if l.Name == "" {
		return goerr.Wrap(ErrMissingName, "likelihood name is required", goerr.V(LevelIDKey, l.ID))
	}
	if l.Score < 1 || l.Score > 5 {
		return goerr.Wrap(ErrScoreOutOfRange, "likelihood score out of range",
			goerr.V(LevelIDKey, l.ID), goerr.V("score", l.Score))
	}
	return nil
}

// ImpactLevel represents an impact level configuration
type ImpactLevel struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Score       int    `toml:"score"`
}

// Validate checks if the ImpactLevel is valid
func (i *ImpactLevel) Validate() error {
	if err := types.ImpactID(i.ID).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidID, "invalid impact ID", goerr.V(LevelIDKey, i.ID))
	}
	if i.Name == "" {
		return goerr.Wrap(ErrMissingName, "impact name is required", goerr.V(LevelIDKey, i.ID))
	}
	if i.Score < 1 || i.Score > 5 {
		return goerr.Wrap(ErrScoreOutOfRange, "impact score out of range",
			goerr.V(LevelIDKey, i.ID), goerr.V("score", i.Score))
	}
	return nil
}

// Thresholds holds the lower bounds of the MEDIUM, HIGH and CRITICAL
// severity bands over the risk score.
type Thresholds struct {
	Medium   int `toml:"medium"`
	High     int `toml:"high"`
	Critical int `toml:"critical"`
}

// Validate checks that the thresholds are positive and ascending
func (t *Thresholds) Validate() error {
	if t.Medium < 1 || t.Medium >= t.High || t.High >= t.Critical {
		return goerr.Wrap(ErrInvalidThresholds, "thresholds must satisfy 0 < medium < high < critical",
			goerr.V("medium", t.Medium), goerr.V("high", t.High), goerr.V("critical", t.Critical))
	}
	return nil
}

// TemplateStep represents one step of a workflow template
type TemplateStep struct {
	Name          string   `toml:"name"`
	EscalateAfter Duration `toml:"escalate_after"`
}

// WorkflowTemplate represents a reusable workflow step sequence
type WorkflowTemplate struct {
	ID    string         `toml:"id"`
	Name  string         `toml:"name"`
	Kind  string         `toml:"kind"`
	Steps []TemplateStep `toml:"step"`
}

var templateIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks if the WorkflowTemplate is valid
func (w *WorkflowTemplate) Validate() error {
	if !templateIDPattern.MatchString(w.ID) {
		return goerr.Wrap(ErrInvalidID, "invalid workflow template ID", goerr.V(TemplateIDKey, w.ID))
	}
	if w.Name == "" {
		return goerr.Wrap(ErrMissingName, "workflow template name is required", goerr.V(TemplateIDKey, w.ID))
	}
	if len(w.Steps) == 0 {
		return goerr.Wrap(ErrInvalidTemplate, "workflow template requires at least one step",
			goerr.V(TemplateIDKey, w.ID))
	}
	for i, step := range w.Steps {
		if step.Name == "" {
			return goerr.Wrap(ErrInvalidTemplate, "workflow step name is required",
				goerr.V(TemplateIDKey, w.ID), goerr.V(StepIndexKey, i))
		}
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	// Check category duplicates
	categoryIDs := make(map[string]bool)
	for _, cat := range a.Categories {
		if err := cat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category")
		}
		if categoryIDs[cat.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate category ID", goerr.V(CategoryIDKey, cat.ID))
		}
		categoryIDs[cat.ID] = true
	}

	// Check likelihood duplicates
	likelihoodIDs := make(map[string]bool)
	for _, lh := range a.Likelihood {
		if err := lh.Validate(); err != nil {
			return goerr.Wrap(err, "invalid likelihood level")
		}
		if likelihoodIDs[lh.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate likelihood ID", goerr.V(LevelIDKey, lh.ID))
		}
		likelihoodIDs[lh.ID] = true
	}

	// Check impact duplicates
	impactIDs := make(map[string]bool)
	for _, imp := range a.Impact {
		if err := imp.Validate(); err != nil {
			return goerr.Wrap(err, "invalid impact level")
		}
		if impactIDs[imp.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate impact ID", goerr.V(LevelIDKey, imp.ID))
		}
		impactIDs[imp.ID] = true
	}

	if a.Thresholds != nil {
		if err := a.Thresholds.Validate(); err != nil {
			return err
		}
	}

	if a.NotifySeverity != "" {
		if _, err := types.ParseSeverity(a.NotifySeverity); err != nil {
			return goerr.Wrap(ErrInvalidSeverity, "unknown notify severity",
				goerr.V("severity", a.NotifySeverity))
		}
	}

	// Check workflow template duplicates
	templateIDs := make(map[string]bool)
	for _, tmpl := range a.Workflows {
		if err := tmpl.Validate(); err != nil {
			return goerr.Wrap(err, "invalid workflow template")
		}
		if templateIDs[tmpl.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate workflow template ID",
				goerr.V(TemplateIDKey, tmpl.ID))
		}
		templateIDs[tmpl.ID] = true
	}

	return nil
}

// Flags returns CLI flags for application configuration
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file (built-in defaults when omitted)",
			Category:    "Configuration",
			Sources:     cli.EnvVars("RISCURA_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Path returns the configured file path, or empty for built-in defaults
func (a *AppConfig) Path() string {
	return a.path
}

// Configure loads and validates the configuration file and converts it
// into the domain configurations. When no --config is given the
// built-in defaults are used.
func (a *AppConfig) Configure() (*domainConfig.RiskConfig, *domainConfig.WorkflowConfig, error) {
	cfg := DefaultAppConfig()
	if a.path != "" {
		loaded, err := LoadAppConfig(a.path)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	return cfg.RiskConfig(), cfg.WorkflowConfig(), nil
}

// LoadAppConfig loads the application configuration from a TOML file
func LoadAppConfig(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// DefaultAppConfig returns the built-in configuration used when no
// file is given: a standard five-level scale with default thresholds
// and no workflow templates.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Categories: []Category{
			{ID: "operational", Name: "Operational", Description: "Process, people and system failures"},
			{ID: "security", Name: "Security", Description: "Threats to confidentiality, integrity and availability"},
			{ID: "compliance", Name: "Compliance", Description: "Regulatory and contractual obligations"},
			{ID: "financial", Name: "Financial", Description: "Direct monetary exposure"},
			{ID: "strategic", Name: "Strategic", Description: "Threats to business objectives"},
		},
		Likelihood: []LikelihoodLevel{
			{ID: "rare", Name: "Rare", Score: 1},
			{ID: "unlikely", Name: "Unlikely", Score: 2},
			{ID: "possible", Name: "Possible", Score: 3},
			{ID: "likely", Name: "Likely", Score: 4},
			{ID: "almost-certain", Name: "Almost certain", Score: 5},
		},
		Impact: []ImpactLevel{
			{ID: "negligible", Name: "Negligible", Score: 1},
			{ID: "minor", Name: "Minor", Score: 2},
			{ID: "moderate", Name: "Moderate", Score: 3},
			{ID: "major", Name: "Major", Score: 4},
			{ID: "severe", Name: "Severe", Score: 5},
		},
	}
}

// RiskConfig converts the loaded configuration to the domain RiskConfig
func (a *AppConfig) RiskConfig() *domainConfig.RiskConfig {
	categories := make([]domainConfig.Category, len(a.Categories))
	for i, cat := range a.Categories {
		categories[i] = domainConfig.Category{
			ID:          cat.ID,
			Name:        cat.Name,
			Description: cat.Description,
		}
	}

	likelihood := make([]domainConfig.LikelihoodLevel, len(a.Likelihood))
	for i, level := range a.Likelihood {
		likelihood[i] = domainConfig.LikelihoodLevel{
			ID:          level.ID,
			Name:        level.Name,
			Description: level.Description,
			Score:       level.Score,
		}
	}

	impact := make([]domainConfig.ImpactLevel, len(a.Impact))
	for i, level := range a.Impact {
		impact[i] = domainConfig.ImpactLevel{
			ID:          level.ID,
			Name:        level.Name,
			Description: level.Description,
			Score:       level.Score,
		}
	}

	thresholds := domainConfig.DefaultSeverityThresholds()
	if a.Thresholds != nil {
		thresholds = domainConfig.SeverityThresholds{
			Medium:   a.Thresholds.Medium,
			High:     a.Thresholds.High,
			Critical: a.Thresholds.Critical,
		}
	}

	return &domainConfig.RiskConfig{
		Categories:     categories,
		Likelihood:     likelihood,
		Impact:         impact,
		Thresholds:     thresholds,
		NotifySeverity: types.Severity(a.NotifySeverity),
	}
}

// WorkflowConfig converts the loaded configuration to the domain WorkflowConfig
func (a *AppConfig) WorkflowConfig() *domainConfig.WorkflowConfig {
	templates := make([]domainConfig.WorkflowTemplate, len(a.Workflows))
	for i, tmpl := range a.Workflows {
		steps := make([]domainConfig.TemplateStep, len(tmpl.Steps))
		for j, step := range tmpl.Steps {
			steps[j] = domainConfig.TemplateStep{
				Name:          step.Name,
				EscalateAfter: time.Duration(step.EscalateAfter),
			}
		}
		templates[i] = domainConfig.WorkflowTemplate{
			ID:    tmpl.ID,
			Name:  tmpl.Name,
			Kind:  tmpl.Kind,
			Steps: steps,
		}
	}

	return &domainConfig.WorkflowConfig{Templates: templates}
}
