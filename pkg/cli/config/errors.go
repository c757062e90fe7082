package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound    = goerr.New("configuration file not found")
	ErrInvalidConfig     = goerr.New("invalid configuration")
	ErrDuplicateID       = goerr.New("duplicate ID")
	ErrInvalidID         = goerr.New("invalid ID format")
	ErrMissingName       = goerr.New("name is required")
	ErrScoreOutOfRange   = goerr.New("score must be between 1 and 5")
	ErrInvalidThresholds = goerr.New("severity thresholds must be ascending")
	ErrInvalidSeverity   = goerr.New("invalid notify severity")
	ErrInvalidTemplate   = goerr.New("invalid workflow template")
	ErrInvalidLogLevel   = goerr.New("invalid log level")
	ErrInvalidLogFormat  = goerr.New("invalid log format")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	CategoryIDKey = "category_id"
	LevelIDKey    = "level_id"
	TemplateIDKey = "template_id"
	StepIndexKey  = "step_index"
)
