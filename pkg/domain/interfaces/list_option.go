package interfaces

import (
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

// ListRiskOption is a functional option for filtering risks in List
type ListRiskOption func(*listRiskConfig)

type listRiskConfig struct {
	status     *types.RiskStatus
	categoryID *types.CategoryID
	ownerEmail *string
}

// WithRiskStatus filters risks by status
func WithRiskStatus(status types.RiskStatus) ListRiskOption {
	return func(c *listRiskConfig) {
		c.status = &status
	}
}

// WithRiskCategory filters risks by category
func WithRiskCategory(categoryID types.CategoryID) ListRiskOption {
	return func(c *listRiskConfig) {
		c.categoryID = &categoryID
	}
}

// WithRiskOwner filters risks by owner email
func WithRiskOwner(email string) ListRiskOption {
	return func(c *listRiskConfig) {
		c.ownerEmail = &email
	}
}

// BuildListRiskConfig builds a listRiskConfig from options
func BuildListRiskConfig(opts ...ListRiskOption) *listRiskConfig {
	cfg := &listRiskConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Status returns the status filter value, or nil if not set
func (c *listRiskConfig) Status() *types.RiskStatus {
	return c.status
}

// CategoryID returns the category filter value, or nil if not set
func (c *listRiskConfig) CategoryID() *types.CategoryID {
	return c.categoryID
}

// OwnerEmail returns the owner filter value, or nil if not set
func (c *listRiskConfig) OwnerEmail() *string {
	return c.ownerEmail
}

// ListControlOption is a functional option for filtering controls in List
type ListControlOption func(*listControlConfig)

type listControlConfig struct {
	controlType   *types.ControlType
	status        *types.ControlStatus
	effectiveness *types.Effectiveness
}

// WithControlType filters controls by type
func WithControlType(t types.ControlType) ListControlOption {
	return func(c *listControlConfig) {
		c.controlType = &t
	}
}

// WithControlStatus filters controls by status
func WithControlStatus(status types.ControlStatus) ListControlOption {
	return func(c *listControlConfig) {
		c.status = &status
	}
}

// WithEffectiveness filters controls by effectiveness
func WithEffectiveness(e types.Effectiveness) ListControlOption {
	return func(c *listControlConfig) {
		c.effectiveness = &e
	}
}

// BuildListControlConfig builds a listControlConfig from options
func BuildListControlConfig(opts ...ListControlOption) *listControlConfig {
	cfg := &listControlConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ControlType returns the type filter value, or nil if not set
func (c *listControlConfig) ControlType() *types.ControlType {
	return c.controlType
}

// Status returns the status filter value, or nil if not set
func (c *listControlConfig) Status() *types.ControlStatus {
	return c.status
}

// Effectiveness returns the effectiveness filter value, or nil if not set
func (c *listControlConfig) Effectiveness() *types.Effectiveness {
	return c.effectiveness
}

// ListWorkflowOption is a functional option for filtering workflows in List
type ListWorkflowOption func(*listWorkflowConfig)

type listWorkflowConfig struct {
	status *types.WorkflowStatus
}

// WithWorkflowStatus filters workflows by status
func WithWorkflowStatus(status types.WorkflowStatus) ListWorkflowOption {
	return func(c *listWorkflowConfig) {
		c.status = &status
	}
}

// BuildListWorkflowConfig builds a listWorkflowConfig from options
func BuildListWorkflowConfig(opts ...ListWorkflowOption) *listWorkflowConfig {
	cfg := &listWorkflowConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Status returns the status filter value, or nil if not set
func (c *listWorkflowConfig) Status() *types.WorkflowStatus {
	return c.status
}

// ListDocumentOption is a functional option for filtering documents in List
type ListDocumentOption func(*listDocumentConfig)

type listDocumentConfig struct {
	source *types.DocumentSource
	status *types.DocumentStatus
	tag    *string
}

// WithDocumentSource filters documents by source
func WithDocumentSource(source types.DocumentSource) ListDocumentOption {
	return func(c *listDocumentConfig) {
		c.source = &source
	}
}

// WithDocumentStatus filters documents by status
func WithDocumentStatus(status types.DocumentStatus) ListDocumentOption {
	return func(c *listDocumentConfig) {
		c.status = &status
	}
}

// WithDocumentTag filters documents carrying the tag
func WithDocumentTag(tag string) ListDocumentOption {
	return func(c *listDocumentConfig) {
		c.tag = &tag
	}
}

// BuildListDocumentConfig builds a listDocumentConfig from options
func BuildListDocumentConfig(opts ...ListDocumentOption) *listDocumentConfig {
	cfg := &listDocumentConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Source returns the source filter value, or nil if not set
func (c *listDocumentConfig) Source() *types.DocumentSource {
	return c.source
}

// Status returns the status filter value, or nil if not set
func (c *listDocumentConfig) Status() *types.DocumentStatus {
	return c.status
}

// Tag returns the tag filter value, or nil if not set
func (c *listDocumentConfig) Tag() *string {
	return c.tag
}

// ListAuditOption is a functional option for filtering audit entries in List
type ListAuditOption func(*listAuditConfig)

type listAuditConfig struct {
	entityType *string
	entityID   *string
	actor      *string
	since      *time.Time
	until      *time.Time
	limit      int
	offset     int
}

// DefaultAuditLimit bounds audit queries that do not set a limit
const DefaultAuditLimit = 100

// WithAuditEntity filters audit entries by entity type, and by entity ID
// when entityID is non-empty
func WithAuditEntity(entityType, entityID string) ListAuditOption {
	return func(c *listAuditConfig) {
		c.entityType = &entityType
		if entityID != "" {
			c.entityID = &entityID
		}
	}
}

// WithAuditActor filters audit entries by actor
func WithAuditActor(actor string) ListAuditOption {
	return func(c *listAuditConfig) {
		c.actor = &actor
	}
}

// WithAuditSince filters audit entries created at or after the time
func WithAuditSince(since time.Time) ListAuditOption {
	return func(c *listAuditConfig) {
		c.since = &since
	}
}

// WithAuditUntil filters audit entries created before the time
func WithAuditUntil(until time.Time) ListAuditOption {
	return func(c *listAuditConfig) {
		c.until = &until
	}
}

// WithAuditPage sets limit and offset
func WithAuditPage(limit, offset int) ListAuditOption {
	return func(c *listAuditConfig) {
		c.limit = limit
		c.offset = offset
	}
}

// BuildListAuditConfig builds a listAuditConfig from options
func BuildListAuditConfig(opts ...ListAuditOption) *listAuditConfig {
	cfg := &listAuditConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.limit <= 0 {
		cfg.limit = DefaultAuditLimit
	}
	return cfg
}

// EntityType returns the entity type filter value, or nil if not set
func (c *listAuditConfig) EntityType() *string {
	return c.entityType
}

// EntityID returns the entity ID filter value, or nil if not set
func (c *listAuditConfig) EntityID() *string {
	return c.entityID
}

// Actor returns the actor filter value, or nil if not set
func (c *listAuditConfig) Actor() *string {
	return c.actor
}

// Since returns the lower time bound, or nil if not set
func (c *listAuditConfig) Since() *time.Time {
	return c.since
}

// Until returns the upper time bound, or nil if not set
func (c *listAuditConfig) Until() *time.Time {
	return c.until
}

// Limit returns the page size
func (c *listAuditConfig) Limit() int {
	return c.limit
}

// Offset returns the page offset
func (c *listAuditConfig) Offset() int {
	return c.offset
}
