package model

import (
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

// Control represents an entry in the controls library
type Control struct {
	ID            int64
	Name          string
	Description   string
	Type          types.ControlType
	Status        types.ControlStatus
	Effectiveness types.Effectiveness
	OwnerEmail    string
	Reference     string // external framework reference, e.g. "ISO27001 A.8.2"
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
