package model

import "time"

// RiskControl represents the many-to-many relationship between Risk and Control
type RiskControl struct {
	RiskID    int64
	ControlID int64
	CreatedAt time.Time
}
