package types_test

import (
	"testing"

	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestRiskStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status types.RiskStatus
		want   bool
	}{
		{
			name:   "valid identified",
			status: types.RiskStatusIdentified,
			want:   true,
		},
		{
			name:   "valid closed",
			status: types.RiskStatusClosed,
			want:   true,
		},
		{
			name:   "invalid status",
			status: types.RiskStatus("invalid"),
			want:   false,
		},
		{
			name:   "empty status",
			status: types.RiskStatus(""),
			want:   false,
		},
		{
			name:   "uppercase is invalid",
			status: types.RiskStatus("IDENTIFIED"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want {
				gt.B(t, tt.status.IsValid()).True()
			} else {
				gt.B(t, tt.status.IsValid()).False()
			}
		})
	}
}

func TestParseRiskStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.RiskStatus
		wantErr bool
	}{
		{
			name:    "valid identified",
			input:   "identified",
			want:    types.RiskStatusIdentified,
			wantErr: false,
		},
		{
			name:    "valid mitigating",
			input:   "mitigating",
			want:    types.RiskStatusMitigating,
			wantErr: false,
		},
		{
			name:    "invalid value",
			input:   "done",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseRiskStatus(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestRiskStatus_Normalize(t *testing.T) {
	gt.Value(t, types.RiskStatus("").Normalize()).Equal(types.RiskStatusIdentified)
	gt.Value(t, types.RiskStatusClosed.Normalize()).Equal(types.RiskStatusClosed)
}

func TestRiskStatus_IsOpen(t *testing.T) {
	gt.B(t, types.RiskStatusIdentified.IsOpen()).True()
	gt.B(t, types.RiskStatusMitigating.IsOpen()).True()
	gt.B(t, types.RiskStatusAccepted.IsOpen()).False()
	gt.B(t, types.RiskStatusClosed.IsOpen()).False()
}
