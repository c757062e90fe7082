package slack_test

import (
	"testing"

	"github.com/jungkj/riscura-sub000/pkg/service/slack"
)

func TestNormalizeChannelName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "spaces and case",
			input: "Vendor Outage",
			want:  "vendor-outage",
		},
		{
			name:  "all uppercase",
			input: "GDPR",
			want:  "gdpr",
		},
		{
			name:  "consecutive spaces keep their hyphens",
			input: "data  center  failure",
			want:  "data--center--failure",
		},
		{
			name:  "ASCII symbols dropped",
			input: "phishing!@#$%campaign",
			want:  "phishingcampaign",
		},
		{
			name:  "hyphen and underscore preserved",
			input: "risk-register_2026",
			want:  "risk-register_2026",
		},
		{
			name:  "non-ASCII letters preserved",
			input: "リスク管理",
			want:  "リスク管理",
		},
		{
			name:  "non-ASCII punctuation dropped",
			input: "リスク、管理。",
			want:  "リスク管理",
		},
		{
			name:  "mixed script lowercased",
			input: "監査Audit2026",
			want:  "監査audit2026",
		},
		{
			name:  "slash dropped",
			input: "outage/2026",
			want:  "outage2026",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slack.NormalizeChannelName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeChannelName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateRiskChannelName(t *testing.T) {
	tests := []struct {
		name     string
		riskID   int64
		riskName string
		prefix   string
		want     string
	}{
		{
			name:     "default prefix",
			riskID:   1,
			riskName: "Vendor Outage",
			prefix:   "risk",
			want:     "risk-1-vendor-outage",
		},
		{
			name:     "custom prefix",
			riskID:   42,
			riskName: "Expired TLS certificate",
			prefix:   "incident",
			want:     "incident-42-expired-tls-certificate",
		},
		{
			name:     "prefix is normalized too",
			riskID:   2,
			riskName: "Security Issue",
			prefix:   "SEC Alert!",
			want:     "sec-alert-2-security-issue",
		},
		{
			name:     "non-ASCII title preserved",
			riskID:   3,
			riskName: "委託先の情報漏えい",
			prefix:   "risk",
			want:     "risk-3-委託先の情報漏えい",
		},
		{
			name:     "long title truncated at the cap",
			riskID:   1,
			riskName: "Unpatched internet facing services in the legacy data center remain exposed to known exploits",
			prefix:   "risk",
			want:     "risk-1-unpatched-internet-facing-services-in-the-legacy-data-center-remain-expos",
		},
		{
			name:     "no dangling hyphen after truncation",
			riskID:   1,
			riskName: "Unpatched internet facing services in the legacy datacenter stay exposed a lot",
			prefix:   "risk",
			want:     "risk-1-unpatched-internet-facing-services-in-the-legacy-datacenter-stay-exposed",
		},
		{
			name:     "empty title",
			riskID:   7,
			riskName: "",
			prefix:   "risk",
			want:     "risk-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slack.GenerateRiskChannelName(tt.riskID, tt.riskName, tt.prefix)
			if got != tt.want {
				t.Errorf("GenerateRiskChannelName(%d, %q, %q) = %q, want %q",
					tt.riskID, tt.riskName, tt.prefix, got, tt.want)
			}
			if len(got) > 80 {
				t.Errorf("channel name exceeds Slack's 80 byte cap: %q (len=%d)", got, len(got))
			}
		})
	}
}
