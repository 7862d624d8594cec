package review

import "testing"

func TestBadgeFor_KnownValues(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		category  BadgeCategory
		wantColor string
		wantLabel string
	}{
		{"fetching stats", "fetching_stats", CategoryProcessing, "blue", "Fetching Stats"},
		{"waiting review", "waiting_review", CategoryProcessing, "yellow", "Waiting Review"},
		{"check pass", "pass", CategoryCheck, "green", "Pass"},
		{"check fail", "fail", CategoryCheck, "red", "Fail"},
		{"manual approval renders as pass", "approved_manual", CategoryCheck, "green", "Pass"},
		{"review rejected", "rejected", CategoryReview, "red", "Rejected"},
		{"ownership contested", "contested", CategoryOwnership, "orange", "Contested"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BadgeFor(tt.raw, tt.category)
			if b.Color != tt.wantColor {
				t.Errorf("BadgeFor(%q, %s).Color = %s, want %s", tt.raw, tt.category, b.Color, tt.wantColor)
			}
			if b.Label != tt.wantLabel {
				t.Errorf("BadgeFor(%q, %s).Label = %s, want %s", tt.raw, tt.category, b.Label, tt.wantLabel)
			}
		})
	}
}

func TestBadgeFor_UnknownDegradesToGray(t *testing.T) {
	// Forward compatibility: the server's enums grow; rendering must not break.
	cases := []struct {
		raw      string
		category BadgeCategory
	}{
		{"shadow_banned", CategoryProcessing},
		{"quarantined", CategoryCheck},
		{"escalated", CategoryReview},
		{"transferred", CategoryOwnership},
		{"anything", BadgeCategory("not_a_category")},
	}

	for _, c := range cases {
		b := BadgeFor(c.raw, c.category)
		if b.Color != "gray" {
			t.Errorf("BadgeFor(%q, %s).Color = %s, want gray", c.raw, c.category, b.Color)
		}
		if b.Label != c.raw {
			t.Errorf("BadgeFor(%q, %s).Label = %s, want the raw value", c.raw, c.category, b.Label)
		}
	}
}
