package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSegment(t *testing.T) {
	tests := []struct {
		input  string
		want   Segment
		wantOK bool
	}{
		{"entry", SegmentEntry, true},
		{"  Premium ", SegmentPremium, true},
		{"MID", SegmentMid, true},
		{"giris", SegmentEntry, true},
		{"giriş", SegmentEntry, true},
		{"orta", SegmentMid, true},
		{"", "", false},
		{"gold", "", false},
		{"ust", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseSegment(tt.input)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIcon(t *testing.T) {
	assert.Equal(t, IconBluetooth, NormalizeIcon("bluetooth"))
	assert.Equal(t, IconWater, NormalizeIcon(" Water "))
	assert.Equal(t, IconFallback, NormalizeIcon(""))
	assert.Equal(t, IconFallback, NormalizeIcon("umbrella"))

	for icon := range knownIcons {
		assert.Equal(t, icon, NormalizeIcon(string(icon)))
	}
}
