package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"10s", 10 * time.Second, false},
		{"1m", 1 * time.Minute, false},
		{"1.5h", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 168 * time.Hour, false},
		{"2d2h", 50 * time.Hour, false},
		{"100ms", 100 * time.Millisecond, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseDistance(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"100m", 100, false},
		{"1.5km", 1500, false},
		{"500", 500, false}, // Unitless fallback
		{"10x", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDistance(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDistance(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDistance(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestDurationYAML(t *testing.T) {
	type doc struct {
		Wait Duration `yaml:"wait"`
	}

	var d doc
	if err := yaml.Unmarshal([]byte("wait: 2d"), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if time.Duration(d.Wait) != 48*time.Hour {
		t.Errorf("expected 48h, got %v", time.Duration(d.Wait))
	}

	out, err := yaml.Marshal(doc{Wait: Duration(90 * time.Second)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "wait: 1m30s\n" {
		t.Errorf("unexpected marshal output: %q", string(out))
	}
}

func TestDistanceYAML(t *testing.T) {
	type doc struct {
		Radius Distance `yaml:"radius"`
	}

	tests := []struct {
		input    string
		expected float64
	}{
		{"radius: 2km", 2000},
		{"radius: 40m", 40},
		{"radius: 75", 75}, // bare number
	}

	for _, tt := range tests {
		var d doc
		if err := yaml.Unmarshal([]byte(tt.input), &d); err != nil {
			t.Errorf("unmarshal %q: %v", tt.input, err)
			continue
		}
		if float64(d.Radius) != tt.expected {
			t.Errorf("unmarshal %q = %v, want %v", tt.input, d.Radius, tt.expected)
		}
	}
}
