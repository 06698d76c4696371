package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 10},
		{"default bucket size for negative", -1, 10},
		{"custom bucket size", 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(1, 2, "collect") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSampler_BucketsAndPhases(t *testing.T) {
	s := NewProgressSampler(50)

	if !s.ShouldLog(0, 10, "collect") {
		t.Error("first event should log")
	}
	if s.ShouldLog(1, 10, "collect") {
		t.Error("same bucket should not log")
	}
	if !s.ShouldLog(5, 10, "collect") {
		t.Error("crossing 50% should log")
	}
	if !s.ShouldLog(10, 10, "collect") {
		t.Error("completion should log")
	}
	if !s.ShouldLog(0, 4, "compress") {
		t.Error("phase change should log")
	}
	if s.lastPhase != "compress" {
		t.Errorf("lastPhase = %q, want compress", s.lastPhase)
	}

	s.Reset()
	if s.lastPhase != "" || s.lastBucket != -1 {
		t.Errorf("Reset did not clear state: %+v", s)
	}
}

func TestProgressSampler_UnknownTotal(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(3, 0, "collect") {
		t.Error("phase change should log even without total")
	}
	if s.ShouldLog(4, 0, "collect") {
		t.Error("unknown total without phase change should not log")
	}
}
