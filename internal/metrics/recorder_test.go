package metrics

import (
	"testing"
	"time"
)

type testRecorder struct {
	NoopRecorder
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	buildDurations int
	buildOutcomes  map[string]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{stageDurations: map[string]int{}, stageResults: map[string]map[ResultLabel]int{}, buildOutcomes: map[string]int{}}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.stageDurations[stage]++
}
func (t *testRecorder) ObserveBuildDuration(_ time.Duration) { t.buildDurations++ }
func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}
func (t *testRecorder) IncBuildOutcome(outcome string) { t.buildOutcomes[outcome]++ }

func TestRecorderInterfaceSatisfied(t *testing.T) {
	var _ Recorder = NoopRecorder{}
	var _ Recorder = (*PrometheusRecorder)(nil)
	var r Recorder = newTestRecorder()

	r.ObserveStageDuration("discover_routes", time.Millisecond)
	r.IncStageResult("discover_routes", ResultWarning)
	r.IncBuildOutcome("warning")
	r.AddInlinedAssets(2)

	tr := r.(*testRecorder)
	if tr.stageDurations["discover_routes"] != 1 {
		t.Fatalf("stage duration not recorded")
	}
	if tr.stageResults["discover_routes"][ResultWarning] != 1 {
		t.Fatalf("stage result not recorded")
	}
	if tr.buildOutcomes["warning"] != 1 {
		t.Fatalf("build outcome not recorded")
	}
}
