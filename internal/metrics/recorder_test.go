package metrics

import (
	"sync"
	"testing"
	"time"
)

type testRecorder struct {
	mu             sync.Mutex
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	buildDurations int
	buildOutcomes  map[BuildOutcomeLabel]int
	themeResults   map[string]ResultLabel
	fileResults    map[string]int
	bytes          int64
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[ResultLabel]int{},
		buildOutcomes:  map[BuildOutcomeLabel]int{},
		themeResults:   map[string]ResultLabel{},
		fileResults:    map[string]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stageDurations[stage]++
}
func (t *testRecorder) ObserveBuildDuration(_ time.Duration) { t.buildDurations++ }
func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}
func (t *testRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) { t.buildOutcomes[outcome]++ }
func (t *testRecorder) IncThemeResult(theme string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.themeResults[theme] = result
}
func (t *testRecorder) IncFileResult(kind string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fileResults[kind+"/"+string(result)]++
}
func (t *testRecorder) AddBytesWritten(_ string, n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bytes += n
}

func TestRecorderInterfaceCompliance(t *testing.T) {
	var _ Recorder = NoopRecorder{}
	var _ Recorder = (*PrometheusRecorder)(nil)
	var _ Recorder = newTestRecorder()
}

func TestTestRecorderConcurrentUse(t *testing.T) {
	r := newTestRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.IncFileResult("other", ResultSuccess)
			r.AddBytesWritten("other", 10)
		}()
	}
	wg.Wait()
	if r.fileResults["other/success"] != 16 || r.bytes != 160 {
		t.Fatalf("unexpected counts: %v bytes=%d", r.fileResults, r.bytes)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("bundle_themes", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("bundle_themes", ResultSuccess)
	r.IncBuildOutcome(BuildOutcomeSuccess)
	r.IncThemeResult("theme-a", ResultFailed)
	r.IncFileResult("script", ResultFallback)
	r.AddBytesWritten("script", 42)
}
