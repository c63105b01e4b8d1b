package tracker

import (
	"sync"
	"testing"
)

func TestTrackerCounters(t *testing.T) {
	tr := New()

	tr.TrackAPISuccess("openai")
	tr.TrackAPISuccess("openai")
	tr.TrackAPIFailure("openai")
	tr.TrackCacheHit("guide")
	tr.TrackCacheMiss("guide")
	tr.TrackFallback("narration")

	snap := tr.Snapshot()
	if snap["openai"].APISuccess != 2 || snap["openai"].APIFailures != 1 {
		t.Errorf("openai stats = %+v", snap["openai"])
	}
	if snap["guide"].CacheHits != 1 || snap["guide"].CacheMisses != 1 {
		t.Errorf("guide stats = %+v", snap["guide"])
	}
	if snap["narration"].Fallbacks != 1 {
		t.Errorf("narration stats = %+v", snap["narration"])
	}
}

func TestTrackerConcurrent(t *testing.T) {
	tr := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TrackAPISuccess("azure")
		}()
	}
	wg.Wait()

	if got := tr.Snapshot()["azure"].APISuccess; got != 50 {
		t.Errorf("APISuccess = %d, want 50", got)
	}
}
