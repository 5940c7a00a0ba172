package progress

import "github.com/cutwater-labs/mossaic/pkg/detector"

// ForDetector adapts a Tracker to the detector.ProgressFunc shape expected
// by Detector.Analyze: each tokenized file advances the bar by one tick,
// regardless of how many files have already been ticked.
func ForDetector(t *Tracker) detector.ProgressFunc {
	ticked := 0
	return func(done, total int) {
		for ; ticked < done; ticked++ {
			t.Tick()
		}
	}
}
