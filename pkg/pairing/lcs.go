package pairing

// kgram is one shared-fingerprint occurrence reduced to the two facts the
// longest-common-substring computation needs: its hash and its ordinal
// position within the filtered, index-sorted sequence for one side of a
// Pair.
type kgram struct {
	hash uint32
	pos  int
}

// longestCommonSubstring computes the length of the longest common
// substring (contiguous run matched by hash) between two kgram sequences,
// via a rolling two-row DP over the shorter sequence's index space, as
// described for Pair.longest: for every element of the longer sequence,
// every position in the shorter sequence sharing its hash extends the run
// ending at the previous position by one.
func longestCommonSubstring(a, b []kgram) int {
	long, short := a, b
	if len(short) > len(long) {
		long, short = short, long
	}
	if len(short) == 0 {
		return 0
	}

	byHash := make(map[uint32][]int, len(short))
	for i, s := range short {
		byHash[s.hash] = append(byHash[s.hash], i)
	}

	prev := make([]int, len(short))
	curr := make([]int, len(short))
	best := 0

	for _, lg := range long {
		for i := range curr {
			curr[i] = 0
		}
		for _, pos := range byHash[lg.hash] {
			run := 1
			if pos > 0 {
				run = prev[pos-1] + 1
			}
			curr[pos] = run
			if run > best {
				best = run
			}
		}
		prev, curr = curr, prev
	}
	return best
}
