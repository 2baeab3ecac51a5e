package events

import "time"

// SimplifyOptions controls how Simplify condenses a recording.
type SimplifyOptions struct {
	// MoveMergeGap is the maximum gap between consecutive mouse-move
	// events for them to collapse into one. Zero disables move merging.
	MoveMergeGap time.Duration

	// ScrollMergeGap is the maximum gap between consecutive mouse-scroll
	// events at the same position for their deltas to be summed. Zero
	// disables scroll merging.
	ScrollMergeGap time.Duration

	// DropZeroScrolls removes scroll events whose dx and dy are both
	// zero (some capture sources emit them for horizontal-only wheels).
	DropZeroScrolls bool
}

// DefaultSimplifyOptions returns the merge windows used by the CLI's
// simplify command.
func DefaultSimplifyOptions() SimplifyOptions {
	return SimplifyOptions{
		MoveMergeGap:    200 * time.Millisecond,
		ScrollMergeGap:  400 * time.Millisecond,
		DropZeroScrolls: true,
	}
}

// Simplify returns a condensed copy of s. Runs of mouse-move events whose
// inter-event gaps are within MoveMergeGap collapse to the final position
// of the run (keeping that event's offset), and bursts of scrolling at one
// position merge into a single scroll with summed deltas at the first
// event's offset. All other events pass through unchanged, in order. The
// result contains only the same six event kinds as the input, so it
// serializes and replays like any other sequence.
func Simplify(s *Sequence, opts SimplifyOptions) *Sequence {
	evs := s.Events()
	if opts.DropZeroScrolls {
		kept := evs[:0:0]
		for _, e := range evs {
			if e.Kind() == KindMouseScroll && e.mouse.DX == 0 && e.mouse.DY == 0 {
				continue
			}
			kept = append(kept, e)
		}
		evs = kept
	}
	if opts.MoveMergeGap > 0 {
		evs = mergeMoves(evs, opts.MoveMergeGap)
	}
	if opts.ScrollMergeGap > 0 {
		evs = mergeScrolls(evs, opts.ScrollMergeGap)
	}

	out := NewSequence()
	for _, e := range evs {
		// Offsets only ever survive or move earlier within a merged
		// run, so re-appending cannot violate monotonicity.
		_ = out.Append(e)
	}
	return out
}

// mergeMoves keeps only the last move of each run of consecutive
// mouse-move events separated by at most gap.
func mergeMoves(evs []Event, gap time.Duration) []Event {
	out := evs[:0:0]
	for _, e := range evs {
		if e.Kind() == KindMouseMove && len(out) > 0 {
			last := out[len(out)-1]
			if last.Kind() == KindMouseMove && e.Offset()-last.Offset() <= gap {
				out[len(out)-1] = e
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// mergeScrolls sums the deltas of consecutive scrolls at the same
// position separated by at most gap, keeping the first event's offset.
func mergeScrolls(evs []Event, gap time.Duration) []Event {
	out := evs[:0:0]
	for _, e := range evs {
		if e.Kind() == KindMouseScroll && len(out) > 0 {
			last := out[len(out)-1]
			if last.Kind() == KindMouseScroll &&
				last.mouse.X == e.mouse.X && last.mouse.Y == e.mouse.Y &&
				e.Offset()-last.Offset() <= gap {
				merged, err := NewMouseScroll(last.Offset(), last.mouse.X, last.mouse.Y,
					last.mouse.DX+e.mouse.DX, last.mouse.DY+e.mouse.DY)
				if err == nil {
					out[len(out)-1] = merged
					continue
				}
			}
		}
		out = append(out, e)
	}
	return out
}
