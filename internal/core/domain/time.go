package domain

import (
	"fmt"
	"math"
)

// FlicksPerSecond is the number of Time units in one second.
// It divides evenly by every common frame rate and audio sample rate.
const FlicksPerSecond = 705_600_000

// Time is a position or duration on a timeline, measured in flicks.
type Time int64

// Seconds converts a duration in seconds to Time, rounding to the nearest flick.
func Seconds(s float64) Time {
	return Time(math.Round(s * FlicksPerSecond))
}

// Seconds returns t in seconds.
func (t Time) Seconds() float64 {
	return float64(t) / FlicksPerSecond
}

// String formats t as seconds.
func (t Time) String() string {
	return fmt.Sprintf("%.6gs", t.Seconds())
}

// Abs returns the absolute value of t.
func (t Time) Abs() Time {
	if t < 0 {
		return -t
	}
	return t
}

// Span is a half-open interval [Start, End) on a timeline.
type Span struct {
	Start Time
	End   Time
}

// Length returns End - Start.
func (s Span) Length() Time {
	return s.End - s.Start
}

// Contains reports whether t lies in [Start, End).
func (s Span) Contains(t Time) bool {
	return t >= s.Start && t < s.End
}

// Overlaps reports whether s and o share any instant.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Empty reports whether the span holds no instant.
func (s Span) Empty() bool {
	return s.End <= s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("[%s, %s)", s.Start, s.End)
}

// FrameRate is a rational frame rate, Num frames per Den seconds.
type FrameRate struct {
	Num int64
	Den int64
}

// Valid reports whether both terms are positive.
func (r FrameRate) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// FrameTime returns the timeline position of frame n.
func (r FrameRate) FrameTime(n int64) Time {
	return Time(mulDiv(n, r.Den*FlicksPerSecond, r.Num))
}

// FrameDuration returns the length of one frame.
func (r FrameRate) FrameDuration() Time {
	return Time(r.Den * FlicksPerSecond / r.Num)
}

// FrameAt returns the index of the frame displayed at t.
func (r FrameRate) FrameAt(t Time) int64 {
	return mulDiv(int64(t), r.Num, r.Den*FlicksPerSecond)
}

// SamplesIn returns how many samples at rate cover d.
func SamplesIn(d Time, rate int) int {
	return int(mulDiv(int64(d), int64(rate), FlicksPerSecond))
}

// mulDiv returns floor(a*b/c) for b >= 0 and c > 0. It does not overflow
// while the result and (c-1)*b fit in an int64.
func mulDiv(a, b, c int64) int64 {
	q, rem := a/c, a%c
	if rem < 0 {
		q--
		rem += c
	}
	return q*b + rem*b/c
}

// FrameRange is an inclusive-exclusive range of frame indices.
type FrameRange struct {
	From int64
	To   int64
}

// Len returns the number of frames in the range.
func (r FrameRange) Len() int64 {
	if r.To <= r.From {
		return 0
	}
	return r.To - r.From
}
