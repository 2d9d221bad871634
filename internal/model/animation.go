package model

import "time"

// Animation cycles through the frames of a named sprite animation.
// Count limits the number of loops; zero loops forever.
type Animation struct {
	Name   string
	Length int
	Speed  time.Duration
	Count  int

	frame    int
	lastTime time.Time
	done     bool
}

// NewAnimation creates an animation starting at its first frame.
func NewAnimation(name string, length int, speed time.Duration, count int) *Animation {
	if length < 1 {
		length = 1
	}
	return &Animation{Name: name, Length: length, Speed: speed, Count: count}
}

// Frame returns the current frame index.
func (a *Animation) Frame() int {
	return a.frame
}

// Done reports whether a counted animation has played all its loops.
func (a *Animation) Done() bool {
	return a.done
}

// Reset rewinds to the first frame.
func (a *Animation) Reset() {
	a.frame = 0
	a.lastTime = time.Time{}
	a.done = false
}

// Update advances the animation when its frame delay has elapsed and reports
// whether the visible frame changed. A counted animation stops on its first
// frame once the last loop wraps.
func (a *Animation) Update(now time.Time) bool {
	if a.done || now.Sub(a.lastTime) <= a.Speed {
		return false
	}
	a.lastTime = now

	next := a.frame + 1
	if next >= a.Length {
		next = 0
	}
	if a.Count > 0 && next == 0 {
		a.Count--
		if a.Count == 0 {
			a.frame = 0
			a.done = true
			return true
		}
	}
	a.frame = next
	return true
}

// DefaultAnimationLength is the frame count used when sprite metadata is not available.
func DefaultAnimationLength(name string) int {
	switch {
	case name == "death":
		return 6
	case len(name) >= 4 && name[:4] == "walk":
		return 4
	case len(name) >= 3 && name[:3] == "atk":
		return 3
	}
	return 2
}
