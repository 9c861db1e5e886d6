package gpuimage

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 filter parameters simultaneously. Create one
// via TweenFloat, TweenVec2 or TweenVec3 and call Update(dt) each frame. Every
// update hands the current values to the setters, which queue uniform writes
// like any other setter call. If the target filter is destroyed, the group
// stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	apply  func(v [4]float32)
	target Filter
	Done   bool
}

// Update advances all tweens by dt seconds and applies the values. If the
// target filter has been destroyed, Done is set and nothing is applied.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if isDestroyed(g.target) {
		g.Done = true
		return
	}

	var v [4]float32
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		v[i] = val
		if !finished {
			allDone = false
		}
	}
	g.apply(v)
	g.Done = allDone
}

func isDestroyed(f Filter) bool {
	d, ok := f.(interface{ Destroyed() bool })
	return ok && d.Destroyed()
}

// TweenFloat animates one float parameter of target from one value to
// another, e.g. TweenFloat(b, b.SetBrightness, 0, 0.5, 1, ease.Linear).
func TweenFloat(target Filter, set func(float32), from, to, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: target}
	g.tweens[0] = gween.New(from, to, duration, fn)
	g.apply = func(v [4]float32) { set(v[0]) }
	return g
}

// TweenVec2 animates a vec2 parameter, e.g. a vignette center.
func TweenVec2(target Filter, set func(mgl32.Vec2), from, to mgl32.Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: target}
	for i := range 2 {
		g.tweens[i] = gween.New(from[i], to[i], duration, fn)
	}
	g.apply = func(v [4]float32) { set(mgl32.Vec2{v[0], v[1]}) }
	return g
}

// TweenVec3 animates a vec3 parameter, e.g. a color.
func TweenVec3(target Filter, set func(mgl32.Vec3), from, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 3, target: target}
	for i := range 3 {
		g.tweens[i] = gween.New(from[i], to[i], duration, fn)
	}
	g.apply = func(v [4]float32) { set(mgl32.Vec3{v[0], v[1], v[2]}) }
	return g
}

// TweenSet is a list of running tween groups updated together. Finished
// groups are dropped on update. It is safe for concurrent use.
type TweenSet struct {
	mu     sync.Mutex
	groups []*TweenGroup
}

// Add starts tracking g.
func (s *TweenSet) Add(g *TweenGroup) {
	if g == nil {
		return
	}
	s.mu.Lock()
	s.groups = append(s.groups, g)
	s.mu.Unlock()
}

// Update advances every group by dt seconds.
func (s *TweenSet) Update(dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.groups[:0]
	for _, g := range s.groups {
		g.Update(dt)
		if !g.Done {
			live = append(live, g)
		}
	}
	clear(s.groups[len(live):])
	s.groups = live
}

// Len returns the number of running groups.
func (s *TweenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.groups)
}
