package behaviour

import (
	"testing"
)

type recorder struct {
	name  string
	log   *[]string
	spawn PlayerBehaviour
	mgr   *BehaviourManager
}

func (r *recorder) Start() {
	*r.log = append(*r.log, r.name+".start")
	if r.spawn != nil {
		r.mgr.Add(r.spawn)
	}
}
func (r *recorder) Update()      { *r.log = append(*r.log, r.name+".update") }
func (r *recorder) UpdateFixed() { *r.log = append(*r.log, r.name+".fixed") }

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUpdateAllStartsOnce(t *testing.T) {
	var log []string
	m := NewBehaviourManager()
	m.Add(&recorder{name: "a", log: &log})

	m.UpdateAll()
	m.UpdateAll()
	m.UpdateAllFixed()

	want := []string{"a.start", "a.update", "a.update", "a.fixed"}
	if !equal(log, want) {
		t.Errorf("got %v, want %v", log, want)
	}
}

func TestStartOrderAndSpawn(t *testing.T) {
	var log []string
	m := NewBehaviourManager()
	child := &recorder{name: "child", log: &log}
	m.Add(&recorder{name: "parent", log: &log, spawn: child, mgr: m})
	m.Add(&recorder{name: "second", log: &log})

	m.StartAll()

	want := []string{"parent.start", "second.start", "child.start"}
	if !equal(log, want) {
		t.Errorf("got %v, want %v", log, want)
	}
	if m.Len() != 3 {
		t.Errorf("Len = %d, want 3", m.Len())
	}
}

func TestAddIgnoresDuplicates(t *testing.T) {
	var log []string
	m := NewBehaviourManager()
	r := &recorder{name: "a", log: &log}
	m.Add(r)
	m.Add(r)

	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestRemoveKeepsOrder(t *testing.T) {
	var log []string
	m := NewBehaviourManager()
	a := &recorder{name: "a", log: &log}
	b := &recorder{name: "b", log: &log}
	c := &recorder{name: "c", log: &log}
	m.Add(a)
	m.Add(b)
	m.Add(c)

	m.Remove(a)
	m.UpdateAll()

	want := []string{"b.start", "c.start", "b.update", "c.update"}
	if !equal(log, want) {
		t.Errorf("got %v, want %v", log, want)
	}

	m.Clear()
	if m.Len() != 0 {
		t.Error("Clear should drop everything")
	}
}
