package client

import (
	"sort"
)

// tubeSet mirrors the set of tubes the server has this session watching
type tubeSet map[string]bool

func newTubeSet(names ...string) tubeSet {
	t := make(tubeSet)
	for _, n := range names {
		t[n] = true
	}
	return t
}

func (t tubeSet) Set(name string) {
	t[name] = true
}

func (t tubeSet) Remove(name string) {
	delete(t, name)
}

func (t tubeSet) Contains(name string) bool {
	_, ok := t[name]
	return ok
}

func (t tubeSet) Len() int {
	return len(t)
}

// Names returns the tube names in sorted order
func (t tubeSet) Names() []string {
	names := make([]string, 0, len(t))
	for n := range t {
		names = append(names, n)
	}

	sort.Strings(names)
	return names
}
