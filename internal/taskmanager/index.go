package taskmanager

import (
	"slices"
	"sort"
)

// dependencyIndex maps a prerequisite name to the tasks that declare it.
// Keys with no tasks are deleted, so absence and emptiness are the same state.
type dependencyIndex struct {
	byPrereq map[string][]*Task
}

func newDependencyIndex() *dependencyIndex {
	return &dependencyIndex{
		byPrereq: make(map[string][]*Task),
	}
}

// add lists t under each of its prerequisites, once per prerequisite.
func (ix *dependencyIndex) add(t *Task) {
	for _, prereq := range t.depends {
		list := ix.byPrereq[prereq]
		if slices.Contains(list, t) {
			continue
		}
		ix.byPrereq[prereq] = append(list, t)
	}
}

// remove drops this exact task instance from every prerequisite it declared.
func (ix *dependencyIndex) remove(t *Task) {
	for _, prereq := range t.depends {
		list := ix.byPrereq[prereq]
		i := slices.Index(list, t)
		if i < 0 {
			continue
		}
		list = slices.Delete(slices.Clone(list), i, i+1)
		if len(list) == 0 {
			delete(ix.byPrereq, prereq)
			continue
		}
		ix.byPrereq[prereq] = list
	}
}

// get returns a snapshot of the tasks depending on prereq.
func (ix *dependencyIndex) get(prereq string) []*Task {
	return slices.Clone(ix.byPrereq[prereq])
}

func (ix *dependencyIndex) names(prereq string) []string {
	list := ix.byPrereq[prereq]
	names := make([]string, 0, len(list))
	for _, t := range list {
		names = append(names, t.name)
	}
	return names
}

func (ix *dependencyIndex) keys() []string {
	keys := make([]string, 0, len(ix.byPrereq))
	for k := range ix.byPrereq {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
