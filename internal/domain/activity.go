package domain

// Parameters is the opaque key-value configuration of an activity.
type Parameters map[string]string

// ActivityDefinition is a step in the plan's path graph.
type ActivityDefinition struct {
	ID             string
	ActivityTypeID string
	Parameters     Parameters
	Paths          []string // outgoing transition targets, in declaration order
}

// UniversalActivityDefinition is evaluated independent of a subject's
// position in the path graph.
type UniversalActivityDefinition struct {
	ID                     string
	ActivityTypeID         string
	Parameters             Parameters
	PlanProcessingPosition PlanProcessingPosition
	Order                  int
}

// activitySet is an insertion-ordered collection with unique ids.
type activitySet[T any] struct {
	items []T
	index map[string]int
}

func (s *activitySet[T]) add(id string, item T) error {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[id]; ok {
		return ErrDuplicateActivity
	}
	s.index[id] = len(s.items)
	s.items = append(s.items, item)
	return nil
}

func (s *activitySet[T]) get(id string) (T, bool) {
	i, ok := s.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

func (s *activitySet[T]) list() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *activitySet[T]) len() int {
	return len(s.items)
}
