package service

import (
	"errors"

	"sidequest/internal/model"
)

var (
	ErrDependencyNotMet   = errors.New("prerequisite quest not completed")
	ErrDependentCompleted = errors.New("a completed quest still depends on this one")
	ErrDependencyForeign  = errors.New("dependency must reference a quest at the same location")
	ErrDependencyCycle    = errors.New("dependency chain must not form a cycle")
)

// CanSetCompletion is the dependency gate: it decides whether flipping
// quest to target is allowed given the completion snapshot of every
// quest at the same location. It is a pure predicate; a non-nil return
// means the mutation is rejected and nothing may be written.
//
// Completing requires the declared prerequisite (if any) to be
// completed. Uncompleting requires that no other quest which lists this
// one as its prerequisite is still completed.
func CanSetCompletion(quest *model.Quest, siblings []*model.Quest, completed map[int64]bool, target bool) error {
	if target {
		if quest.Dependency != nil && !completed[*quest.Dependency] {
			return ErrDependencyNotMet
		}
		return nil
	}

	for _, sibling := range siblings {
		if sibling.ID == quest.ID || sibling.Dependency == nil {
			continue
		}
		if *sibling.Dependency == quest.ID && completed[sibling.ID] {
			return ErrDependentCompleted
		}
	}

	return nil
}

// ValidateDependency checks a quest's declared dependency against its
// location's quest list at catalog-edit time: the prerequisite must be
// a different quest at the same location, and following the chain from
// it must never arrive back at the quest itself.
func ValidateDependency(quest *model.Quest, siblings []*model.Quest) error {
	if quest.Dependency == nil {
		return nil
	}

	byID := make(map[int64]*model.Quest, len(siblings))
	for _, sibling := range siblings {
		byID[sibling.ID] = sibling
	}

	dep := *quest.Dependency
	if dep == quest.ID {
		return ErrDependencyCycle
	}
	if _, ok := byID[dep]; !ok {
		return ErrDependencyForeign
	}

	// Walk the chain. The hop bound covers the malformed case of a
	// pre-existing cycle that does not include this quest.
	current := dep
	for hops := 0; hops <= len(siblings); hops++ {
		next := byID[current]
		if next == nil || next.Dependency == nil {
			return nil
		}
		current = *next.Dependency
		if current == quest.ID {
			return ErrDependencyCycle
		}
	}

	return ErrDependencyCycle
}
