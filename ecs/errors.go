package ecs

import "errors"

var (
	ErrDuplicateName     = errors.New("ecs: duplicate component name")
	ErrBadDependency     = errors.New("ecs: bad component dependency")
	ErrLifecycleFault    = errors.New("ecs: lifecycle hook failed")
	ErrComponentNotFound = errors.New("ecs: component not found")
	ErrObjectNotAlive    = errors.New("ecs: object is not alive")
	ErrDuplicateObject   = errors.New("ecs: duplicate object id")
	ErrInvalidDescriptor = errors.New("ecs: invalid component descriptor")
)
