package keys

import (
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// StateFunc derives a caller-defined state snapshot from an owner.
type StateFunc func(owner any) any

// StateExcluded marks types that never belong in an object-state snapshot,
// such as the engine's per-instance binding slot.
type StateExcluded interface {
	CacheStateExcluded()
}

var stateExcludedType = reflect.TypeOf((*StateExcluded)(nil)).Elem()

// StateOf derives the object state used for stateful caching. The chain is,
// in priority order: the caller-supplied state function, the StateSource
// capability, a snapshot of the owner's exported fields, and finally the
// owner's identity.
func StateOf(owner any, fn StateFunc) any {
	if fn != nil {
		return fn(owner)
	}
	if s, ok := owner.(StateSource); ok {
		return s.CacheState()
	}
	return Snapshot(owner)
}

// Snapshot captures the observable state of a value: for structs, a map of
// exported fields (functions and channels are filtered out, mirroring the
// exclusion of behavior-only attributes from state); for anything without
// exported fields, the value's identity.
func Snapshot(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		t := rv.Type()
		m := make(map[string]any)
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if f.Type.Implements(stateExcludedType) || reflect.PointerTo(f.Type).Implements(stateExcludedType) {
				continue
			}
			fv := rv.Field(i)
			switch fv.Kind() {
			case reflect.Func, reflect.Chan:
				continue
			}
			m[f.Name] = fv.Interface()
		}
		if len(m) > 0 {
			return m
		}
	}
	return Identity(v)
}

// Identity reduces a value to a last-resort state: reference values are keyed
// by their address, everything else is its own state.
func Identity(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return identityState{p: rv.Pointer(), t: fmt.Sprintf("%T", v)}
	}
	return v
}

type identityState struct {
	p uintptr
	t string
}

func (s identityState) KeyHash() uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%s@%x", s.t, s.p))
}
