package core

// Resolver hands out one entity per natural key for the duration of a
// parse pass. Pre-existing entities win over new ones; new entities are
// created on first sight and returned on every later lookup.
//
// E is expected to be a pointer type so callers share the instance.
type Resolver[E comparable] struct {
	keyOf  func(E) string
	create func(key string) E
	known  map[string]E
}

// NewResolver seeds a resolver with the persisted entities.
func NewResolver[E comparable](existing []E, keyOf func(E) string, create func(key string) E) *Resolver[E] {
	r := &Resolver[E]{
		keyOf:  keyOf,
		create: create,
		known:  make(map[string]E, len(existing)),
	}
	for _, e := range existing {
		r.known[keyOf(e)] = e
	}
	return r
}

// Resolve returns the entity for key, creating it if needed. update, when
// non-nil, is applied to the returned entity so display attributes carry
// the latest value seen.
func (r *Resolver[E]) Resolve(key string, update func(E)) E {
	e, ok := r.known[key]
	if !ok {
		e = r.create(key)
		r.known[key] = e
	}
	if update != nil {
		update(e)
	}
	return e
}

func newEmployeeResolver(existing []*Employee) *Resolver[*Employee] {
	return NewResolver(existing,
		func(e *Employee) string { return e.EmployeeID },
		func(key string) *Employee { return &Employee{EmployeeID: key} },
	)
}

func newProjectResolver(existing []*Project) *Resolver[*Project] {
	return NewResolver(existing,
		func(p *Project) string { return p.Code },
		func(key string) *Project { return &Project{Code: key} },
	)
}

func newCategoryResolver(existing []*GiftCategory) *Resolver[*GiftCategory] {
	return NewResolver(existing,
		func(c *GiftCategory) string { return c.Name },
		func(key string) *GiftCategory { return &GiftCategory{Name: key} },
	)
}
