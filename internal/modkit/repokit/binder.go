package repokit

// Binder is a tiny factory that binds a domain repo to a specific Queryer,
// so services can run the same repo on the pool or inside a transaction
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc lets you create a Binder from a function
type BindFunc[T any] func(Queryer) T

// Bind calls the underlying function
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }
