package model

// Builder converts designs into form models.
type Builder interface {
	Build(design Design) (FormModel, error)
}

// BuilderFunc adapts a function into a Builder.
type BuilderFunc func(Design) (FormModel, error)

// Build calls the underlying function.
func (fn BuilderFunc) Build(design Design) (FormModel, error) {
	return fn(design)
}
