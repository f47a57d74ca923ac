package medallion

// Transform is one step of a table transformation pipeline. Transforms are
// applied strictly in order, each one seeing the previous one's output.
type Transform interface {
	Transform(*Table) (*Table, error)
}

// TransformFunc can be wrapped around a function to make it implement the
// Transform interface. Similar to http.HandlerFunc.
type TransformFunc func(*Table) (*Table, error)

// Transform implements Transform for TransformFunc.
func (f TransformFunc) Transform(t *Table) (*Table, error) {
	return f(t)
}

// MetricFunc computes a derived column from a table. It must return one
// cell per row.
type MetricFunc func(*Table) ([]Value, error)
