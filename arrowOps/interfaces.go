package arrowops

type valueArray[T any] interface {
	IsNull(i int) bool
	Value(i int) T
	Len() int
}

type valueBuilder[T any] interface {
	Append(v T)
	AppendNull()
	Reserve(n int)
}
