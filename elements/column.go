package elements

import (
	"github.com/apache/arrow/go/v17/arrow"
)

type Column struct {
	Name  string
	Dtype arrow.DataType
}

func NewColumn(name string, dtype arrow.DataType) Column {
	return Column{
		Name:  name,
		Dtype: dtype,
	}
}

func (obj *Column) IsValid() bool {
	if obj.Name == "" {
		return false
	}

	if obj.Dtype == nil {
		return false
	}
	return true
}
