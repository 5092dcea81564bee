package columns_test

import (
	"fmt"

	"github.com/matzehuels/vtable/pkg/columns"
	"github.com/matzehuels/vtable/pkg/records"
)

func ExampleCells() {
	rows := records.Generate(3, 1)
	cols, _ := columns.Select([]string{"id", "name", "city"})
	for i := 0; i < rows.Len(); i++ {
		cells, _ := columns.Cells(rows.At(i), cols, columns.PlainFormatter{})
		fmt.Println(cells)
	}
	// Output:
	// [1 João Silva São Paulo]
	// [2 Maria Santos Rio de Janeiro]
	// [3 Pedro Oliveira Belo Horizonte]
}
