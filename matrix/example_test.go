package matrix_test

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlabel/matrix"
)

// ExampleNewDenseFrom builds a 3×3 transition table whose reserved row and
// column (index 0) are unreachable.
func ExampleNewDenseFrom() {
	inf := math.Inf(-1)
	trans, err := matrix.NewDenseFrom([][]float64{
		{inf, inf, inf},
		{inf, 0.0, 1.0},
		{inf, 0.5, 0.0},
	})
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Print(trans)
	// Output:
	// [-Inf, -Inf, -Inf]
	// [-Inf, 0, 1]
	// [-Inf, 0.5, 0]
}
