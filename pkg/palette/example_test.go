package palette_test

import (
	"fmt"

	"github.com/matzehuels/archdiagram/pkg/palette"
)

func ExamplePalette_Merge() {
	light, err := palette.Default().Merge(map[palette.Role]string{
		palette.Background: "#FFFFFF",
		"accent-pink":      "#ff00aa",
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	bg, _ := light.Hex(palette.Background)
	pink := light.MustResolve("accent-pink")
	fmt.Println(bg, pink.R, pink.B)
	// Output: #ffffff 255 170
}
