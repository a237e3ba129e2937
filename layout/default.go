package layout

import (
	_ "embed"
	"fmt"

	"realmwalk/server/models"
)

//go:embed default.json
var defaultLayout []byte

// DefaultName is the storage key of the built-in layout
const DefaultName = "default"

// Default returns the built-in layout used when no layout is configured
func Default() *models.GameMap {
	gm, err := Parse(defaultLayout)
	if err != nil {
		panic(fmt.Sprintf("built-in layout: %v", err))
	}
	return gm
}
