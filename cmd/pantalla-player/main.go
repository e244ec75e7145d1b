// The pantalla-player command runs a signage screen against a Pantalla
// provider, keeping it alive from persisted state when the link drops.
package main

import "github.com/narabyte/pantalla-signage/internal/player/cmd"

func main() {
	cmd.Execute()
}
