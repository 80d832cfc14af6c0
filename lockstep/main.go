// Command lockstep runs two traffic simulations side by side.
package main

import "github.com/sarchlab/lockstep/lockstep/cmd"

func main() {
	cmd.Execute()
}
