// Command mapmorph previews and checks hierarchical map transitions.
package main

func main() {
	Execute()
}
