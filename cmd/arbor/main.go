// Command arbor generates hierarchical delivery roadmaps with Claude.
package main

func main() {
	Execute()
}
