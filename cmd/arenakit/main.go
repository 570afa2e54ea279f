// Command arenakit exercises the memory manager, containers and task
// queue from the command line.
package main

func main() {
	execute()
}
