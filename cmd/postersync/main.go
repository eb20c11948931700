// Command postersync mirrors Plex posters into local directories and keeps
// their filenames in step with the server.
package main

func main() {
	Execute()
}
