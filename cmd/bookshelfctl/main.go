package main

import "bookshelf-api/cmd/bookshelfctl/commands"

func main() {
	commands.Execute()
}
