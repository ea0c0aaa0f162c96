package main

import "github.com/hayashi-geek/urlpipe/cmd"

func main() {
	cmd.Execute()
}
