package main

import "github.com/vibast-solutions/ms-go-blog/cmd"

func main() {
	cmd.Execute()
}
