package main

import "github.com/goplus/cdeps/cmd/cdeps/internal"

func main() {
	internal.Execute()
}
