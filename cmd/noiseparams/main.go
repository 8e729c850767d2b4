package main

import "github.com/MeKo-Tech/noiseparams/internal/cmd"

func main() {
	cmd.Execute()
}
