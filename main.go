package main

import "github.com/llehouerou/wavestream/internal/cli"

func main() {
	cli.Execute()
}
