package main

import (
	"github.com/cointrail/cointrail/pkg/cmd"
)

func main() {
	cmd.Execute()
}
