package main

import (
	"os"

	"github.com/sanjaymgicganja8597-maker/Nifty-money/cmd/niftymoney/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
