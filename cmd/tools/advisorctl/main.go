/*
advisorctl runs the crop advisory engine and chatbot from the terminal.

Usage:

	advisorctl [command]

Examples:

	advisorctl recommend --nitrogen 120 --ph 6.8
	advisorctl irrigation Wheat --rain 2,8,9 --lang pa
	advisorctl ask --db data/advisory.db --district Amritsar "mandi price"
*/
package main

import (
	"os"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
