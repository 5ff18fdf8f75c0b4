/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Entry point for the test-instr canary target. A deliberately tiny
program whose three output branches give coverage-instrumented builds distinct
code paths to distinguish. All behavior lives in pkg/dispatcher; this wires it
to the real process environment.
*/

package main

import (
	"os"

	"github.com/yae-miko-0627/fuzz-project/pkg/dispatcher"
)

func main() {
	d := dispatcher.New()
	os.Exit(d.Run(os.Args[1:]))
}
