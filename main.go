// Public domain.

package main

import "github.com/skysurvey/abscal/internal/acprog"

func main() {
	acprog.Main()
}
