package cli

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the actionhost CLI's startup banner.
func PrintBanner() {
	p := termenv.ColorProfile()
	s1 := termenv.String(" _____ ___ _____ ___  ___ _____  _  _  ___  ___ _____ ").Foreground(p.Color("#818cf8"))
	s2 := termenv.String("|  _  |  _|_   _|_ _||  _|  |   || |_| |/ _ \\/ __|_   _|").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String("|     | |_  | |  | | | | | | | | |  _  | (_) \\__ \\ | |  ").Foreground(p.Color("#c084fc"))
	s4 := termenv.String("|__|__|___| |_| |___|___|_|_|_|___|_| |_|\\___/|___/ |_|  ").Foreground(p.Color("#e879f9"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println()
}
