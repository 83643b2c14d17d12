package main

import (
	"fmt"
	"os"

	"github.com/Javohir11011/Hisob-kitob-bot/cmd/run"
)

func main() {
	if err := run.Run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error running hisob-kitob bot: %v", err)
		os.Exit(1)
	}
}
