package main

import (
	"os"

	"horse.fit/bulletin/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
