package main

import (
	"log"

	"github.com/studyforge/study-assistant/app"
)

func main() {
	// setup and run app
	if err := app.SetupAndRunServer(); err != nil {
		log.Fatal(err)
	}
}
