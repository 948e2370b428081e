package main

import (
	"log"

	"github.com/rosepress/rosepress"
)

func main() {
	app := rosepress.New(rosepress.LoadConfig())
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
