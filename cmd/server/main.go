package main

import (
	"log"

	api "WorldCup/api"
)

func main() {
	if err := api.Run(); err != nil {
		log.Fatal(err)
	}
}
