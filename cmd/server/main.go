package main

import "costos/internal/app/server"

func main() {
	server.Main()
}
