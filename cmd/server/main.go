package main

import "peerpulse/internal/app/server"

func main() {
	server.Run()
}
