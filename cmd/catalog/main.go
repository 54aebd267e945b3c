package main

import (
	stdLog "log"
	"os"

	"github.com/Astemirdum/book-catalog/catalog/cli"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLog.Fatal("load envs from .env ", err)
	}
	cli.Execute()
}
