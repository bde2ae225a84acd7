package main

import (
	"fmt"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/fulldump/recstore/configuration"
)

var VERSION = "dev"

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", VERSION)
		return
	}

	err := run(&c)
	if err != nil {
		fmt.Println("ERROR:", err.Error())
		os.Exit(1)
	}
}
