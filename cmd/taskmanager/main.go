// Command taskmanager runs the task manager API and talks to it from the terminal.
//
// @title                       Task Manager API
// @version                     1.0
// @description                 Multi-user task and category management with email verification.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
