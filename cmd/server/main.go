// Command portfolio runs the portfolio site and admin dashboard.
//
//	portfolio serve            start the HTTP server
//	portfolio check            probe the REST API and the session store
//	portfolio sessions prune   delete expired sessions
//
// Settings come from the environment; a .env file in the working directory
// is loaded first when present.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
