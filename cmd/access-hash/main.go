package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	authsvc "github.com/ivankudzin/sensgen/internal/services/auth"
)

// Prints a bcrypt hash for ACCESS_CODE_HASH so the plain code never has to
// sit in config.
func main() {
	code := flag.String("code", "", "plain access code")
	flag.Parse()

	if strings.TrimSpace(*code) == "" {
		log.Fatal("use -code to pass the plain access code")
	}

	hash, err := authsvc.HashAccessCode(*code)
	if err != nil {
		log.Fatalf("hash access code: %v", err)
	}
	fmt.Println(hash)
}
