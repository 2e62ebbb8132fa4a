package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/schoolsuite/cbt-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// hash-key generates the bcrypt hashes the server expects in
// ACCESS_CODE_HASH and ADMIN_KEY_HASH. The secret is read without echo.
func main() {
	cfg := config.Load()

	fmt.Print("Enter secret to hash: ")
	byteSecret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading secret")
		os.Exit(1)
	}
	if len(byteSecret) < 4 {
		fmt.Fprintln(os.Stderr, "Error: secret must be at least 4 characters")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword(byteSecret, cfg.BcryptCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(hash))
}
