// Command keygen prints a new API key and the bcrypt hash to add to API_KEY_HASHES.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

const keyPrefix = "nek_"

func main() {
	size := flag.Int("bytes", 24, "random bytes in the key")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	key, hash, err := generate(*size, *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("API key:   %s\n", key)
	fmt.Printf("Hash:      %s\n", hash)
	fmt.Println("Append the hash to API_KEY_HASHES (comma-separated). The key is not stored anywhere.")
}

func generate(size, cost int) (string, string, error) {
	if size < 16 {
		return "", "", fmt.Errorf("key must have at least 16 random bytes, got %d", size)
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("read random bytes: %w", err)
	}
	key := keyPrefix + hex.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", "", fmt.Errorf("hash key: %w", err)
	}
	return key, string(hash), nil
}
