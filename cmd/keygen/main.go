// Command keygen emits fresh master key material for the token service,
// base64 encoded so it can be pasted into the JUXTAPOSE_KEY_MATERIAL
// environment variable or written to a key file.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
)

func main() {
	numBytes := flag.Int("bytes", 32, "number of random key bytes to generate (minimum 16)")
	flag.Parse()

	if *numBytes < 16 {
		fmt.Fprintln(os.Stderr, "at least 16 key bytes are required")
		os.Exit(1)
	}

	material := make([]byte, *numBytes)
	if _, err := rand.Read(material); err != nil {
		fmt.Fprintf(os.Stderr, "failed to gather random key material: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(base64.StdEncoding.EncodeToString(material))
}
