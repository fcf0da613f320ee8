// Command demoserver starts a fake Hugging Face mirror for trying hfdl locally.
// Usage: go run ./cmd/demoserver [port] [fail-first]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/hfdl/internal/demoserver"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 0 {
			log.Fatalf("Invalid fail-first count: %s", os.Args[2])
		}
		cfg.FailFirst = n
	}

	fmt.Println("===========================================")
	fmt.Println("   hfdl Demo Mirror")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Serves listing pages in the layout hfdl scrapes:")
	fmt.Println("  /<repo>/tree/<revision>            file list with ?download=true anchors")
	fmt.Println("  /<repo>/resolve/<revision>/<file>  file contents")
	fmt.Println()
	fmt.Printf("Point hfdl at it with domain=http://localhost:%d\n", cfg.Port)
	fmt.Println()

	server := demoserver.NewDemoServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
