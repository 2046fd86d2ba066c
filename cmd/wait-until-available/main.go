package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Usage example on the command line:
// > go run main.go -url=http://localhost:3000/health -timeout=2m
func main() {
	url := flag.String("url", "http://localhost:3000/health", "the URL that must answer with 200")
	interval := flag.Duration("interval", 5*time.Second, "the time between two attempts")
	timeout := flag.Duration("timeout", 5*time.Minute, "give up after this time")
	flag.Parse()

	client := &http.Client{Timeout: *interval}
	var totalWaitTime time.Duration
	for {
		res, err := client.Get(*url)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println(res.Status)
				return
			}
			fmt.Println(res.Status)
		} else {
			fmt.Println(err)
		}
		if totalWaitTime >= *timeout {
			fmt.Printf("Service not available after %s\n", totalWaitTime)
			os.Exit(1)
		}
		totalWaitTime += *interval
		fmt.Printf("Waiting %s\n", totalWaitTime)
		time.Sleep(*interval)
	}
}
