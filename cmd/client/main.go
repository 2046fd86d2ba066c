package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"
)

type contactResponse struct {
	Message string `json:"message"`
	Contact struct {
		Id    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"contact"`
}

// Usage example on the command line:
// > go run main.go -base=http://localhost:3000
//
// Every row submits the given number of contacts and prints the average latency of the
// submissions and of loading the landing page, in microseconds.
func main() {
	base := flag.String("base", "http://localhost:3000", "the base URL of the contact form service")
	flag.Parse()

	fmt.Println()
	fmt.Println("  Elements      POST       GET ")
	fmt.Println("-------------------------------")
	sizes := []int{100, 500, 1000, 5000, 10000}
	for _, loops := range sizes {
		fmt.Printf("%10d", loops)
		{
			// POST requests
			var duration int64
			for i := 0; i < loops; i++ {
				jsonBody := []byte(fmt.Sprintf(`{"name": "Marcus Antonius %d", "email": "marcus%d@example.com"}`, i, i))
				_, d := sendPostRequest(*base, bytes.NewReader(jsonBody))
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		{
			// GET requests
			var duration int64
			for i := 0; i < loops; i++ {
				_, d := sendRequest(http.MethodGet, *base+"/", nil)
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		fmt.Println()
	}
}

func sendPostRequest(base string, bodyReader io.Reader) (int64, int64) {
	resBody, duration := sendRequest(http.MethodPost, base+"/api/contact", bodyReader)
	var response contactResponse
	err := json.Unmarshal(resBody, &response)
	if err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	if response.Contact.Id == 0 {
		panic("contact not created: " + response.Message)
	}
	return response.Contact.Id, duration
}

func sendRequest(method string, requestURL string, bodyReader io.Reader) ([]byte, int64) {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	return resBody, after - before
}
