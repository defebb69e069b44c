package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	baseURL = "http://localhost:8080"
	userID  = "user123"
)

// Smoke-tests a running server end to end using the pre-seeded demo user.
func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	// 1. Health check
	checkEndpoint("GET", "/api/health", false, nil, 200)

	// 2. Market data (all must answer 200, live or synthetic)
	checkEndpoint("GET", "/api/market/search?keywords=apple", false, nil, 200)
	checkEndpoint("GET", "/api/market/quote/AAPL", false, nil, 200)
	checkEndpoint("GET", "/api/market/daily/AAPL", false, nil, 200)
	checkEndpoint("GET", "/api/market/search", false, nil, 400)

	// 3. Auth gate
	checkEndpoint("GET", "/api/user/portfolio", false, nil, 401)

	// 4. User reads
	checkEndpoint("GET", "/api/user/portfolio", true, nil, 200)
	checkEndpoint("GET", "/api/user/transactions", true, nil, 200)
	checkEndpoint("GET", "/api/user/balance", true, nil, 200)

	// 5. Trade round trip: buy then sell the same lot
	buy := map[string]interface{}{"symbol": "TSLA", "quantity": 2, "price": 215.50, "type": "buy"}
	checkEndpoint("POST", "/api/user/transactions", true, buy, 200)
	sell := map[string]interface{}{"symbol": "TSLA", "quantity": 2, "price": 220.00, "type": "sell"}
	checkEndpoint("POST", "/api/user/transactions", true, sell, 200)

	// 6. Business-rule rejections
	broke := map[string]interface{}{"symbol": "NVDA", "quantity": 1000000, "price": 925.00, "type": "buy"}
	checkEndpoint("POST", "/api/user/transactions", true, broke, 400)
	short := map[string]interface{}{"symbol": "TSLA", "quantity": 1, "price": 220.00, "type": "sell"}
	checkEndpoint("POST", "/api/user/transactions", true, short, 400)

	fmt.Println("ALL TESTS PASSED")
}

func checkEndpoint(method, path string, auth bool, body interface{}, expectedStatus int) {
	fmt.Printf("Testing %s %s...\n", method, path)
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, baseURL+path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("user-id", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		log.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(respBody))
	}
	fmt.Printf("Response: %s\n", string(respBody))
}
