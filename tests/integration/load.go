package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

const (
	baseURL        = "http://localhost:8080"
	businessID     = "load-test-business"
	numAccounts    = 50         // Number of accounts to create
	numMovements   = 5000       // Total number of movements
	maxConcurrency = 100        // Maximum number of concurrent requests
	seedCredit     = 10000.0    // Opening credit for each account
	maxAmount      = 400.0      // Maximum debit amount (inside every tier cap)
	successColor   = "\033[32m" // Green
	errorColor     = "\033[31m" // Red
	infoColor      = "\033[34m" // Blue
	resetColor     = "\033[0m"  // Reset color
)

type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Movement struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type Balance struct {
	AccountID string  `json:"account_id"`
	Balance   float64 `json:"balance"`
}

func main() {
	rand.Seed(time.Now().UnixNano())

	fmt.Printf("%sstarting a load test with %d accounts and %d movements%s\n",
		infoColor, numAccounts, numMovements, resetColor)

	// Create accounts and seed each one with an opening credit
	accounts := createAccounts(numAccounts)
	fmt.Printf("%sCreated %d accounts%s\n", successColor, len(accounts), resetColor)

	for _, account := range accounts {
		if _, err := createMovement(account.ID, "CREDIT", seedCredit); err != nil {
			fmt.Printf("%sFailed to seed account %s: %v%s\n", errorColor, account.ID, err, resetColor)
		}
	}

	// Create semaphore for limiting concurrency
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	// Track performance
	startTime := time.Now()
	successCount := 0
	rejectedCount := 0
	lockedCount := 0
	errorCount := 0
	var mu sync.Mutex

	fmt.Printf("%slaunching %d movements with max concurrency of %d%s\n",
		infoColor, numMovements, maxConcurrency, resetColor)

	for i := 0; i < numMovements; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire semaphore

		go func(mvNum int) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore

			// Randomly select an account
			account := accounts[rand.Intn(len(accounts))]

			// Randomly decide between credit and debit
			mvType := "CREDIT"
			if rand.Intn(2) == 1 {
				mvType = "DEBIT"
			}

			// Random amount between the minimum withdrawal and maxAmount
			amount := 20.0 + rand.Float64()*(maxAmount-20.0)
			amount = float64(int(amount*100)) / 100 // Round to 2 decimal places

			status, err := createMovementStatus(account.ID, mvType, amount)

			mu.Lock()
			switch {
			case err != nil:
				errorCount++
				if mvNum%100 == 0 { // Only log some failures to avoid overwhelming output
					fmt.Printf("%sMovement failed: %v%s\n", errorColor, err, resetColor)
				}
			case status == http.StatusCreated:
				successCount++
			case status == http.StatusConflict:
				lockedCount++ // another movement held the account lock
			default:
				rejectedCount++ // refused by a withdrawal limit or the balance
			}
			mu.Unlock()
		}(i)
	}

	// Wait for all movements to complete
	wg.Wait()
	duration := time.Since(startTime)

	fmt.Printf("\n%s=== load test results ===%s\n", infoColor, resetColor)
	fmt.Printf("Total number of movements: %d\n", numMovements)
	fmt.Printf("Recorded: %s%d (%.1f%%)%s\n",
		successColor, successCount, float64(successCount)/float64(numMovements)*100, resetColor)
	fmt.Printf("Rejected by limits/balance: %d\n", rejectedCount)
	fmt.Printf("Lost the account lock: %d\n", lockedCount)
	fmt.Printf("Failed: %s%d%s\n", errorColor, errorCount, resetColor)
	fmt.Printf("Duration: %.2f seconds\n", duration.Seconds())
	fmt.Printf("Throughput: %.2f movements/second\n", float64(numMovements)/duration.Seconds())

	// Check final balances
	fmt.Printf("\n%sChecking final account balances...%s\n", infoColor, resetColor)
	checkBalances(accounts)
}

// createAccounts creates the specified number of accounts
func createAccounts(count int) []Account {
	accounts := make([]Account, 0, count)

	for i := 0; i < count; i++ {
		reqBody := map[string]string{"name": fmt.Sprintf("load-account-%d", i)}
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			fmt.Printf("%sFailed to marshal JSON: %v%s\n", errorColor, err, resetColor)
			continue
		}

		url := fmt.Sprintf("%s/businesses/%s/accounts", baseURL, businessID)
		resp, err := http.Post(url, "application/json", bytes.NewBuffer(jsonData))
		if err != nil {
			fmt.Printf("%sFailed to create account: %v%s\n", errorColor, err, resetColor)
			continue
		}

		if resp.StatusCode != http.StatusCreated {
			body, _ := io.ReadAll(resp.Body)
			fmt.Printf("%sFailed to create account, status: %d, body: %s%s\n",
				errorColor, resp.StatusCode, string(body), resetColor)
			resp.Body.Close()
			continue
		}

		var account Account
		if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
			fmt.Printf("%sFailed to decode response: %v%s\n", errorColor, err, resetColor)
			resp.Body.Close()
			continue
		}
		resp.Body.Close()

		accounts = append(accounts, account)
	}

	return accounts
}

// createMovement records a movement and returns its id
func createMovement(accountID, mvType string, amount float64) (string, error) {
	reqBody := map[string]interface{}{
		"type":   mvType,
		"amount": amount,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %v", err)
	}

	url := fmt.Sprintf("%s/businesses/%s/accounts/%s/movements", baseURL, businessID, accountID)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create movement: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed to create movement, status: %d, body: %s", resp.StatusCode, string(body))
	}

	var movement Movement
	if err := json.NewDecoder(resp.Body).Decode(&movement); err != nil {
		return "", fmt.Errorf("failed to decode response: %v", err)
	}

	return movement.ID, nil
}

// createMovementStatus records a movement and returns only the HTTP status
func createMovementStatus(accountID, mvType string, amount float64) (int, error) {
	reqBody := map[string]interface{}{
		"type":   mvType,
		"amount": amount,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal JSON: %v", err)
	}

	url := fmt.Sprintf("%s/businesses/%s/accounts/%s/movements", baseURL, businessID, accountID)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, fmt.Errorf("failed to create movement: %v", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// getBalance retrieves the projected balance of an account
func getBalance(accountID string) (*Balance, error) {
	url := fmt.Sprintf("%s/businesses/%s/accounts/%s/balance", baseURL, businessID, accountID)
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get balance, status: %d, body: %s", resp.StatusCode, string(body))
	}

	var balance Balance
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	return &balance, nil
}

// getMovements retrieves the recorded ledger for an account
func getMovements(accountID string) ([]Movement, error) {
	url := fmt.Sprintf("%s/businesses/%s/accounts/%s/movements?limit=100", baseURL, businessID, accountID)
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to get movements: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get movements, status: %d, body: %s", resp.StatusCode, string(body))
	}

	var movements []Movement
	if err := json.NewDecoder(resp.Body).Decode(&movements); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	return movements, nil
}

// checkBalances samples accounts and compares the projected balance with
// the ledger the API reports
func checkBalances(accounts []Account) {
	sampleSize := min(10, len(accounts)) // Check up to 10 accounts

	for i := 0; i < sampleSize; i++ {
		account := accounts[rand.Intn(len(accounts))]

		balance, err := getBalance(account.ID)
		if err != nil {
			fmt.Printf("%sError retrieving balance for account %s: %v%s\n",
				errorColor, account.ID, err, resetColor)
			continue
		}

		movements, err := getMovements(account.ID)
		if err != nil {
			fmt.Printf("%sError retrieving movements for account %s: %v%s\n",
				errorColor, account.ID, err, resetColor)
			continue
		}

		creditCount := 0
		debitCount := 0
		for _, mv := range movements {
			if mv.Type == "CREDIT" {
				creditCount++
			} else if mv.Type == "DEBIT" {
				debitCount++
			}
		}

		fmt.Printf("%sAccount %d: %s%s\n", infoColor, i+1, account.ID, resetColor)
		fmt.Printf("  Projected balance: %.2f\n", balance.Balance)
		fmt.Printf("  Movements: %d total (%d credits, %d debits)\n",
			len(movements), creditCount, debitCount)
	}
}

// min returns the minimum of two integers
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
