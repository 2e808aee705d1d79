package main

// @title POS Reconciliation API
// @version 1.0
// @description Dual-currency (USD/IQD) sales, debts, returns and cash drawer reconciliation.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	Execute()
}
