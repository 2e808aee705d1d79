package repositories

// Store is the record store seen from inside a unit of work.
type Store interface {
	SaleRepositoryFacade
	DebtRepositoryFacade
	CompanyDebtRepositoryFacade
	PersonalLoanRepositoryFacade
	BuyingHistoryRepositoryFacade
	PaymentHistoryRepositoryFacade
	ReturnLogRepositoryFacade
	BalanceRepositoryFacade
	InventoryRepositoryFacade
	ExchangeRateRepositoryFacade
}
