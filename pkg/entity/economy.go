// pkg/entity/economy.go
package entity

// Economy holds the player's balance. The balance never goes negative:
// debits larger than the balance are rejected, not clamped.
type Economy struct {
	balance int
}

// NewEconomy creates an economy with the given opening balance
func NewEconomy(balance int) *Economy {
	if balance < 0 {
		balance = 0
	}
	return &Economy{balance: balance}
}

// Balance returns the current balance
func (e *Economy) Balance() int {
	return e.balance
}

// Credit adds amount to the balance. Non-positive amounts are ignored.
func (e *Economy) Credit(amount int) {
	if amount <= 0 {
		return
	}
	e.balance += amount
}

// Debit removes amount if the balance covers it and reports whether it did
func (e *Economy) Debit(amount int) bool {
	if amount < 0 || amount > e.balance {
		return false
	}
	e.balance -= amount
	return true
}
