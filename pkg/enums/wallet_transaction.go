package enums

import "fmt"

// WalletTransactionType is the direction of a wallet ledger entry.
type WalletTransactionType string

const (
	WalletDebit  WalletTransactionType = "debit"
	WalletCredit WalletTransactionType = "credit"
)

func (t WalletTransactionType) IsValid() bool {
	return t == WalletDebit || t == WalletCredit
}

// Sign returns -1 for debits and +1 for credits.
func (t WalletTransactionType) Sign() int64 {
	if t == WalletDebit {
		return -1
	}
	return 1
}

func ParseWalletTransactionType(value string) (WalletTransactionType, error) {
	t := WalletTransactionType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid wallet transaction type %q", value)
	}
	return t, nil
}

// WalletTransactionStatus tracks settlement of a wallet ledger entry. Only
// completed entries count towards the balance.
type WalletTransactionStatus string

const (
	WalletTxPending   WalletTransactionStatus = "pending"
	WalletTxCompleted WalletTransactionStatus = "completed"
	WalletTxCancelled WalletTransactionStatus = "cancelled"
)

func (s WalletTransactionStatus) IsValid() bool {
	switch s {
	case WalletTxPending, WalletTxCompleted, WalletTxCancelled:
		return true
	}
	return false
}
