package orders

import (
	"gorm.io/gorm"

	"github.com/shopfront/storefront/internal/cart"
	product "github.com/shopfront/storefront/internal/products"
	"github.com/shopfront/storefront/internal/wallet"
)

// NewStores wires the concrete repositories into tx-bound ledger views.
func NewStores(products *product.Repository, carts cart.CartRepository, wallets wallet.Repository) Stores {
	return Stores{
		Products: func(tx *gorm.DB) ProductStore { return products.WithTx(tx) },
		Carts:    func(tx *gorm.DB) CartStore { return carts.WithTx(tx) },
		Wallets:  func(tx *gorm.DB) WalletStore { return wallets.WithTx(tx) },
	}
}

func (s Stores) complete() bool {
	return s.Products != nil && s.Carts != nil && s.Wallets != nil
}
