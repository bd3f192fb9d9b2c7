package formats

import (
	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/JonMunkholm/lineimport/internal/store"
)

func init() {
	registerWishlist()
}

func registerWishlist() {
	core.Register(core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "wishlist",
			Label: "Wishlists",
			Description: "Gift wishlists with parent and child PINs. Replaces all wishlists; " +
				"gift categories are kept and linked.",
			Example: `Wishlist: Anna
Parent-PIN: 1234
Child-PIN: 5678
Items:
* Lego Castle;Toys
* Harry Potter;Books;true`,
		},
		NewRunner: func(env core.Env) core.Runner {
			return newImporter[*core.WishlistItem]("wishlist", env, core.WishlistParser{}, store.NewWishlistWriter(env.DB))
		},
	})
}
