package identity

import "github.com/storeadmin/backend/internal/domain/shared"

// User is a storefront customer. Customers register through the mobile
// app; the dashboard only reads them.
type User struct {
	shared.BaseEntity
	Username string
	Email    string
	Phone    string
	ImageURL string
	Online   bool
}
