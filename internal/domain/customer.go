package domain

import "time"

// Address is the shipping address kept on a customer profile.
type Address struct {
	Street     string  `json:"street"`
	City       string  `json:"city"`
	Province   string  `json:"province,omitempty"`
	PostalCode string  `json:"postalCode"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
}

// Profile is the customer data the storefront reads during checkout.
type Profile struct {
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone,omitempty"`
	Address  *Address `json:"address,omitempty"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Customer represents a registered shopper.
type Customer struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      *Address  `json:"address,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile projects the customer onto the checkout profile.
func (c Customer) Profile() *Profile {
	return &Profile{
		FullName: c.FullName,
		Email:    c.Email,
		Phone:    c.Phone,
		Address:  c.Address,
	}
}
