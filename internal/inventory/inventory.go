package inventory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInUse is returned when a category or provider is deleted while products still refer to it.
	ErrInUse = errors.New("still in use")
	// ErrInvalidPrice is returned when a price can't be parsed.
	ErrInvalidPrice = errors.New("invalid price")
)

// Category groups products.
type Category struct {
	ID          int    `schema:"id"`
	Name        string `schema:"name"`
	Description string `schema:"description"`
}

// Provider supplies products.
type Provider struct {
	ID      int    `schema:"id"`
	Name    string `schema:"name"`
	Email   string `schema:"email"`
	Phone   string `schema:"phone"`
	Address string `schema:"address"`
}

// Product is an item in stock. Every product belongs to one category
// and is supplied by one provider.
type Product struct {
	ID         int    `schema:"id"`
	Name       string `schema:"name"`
	CategoryID int    `schema:"category_id"`
	ProviderID int    `schema:"provider_id"`
	PriceCents Cents  `schema:"price"`
	Stock      int    `schema:"stock"`
}

// ProductView is a product as listed, with the names of its category and provider.
type ProductView struct {
	Product
	CategoryName string
	ProviderName string
}

// ProductFilter is used to filter products.
// Returned products must match all the provided fields.
// If a field is empty or nil, it's ignored.
type ProductFilter struct {
	IDs         []int
	CategoryIDs []int
	ProviderIDs []int
}

// Cents is an amount of money in hundredths of the currency unit.
// In text it is written in units with two decimals, like "12.50".
type Cents int64

func ParseCents(raw string) (Cents, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrInvalidPrice
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, ErrInvalidPrice
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || strings.HasPrefix(whole, "+") {
		return 0, ErrInvalidPrice
	}

	var cents int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}

		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 || strings.HasPrefix(frac, "+") || strings.HasPrefix(frac, "-") {
			return 0, ErrInvalidPrice
		}
	}

	if strings.HasPrefix(whole, "-") {
		return Cents(units*100 - cents), nil
	}

	return Cents(units*100 + cents), nil
}

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (c Cents) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Cents) UnmarshalText(text []byte) error {
	v, err := ParseCents(string(text))
	if err != nil {
		return err
	}

	*c = v
	return nil
}
