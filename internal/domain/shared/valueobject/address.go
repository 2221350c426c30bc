package valueobject

import "strings"

// ShippingAddress is the delivery address captured with an order
type ShippingAddress struct {
	Line1   string `json:"address_one"`
	Line2   string `json:"address_two"`
	Country string `json:"country"`
	ZipCode string `json:"zip_code"`
	Phone   string `json:"phone"`
}

// Lines returns the non-empty address lines for display and export
func (a ShippingAddress) Lines() []string {
	lines := make([]string, 0, 3)
	for _, l := range []string{a.Line1, a.Line2, strings.TrimSpace(a.Country + " " + a.ZipCode)} {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// String joins the address lines with commas
func (a ShippingAddress) String() string {
	return strings.Join(a.Lines(), ", ")
}
