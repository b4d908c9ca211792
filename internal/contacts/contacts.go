// Package contacts is the static internal directory. The list ships with
// the binary; there is no remote source.
package contacts

import "mzstay/internal/domain"

var directory = []domain.Contact{
	{ID: "c1", Name: "Alice Wang", MobileAU: "0412 345 678", Department: "Cleaning", Title: "Cleaner"},
	{ID: "c2", Name: "Bob Chen", MobileAU: "0422 111 222", Department: "Customer Success", Title: "CS"},
	{ID: "c3", Name: "Cindy Li", MobileAU: "0433 222 333", Department: "Operations", Title: "Ops"},
	{ID: "c4", Name: "David Zhang", MobileAU: "0444 333 444", Department: "Maintenance", Title: "Handyman"},
	{ID: "c5", Name: "Emily Zhou", MobileAU: "0455 444 555", Department: "Finance", Title: "Accountant"},
	{ID: "c6", Name: "Frank Liu", MobileAU: "0466 555 666", Department: "Front Desk", Title: "Reception"},
	{ID: "c7", Name: "Grace Hu", MobileAU: "0477 666 777", Department: "Cleaning", Title: "Supervisor"},
	{ID: "c8", Name: "Henry Sun", MobileAU: "0488 777 888", Department: "Operations", Title: "Coordinator"},
	{ID: "c9", Name: "Ivy Gao", MobileAU: "0499 888 999", Department: "Customer Success", Title: "CS"},
}

// All returns the full directory in display order.
func All() []domain.Contact {
	out := make([]domain.Contact, len(directory))
	copy(out, directory)
	return out
}

// ByID returns the contact with the given id.
func ByID(id string) (domain.Contact, bool) {
	for _, c := range directory {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Contact{}, false
}

// ByDepartment filters the directory by exact department name.
func ByDepartment(dept string) []domain.Contact {
	var out []domain.Contact
	for _, c := range directory {
		if c.Department == dept {
			out = append(out, c)
		}
	}
	return out
}
