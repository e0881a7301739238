package models

import "time"

// Employee is an HR record managed through the generic record store. The auth
// core does not interpret it; it only gates access to the handlers that do.
type Employee struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Position  string
	Salary    float64
	Status    string
	Version   int64
	CreatedAt time.Time
}
