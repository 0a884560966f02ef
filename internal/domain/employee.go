package domain

import "time"

// Employee is a support operator. Level is the seniority tier used as a grouping dimension.
type Employee struct {
	ID      string
	Name    string
	Level   int
	HiredAt *time.Time
}
