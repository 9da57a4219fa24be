package models

import (
	"time"
)

type Setting struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}
