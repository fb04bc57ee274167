package utils

import "github.com/google/uuid"

// UUIDGenerator produces record identifiers. Version 7 UUIDs start with a
// millisecond timestamp, so ids sort by creation time and are never reused.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a new UUIDv7 string, falling back to a random v4 UUID if
// the time source fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
