package utils

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ToNullInt8 converts a domain's *int64 to a pgtype.Int8.
// A nil pointer is considered invalid (NULL).
func ToNullInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

// FromNullInt8 converts a pgtype.Int8 to a domain's *int64.
func FromNullInt8(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	value := v.Int64
	return &value
}

// ToNullTimestamptz converts a domain's *time.Time to a pgtype.Timestamptz.
// A nil pointer is considered invalid (NULL).
func ToNullTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// FromNullTimestamptz converts a pgtype.Timestamptz to a domain's *time.Time.
func FromNullTimestamptz(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time.UTC()
	return &value
}
