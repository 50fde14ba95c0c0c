// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Identifier limits
const (
	MaxUserIDLen = 128
	EventIDLen   = 8
)

var (
	ErrInvalidUserID  = errors.New("invalid user id")
	ErrInvalidEventID = errors.New("invalid event id")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateEventID creates a short opaque event id, safe to paste into a URL
func GenerateEventID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate event ID: %w", err)
	}

	id := base62Encode(binary.BigEndian.Uint64(b))
	for len(id) < EventIDLen {
		id = "0" + id
	}
	return id[:EventIDLen], nil
}

// GenerateUserID creates the random per-browser identity a viewer keeps
// across sessions and events
func GenerateUserID() string {
	return uuid.NewString()
}

// ValidateUserID accepts any opaque token of sane length without control or
// separator characters. Older clients may not send UUIDs.
func ValidateUserID(userID string) error {
	if userID == "" || len(userID) > MaxUserIDLen {
		return ErrInvalidUserID
	}
	if strings.ContainsAny(userID, "./\\ \t\r\n") {
		return ErrInvalidUserID
	}
	return nil
}

// IsUUID reports whether the user id was minted by GenerateUserID
func IsUUID(userID string) bool {
	_, err := uuid.Parse(userID)
	return err == nil
}

// ValidateEventID checks an event id taken from a URL or join code
func ValidateEventID(eventID string) error {
	if eventID == "" || len(eventID) > 64 {
		return ErrInvalidEventID
	}
	for i := 0; i < len(eventID); i++ {
		c := eventID[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_') {
			return ErrInvalidEventID
		}
	}
	return nil
}

// base62Encode converts a number to base62 (0-9, a-z, A-Z)
// This creates URL-friendly ids without special characters
func base62Encode(num uint64) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	if num == 0 {
		return "0"
	}

	// Convert to base62
	result := make([]byte, 0, 11) // max length for uint64
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	// Reverse the string
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}
