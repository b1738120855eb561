package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"formcraft-backend-go/internal/crypto"
)

// Receipt proves that a browser already answered a form. It lets the
// limit-one-response setting work for anonymous respondents.
type Receipt struct {
	FormID       string
	SubmissionID string
	IssuedAt     time.Time
}

// ReceiptService issues and reads sealed receipt tokens.
type ReceiptService struct {
	key []byte
	now func() time.Time
}

// NewReceiptService creates a receipt service using a 32 byte key.
func NewReceiptService(key []byte) (*ReceiptService, error) {
	if len(key) != crypto.KeyLength {
		return nil, fmt.Errorf("receipt key must be %d bytes, got %d", crypto.KeyLength, len(key))
	}
	return &ReceiptService{key: key, now: time.Now}, nil
}

// Issue seals a receipt for a submission.
func (r *ReceiptService) Issue(formID, submissionID string) (string, error) {
	if formID == "" || submissionID == "" || strings.Contains(formID, "|") || strings.Contains(submissionID, "|") {
		return "", errors.New("invalid receipt identifiers")
	}
	payload := formID + "|" + submissionID + "|" + strconv.FormatInt(r.now().Unix(), 10)
	token, err := crypto.Seal([]byte(payload), r.key)
	if err != nil {
		return "", fmt.Errorf("failed to seal receipt: %w", err)
	}
	return token, nil
}

// Parse opens a receipt token.
func (r *ReceiptService) Parse(token string) (*Receipt, error) {
	plain, err := crypto.Open(token, r.key)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(string(plain), "|")
	if len(parts) != 3 {
		return nil, crypto.ErrInvalidToken
	}
	unix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil, crypto.ErrInvalidToken
	}
	return &Receipt{FormID: parts[0], SubmissionID: parts[1], IssuedAt: time.Unix(unix, 0).UTC()}, nil
}

// HasResponded reports whether token is a valid receipt for formID.
func (r *ReceiptService) HasResponded(token, formID string) bool {
	if token == "" {
		return false
	}
	receipt, err := r.Parse(token)
	return err == nil && receipt.FormID == formID
}
