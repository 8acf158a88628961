package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Request shapes checked before a call is forwarded to the backend. Fields
// are pointers so a missing key can be told apart from a zero value.

type userBody struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type itemBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type bookingBody struct {
	ItemID *int64     `json:"itemId"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
}

type commentBody struct {
	Text *string `json:"text"`
}

type requestBody struct {
	Description *string `json:"description"`
}

func validateNewUser(body []byte) error {
	var u userBody
	if err := json.Unmarshal(body, &u); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if u.Email == nil || strings.TrimSpace(*u.Email) == "" || !strings.Contains(*u.Email, "@") {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func validateUserPatch(body []byte) error {
	var u userBody
	if err := json.Unmarshal(body, &u); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if u.Email != nil && (strings.TrimSpace(*u.Email) == "" || !strings.Contains(*u.Email, "@")) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func validateNewItem(body []byte) error {
	var i itemBody
	if err := json.Unmarshal(body, &i); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if i.Available == nil {
		return fmt.Errorf("availability status is missing")
	}
	if i.Name == nil || strings.TrimSpace(*i.Name) == "" {
		return fmt.Errorf("item name is missing")
	}
	if i.Description == nil {
		return fmt.Errorf("item description is missing")
	}
	return nil
}

func validateNewBooking(body []byte) error {
	var b bookingBody
	if err := json.Unmarshal(body, &b); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if b.ItemID == nil {
		return fmt.Errorf("itemId is missing")
	}
	if b.Start == nil || b.End == nil {
		return fmt.Errorf("incorrect booking date")
	}
	if b.Start.After(*b.End) || b.Start.Before(time.Now()) {
		return fmt.Errorf("incorrect booking date")
	}
	return nil
}

func validateNewComment(body []byte) error {
	var c commentBody
	if err := json.Unmarshal(body, &c); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if c.Text == nil || *c.Text == "" {
		return fmt.Errorf("comment text must not be empty")
	}
	return nil
}

func validateNewRequest(body []byte) error {
	var rb requestBody
	if err := json.Unmarshal(body, &rb); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if rb.Description == nil {
		return fmt.Errorf("request description must not be empty")
	}
	return nil
}

// validatePaging rejects negative from and non-positive size; either may be
// absent, but not in combination with the other being malformed.
func validatePaging(r *http.Request) error {
	from, err := optionalInt(r, "from")
	if err != nil {
		return err
	}
	size, err := optionalInt(r, "size")
	if err != nil {
		return err
	}
	if from != nil && size != nil && (*from < 0 || *size <= 0) {
		return fmt.Errorf("from and size must not be negative")
	}
	return nil
}

func validateState(r *http.Request) error {
	state := r.URL.Query().Get("state")
	switch state {
	case "", "ALL", "PAST", "FUTURE", "CURRENT", "REJECTED", "WAITING":
		return nil
	default:
		return fmt.Errorf("Unknown state: %s", state)
	}
}

func optionalInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &v, nil
}

func requireUserHeader(r *http.Request) error {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		return fmt.Errorf("%s header is required", userIDHeader)
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		return fmt.Errorf("%s header must be an integer", userIDHeader)
	}
	return nil
}
