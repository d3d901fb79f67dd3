package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, req *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxJSONBody))
	if err != nil {
		return common.ErrInvalidInput
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return common.ErrInvalidInput
	}
	return nil
}

// flexInt is an integer that also accepts its decimal string form, the way
// browser clients tend to send ids.
type flexInt struct {
	value int
	set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var raw json.Number
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = json.Number(strings.TrimSpace(s))
	} else {
		raw = json.Number(b)
	}
	n, err := strconv.Atoi(raw.String())
	if err != nil {
		return errors.New("not an integer")
	}
	f.value, f.set = n, true
	return nil
}

// flexFloat is a price given as a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("not a number")
	}
	*f = flexFloat(v)
	return nil
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type cartItemRequest struct {
	ItemID flexInt `json:"itemId"`
}

type addProductRequest struct {
	Name     string    `json:"name"`
	Image    string    `json:"image"`
	Category string    `json:"category"`
	NewPrice flexFloat `json:"new_price"`
	OldPrice flexFloat `json:"old_price"`
}

type removeProductRequest struct {
	ID   flexInt `json:"id"`
	Name string  `json:"name"`
}
