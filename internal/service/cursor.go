package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chucky-1/teadiary/internal/model"
)

// MaxCallbackData is the telegram limit for inline button payloads.
const MaxCallbackData = 64

var MalformedCursorErr = errors.New("malformed search cursor")

// savedMark starts a cursor tail that holds a Searches key. It is not in the
// base64url alphabet.
const savedMark = "~"

// Cursor continues a search from the row before BeforeID. UserID pins it to the
// user who started the search. A query too long for the button is kept in
// Searches and the cursor carries its Key instead of Extra.
type Cursor struct {
	UserID   int64
	BeforeID int64
	Extra    string
	Key      int64
}

// Encode renders uid|beforeID|base64url(extra) without padding, or
// uid|beforeID|~key for a saved query.
func (c Cursor) Encode() string {
	tail := ""
	switch {
	case c.Key != 0:
		tail = savedMark + strconv.FormatInt(c.Key, 10)
	case c.Extra != "":
		tail = base64.RawURLEncoding.EncodeToString([]byte(c.Extra))
	}
	return fmt.Sprintf("%d|%d|%s", c.UserID, c.BeforeID, tail)
}

func DecodeCursor(payload string) (Cursor, error) {
	parts := strings.SplitN(payload, "|", 3)
	if len(parts) < 2 {
		return Cursor{}, MalformedCursorErr
	}
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, MalformedCursorErr
	}
	beforeID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Cursor{}, MalformedCursorErr
	}
	c := Cursor{UserID: userID, BeforeID: beforeID}
	if len(parts) == 3 && strings.HasPrefix(parts[2], savedMark) {
		key, err := strconv.ParseInt(strings.TrimPrefix(parts[2], savedMark), 10, 64)
		if err != nil || key <= 0 {
			return Cursor{}, MalformedCursorErr
		}
		c.Key = key
		return c, nil
	}
	if len(parts) == 3 && parts[2] != "" {
		raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[2], "="))
		if err != nil || !utf8.Valid(raw) {
			return Cursor{}, MalformedCursorErr
		}
		c.Extra = string(raw)
	}
	return c, nil
}

// MoreCallback builds the "show more" button payload. It reports false when
// the payload does not fit the telegram limit.
func MoreCallback(kind model.SearchKind, c Cursor) (string, bool) {
	data := fmt.Sprintf("more:%s:%s", kind, c.Encode())
	return data, len(data) <= MaxCallbackData
}

// ParseMoreCallback splits more:<kind>:<payload>.
func ParseMoreCallback(data string) (model.SearchKind, Cursor, error) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[0] != "more" {
		return "", Cursor{}, MalformedCursorErr
	}
	c, err := DecodeCursor(parts[2])
	if err != nil {
		return "", Cursor{}, err
	}
	return model.SearchKind(parts[1]), c, nil
}
