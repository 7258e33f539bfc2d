// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danielhkuo/quickly-tally/models"
)

var voteFields = []string{"poll_id", "choice"}

// voteBodyError is a well-formed JSON body that does not describe a vote
type voteBodyError string

func (e voteBodyError) Error() string { return string(e) }

// decodeVote reads a vote out of a single JSON value. Field names match
// exactly; a duplicated field or a case variant of a field is rejected rather
// than resolved. Other unknown fields are ignored.
func decodeVote(raw json.RawMessage) (models.VoteRequest, error) {
	var req models.VoteRequest

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return req, voteBodyError("request body must be a JSON object")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return req, voteBodyError("request body must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return req, voteBodyError("request body must be a JSON object")
		}
		key, _ := tok.(string)

		var dst **string
		switch key {
		case "poll_id":
			dst = &req.PollID
		case "choice":
			dst = &req.Choice
		default:
			for _, field := range voteFields {
				if strings.EqualFold(key, field) {
					return req, voteBodyError(fmt.Sprintf("unknown field %q, expected %q", key, field))
				}
			}
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return req, voteBodyError("request body must be a JSON object")
			}
			continue
		}

		if *dst != nil {
			return req, voteBodyError(fmt.Sprintf("duplicate field %q", key))
		}
		var value *string
		if err := dec.Decode(&value); err != nil || value == nil {
			return req, voteBodyError(key + " must be a string")
		}
		*dst = value
	}

	return req, nil
}
