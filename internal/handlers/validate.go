// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/postquery"
)

// maxBodyBytes bounds request bodies. Content is capped at 100,000 runes,
// which is at most 400,000 bytes of UTF-8 before JSON escaping.
const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object from r into dst. Unknown fields
// and trailing data are rejected. An empty body is allowed when
// allowEmpty is set and leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			if allowEmpty {
				return nil
			}
			return apperr.Validation("request body is required")
		case errors.As(err, &maxErr):
			return apperr.Validation(fmt.Sprintf("request body is too large (max %d bytes)", maxErr.Limit))
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return apperr.Validation("request body is not valid JSON")
		case errors.As(err, &typeErr):
			if typeErr.Field != "" {
				return apperr.Validation(fmt.Sprintf("%s has the wrong type", typeErr.Field))
			}
			return apperr.Validation("request body must be a JSON object")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return apperr.Validation("unknown field " + field)
		default:
			// uuid.UUID reports malformed ids through UnmarshalText.
			return apperr.Validation("request body is invalid: " + err.Error())
		}
	}

	if dec.More() {
		return apperr.Validation("request body must contain a single JSON object")
	}
	return nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound(entity + " not found")
	}
	return id, nil
}

// listRequest builds a postquery.Request from the query string. Only
// syntax is checked here; ranges are validated by postquery.Normalize.
func listRequest(q url.Values) (postquery.Request, error) {
	req := postquery.Request{
		Filter: models.PostFilter{
			Search:        q.Get("search"),
			CategorySlugs: q["category_slug"],
		},
		Sort: q.Get("sort"),
	}

	if v := q.Get("published"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, apperr.Validation("published must be true or false")
		}
		req.Filter.PublishedOnly = b
	}

	for _, raw := range q["category"] {
		id, err := uuid.Parse(raw)
		if err != nil {
			return req, apperr.Validation(fmt.Sprintf("category %q is not a valid id", raw))
		}
		req.Filter.CategoryIDs = append(req.Filter.CategoryIDs, id)
	}

	var err error
	if req.Page, err = intParam(q, "page"); err != nil {
		return req, err
	}
	if req.PageSize, err = intParam(q, "page_size"); err != nil {
		return req, err
	}
	return req, nil
}

func intParam(q url.Values, key string) (*int, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, apperr.Validation(key + " must be an integer")
	}
	return &n, nil
}
