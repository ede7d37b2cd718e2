// Package remote defines the document store that mirrors local data per user.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Document is a schemaless remote record. Values are JSON-compatible.
type Document map[string]any

var ErrNotFound = errors.New("remote document not found")

// Store addresses documents as users/{userID}/{collection}/{id}.
type Store interface {
	Put(ctx context.Context, userID, collection, id string, doc Document) error
	Get(ctx context.Context, userID, collection, id string) (Document, error)
	Delete(ctx context.Context, userID, collection, id string) error
	List(ctx context.Context, userID, collection string) ([]Document, error)
}

// Encode converts v to a Document through its JSON form.
func Encode(v any) (Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

// Decode fills v from doc.
func Decode(doc Document, v any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}
