package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Document is a single document in a document set.
type Document struct {
	ID         int64          `json:"id"`
	Title      string         `json:"title,omitempty"`
	Text       string         `json:"text,omitempty"`
	URL        string         `json:"url,omitempty"`
	SuppliedID string         `json:"suppliedId,omitempty"`
	PageNumber *int           `json:"pageNumber,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// documentList tolerates both response shapes the server produces: a bare
// JSON array and an object wrapping the array under "items".
type documentList struct {
	Items []Document
}

func (l *documentList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &l.Items)
	}
	var wrapped struct {
		Items []Document `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	l.Items = wrapped.Items
	return nil
}

// idList tolerates bare ID arrays, arrays of {id} objects, and
// items-wrapped variants of either.
type idList struct {
	IDs []int64
}

func (l *idList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		data = bytes.TrimSpace(wrapped.Items)
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err == nil {
		l.IDs = ids
		return nil
	}
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("cannot unmarshal %s into id list", data)
	}
	l.IDs = make([]int64, len(docs))
	for i, d := range docs {
		l.IDs[i] = d.ID
	}
	return nil
}

// IDs retrieves the IDs of every document in the set.
func (s DocumentsService) IDs(ctx context.Context, setID int64) ([]int64, error) {
	resp, err := s.Ref().DocumentSet(setID).DocumentIDs(ctx)
	var result idList
	if err := s.decode(resp, err, &result); err != nil {
		return nil, err
	}
	return result.IDs, nil
}

// List retrieves the set's documents, narrowed by q.
func (s DocumentsService) List(ctx context.Context, setID int64, q DocumentQuery) ([]Document, error) {
	resp, err := s.Ref().DocumentSet(setID).Documents(ctx, q)
	var result documentList
	if err := s.decode(resp, err, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Get retrieves a single document.
func (s DocumentsService) Get(ctx context.Context, setID, docID int64) (*Document, error) {
	resp, err := s.Ref().DocumentSet(setID).Document(docID).Get(ctx)
	var result Document
	if err := s.decode(resp, err, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
