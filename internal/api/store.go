package api

import (
	"bytes"
	"context"
	"encoding/json"
)

// StoreObject is an individually addressable object in the store. The
// server indexes objects by IndexedString; everything else lives in the
// free-form JSON payload.
type StoreObject struct {
	ID            int64          `json:"id"`
	IndexedString string         `json:"indexedString,omitempty"`
	JSON          map[string]any `json:"json"`
}

// Title returns a human-readable name for the object: the "title" key of
// the JSON payload when present, else the indexed string.
func (o *StoreObject) Title() string {
	if title, ok := o.JSON["title"].(string); ok && title != "" {
		return title
	}
	return o.IndexedString
}

// StoreState is the store's single global state resource.
type StoreState map[string]any

type storeObjectList struct {
	Items []StoreObject
}

func (l *storeObjectList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &l.Items)
	}
	var wrapped struct {
		Items []StoreObject `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	l.Items = wrapped.Items
	return nil
}

// State retrieves the store's global state.
func (s StoreService) State(ctx context.Context) (StoreState, error) {
	resp, err := s.Ref().Store().State(ctx)
	var result StoreState
	if err := s.decode(resp, err, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SetState replaces the store's global state and returns the stored value.
func (s StoreService) SetState(ctx context.Context, state any) (StoreState, error) {
	resp, err := s.Ref().Store().SetState(ctx, state)
	var result StoreState
	if err := s.decode(resp, err, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Objects lists all store objects.
func (s StoreService) Objects(ctx context.Context) ([]StoreObject, error) {
	resp, err := s.Ref().Store().Objects(ctx)
	var result storeObjectList
	if err := s.decode(resp, err, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Object retrieves a single store object.
func (s StoreService) Object(ctx context.Context, id int64) (*StoreObject, error) {
	resp, err := s.Ref().StoreObject(id).Get(ctx)
	var result StoreObject
	if err := s.decode(resp, err, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateObject creates a store object from the given payload.
func (s StoreService) CreateObject(ctx context.Context, state any) (*StoreObject, error) {
	resp, err := s.Ref().Store().CreateObject(ctx, state)
	var result StoreObject
	if err := s.decode(resp, err, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateObject replaces a store object's payload.
func (s StoreService) UpdateObject(ctx context.Context, id int64, state any) (*StoreObject, error) {
	resp, err := s.Ref().StoreObject(id).UpdateObject(ctx, state)
	var result StoreObject
	if err := s.decode(resp, err, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
