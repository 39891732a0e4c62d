package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type refMode int

const (
	modeUnset refMode = iota
	modeDocuments
	modeStore
)

// DefaultDocumentFields are requested when a document query names none.
var DefaultDocumentFields = []string{"id", "text"}

// Ref is an immutable reference to a location in the API: a document set,
// a document within a set, the store, or a store object. Selectors return
// a new Ref, so chains never mutate shared state and a Ref can be reused
// or forked freely.
//
// Selector preconditions are checked at selector-call time; a violation is
// latched into the returned Ref and reported by Err and by every
// subsequent action.
//
//	ref := client.Ref().DocumentSet(5).Document(9)
//	resp, err := ref.Get(ctx)
type Ref struct {
	client *Client
	exec   Executor // per-call override, nil means client default
	mode   refMode
	setID  int64
	docID  int64
	objID  int64
	err    error
}

// Ref returns an unselected reference rooted at the client.
func (c *Client) Ref() Ref {
	return Ref{client: c}
}

// DocumentSet selects a document set, clearing any previously selected
// document.
func (r Ref) DocumentSet(id int64) Ref {
	r.mode = modeDocuments
	r.setID = id
	r.docID = 0
	return r
}

// Document selects a document within the currently selected document set.
// Selecting a document before a document set latches a PreconditionError.
func (r Ref) Document(id int64) Ref {
	if r.err != nil {
		return r
	}
	if r.setID == 0 {
		r.err = &PreconditionError{Reason: "must select a document set before a document"}
		return r
	}
	r.mode = modeDocuments
	r.docID = id
	return r
}

// Store selects the store, clearing any previously selected object.
func (r Ref) Store() Ref {
	r.mode = modeStore
	r.objID = 0
	return r
}

// StoreObject selects a single store object.
func (r Ref) StoreObject(id int64) Ref {
	r.mode = modeStore
	r.objID = id
	return r
}

// WithExecutor overrides the client's default executor for actions on this
// Ref.
func (r Ref) WithExecutor(e Executor) Ref {
	r.exec = e
	return r
}

// Err reports a precondition violated by an earlier selector call.
func (r Ref) Err() error {
	return r.err
}

// DocumentQuery narrows a document listing.
type DocumentQuery struct {
	// Fields to request; DefaultDocumentFields when empty.
	Fields []string
	// Sort order, omitted when empty.
	Sort string
}

// DocumentIDs fetches only the IDs of the selected set's documents.
func (r Ref) DocumentIDs(ctx context.Context) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.setID == 0 {
		return nil, &PreconditionError{Reason: "no document set selected"}
	}
	path := fmt.Sprintf("/document-sets/%d/documents?fields=id", r.setID)
	return r.client.Dispatch(ctx, r.exec, http.MethodGet, path, nil)
}

// Documents fetches the selected set's documents. The request always
// carries stream=true: the server may stream the response, and the
// executor owns those semantics.
func (r Ref) Documents(ctx context.Context, q DocumentQuery) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.setID == 0 {
		return nil, &PreconditionError{Reason: "no document set selected"}
	}
	fields := q.Fields
	if len(fields) == 0 {
		fields = DefaultDocumentFields
	}
	path := fmt.Sprintf("/document-sets/%d/documents?stream=true&fields=%s", r.setID, strings.Join(fields, ","))
	if q.Sort != "" {
		path += "&sort=" + q.Sort
	}
	return r.client.Dispatch(ctx, r.exec, http.MethodGet, path, nil)
}

// Get fetches whatever the Ref points at: a single document when one is
// selected, the full document listing for a bare document set, or a single
// store object. A bare store selection is ambiguous (state vs. object
// list) and fails.
func (r Ref) Get(ctx context.Context) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	switch r.mode {
	case modeDocuments:
		if r.docID != 0 {
			path := fmt.Sprintf("/document-sets/%d/documents/%d", r.setID, r.docID)
			return r.client.Dispatch(ctx, r.exec, http.MethodGet, path, nil)
		}
		return r.Documents(ctx, DocumentQuery{})
	case modeStore:
		if r.objID != 0 {
			path := fmt.Sprintf("/store/objects/%d", r.objID)
			return r.client.Dispatch(ctx, r.exec, http.MethodGet, path, nil)
		}
		return nil, &PreconditionError{Reason: "no store object selected: use State or Objects for the store itself"}
	default:
		return nil, &PreconditionError{Reason: "nothing selected"}
	}
}

// State fetches the store's global state. Requires the store to be
// selected.
func (r Ref) State(ctx context.Context) (*Response, error) {
	if err := r.requireStore(); err != nil {
		return nil, err
	}
	return r.client.Dispatch(ctx, r.exec, http.MethodGet, "/store/state", nil)
}

// SetState replaces the store's global state. Requires the store to be
// selected.
func (r Ref) SetState(ctx context.Context, state any) (*Response, error) {
	if err := r.requireStore(); err != nil {
		return nil, err
	}
	return r.client.Dispatch(ctx, r.exec, http.MethodPut, "/store/state", state)
}

// Objects lists all store objects. Requires the store to be selected.
func (r Ref) Objects(ctx context.Context) (*Response, error) {
	if err := r.requireStore(); err != nil {
		return nil, err
	}
	return r.client.Dispatch(ctx, r.exec, http.MethodGet, "/store/objects", nil)
}

// CreateObject creates a store object. Unlike the other store actions it
// does not require the store to be selected; the server scopes objects by
// token regardless.
func (r Ref) CreateObject(ctx context.Context, state any) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.client.Dispatch(ctx, r.exec, http.MethodPost, "/store/objects", state)
}

// UpdateObject replaces the selected store object.
func (r Ref) UpdateObject(ctx context.Context, state any) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.objID == 0 {
		return nil, &PreconditionError{Reason: "no store object selected"}
	}
	path := fmt.Sprintf("/store/objects/%d", r.objID)
	return r.client.Dispatch(ctx, r.exec, http.MethodPut, path, state)
}

func (r Ref) requireStore() error {
	if r.err != nil {
		return r.err
	}
	if r.mode != modeStore {
		return &PreconditionError{Reason: "store not selected"}
	}
	return nil
}
