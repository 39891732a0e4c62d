package api

import (
	"context"
	"net/http"
	"testing"
)

func jsonExecutor(status int, body string) *fakeExecutor {
	return &fakeExecutor{resp: &Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(body),
	}}
}

func TestDocuments_IDs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []int64
	}{
		{"bare array", `[1,2,3]`, []int64{1, 2, 3}},
		{"object array", `[{"id":4},{"id":5}]`, []int64{4, 5}},
		{"items wrapped", `{"items":[{"id":6,"text":"x"}]}`, []int64{6}},
		{"items wrapped bare", `{"items":[7,8]}`, []int64{7, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := jsonExecutor(200, tt.body)
			client := New("https://example.com", "t", WithExecutor(exec))

			ids, err := client.Documents().IDs(context.Background(), 5)
			if err != nil {
				t.Fatalf("IDs error: %v", err)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("IDs = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("IDs = %v, want %v", ids, tt.want)
					break
				}
			}
		})
	}
}

func TestDocuments_List(t *testing.T) {
	exec := jsonExecutor(200, `{"items":[{"id":1,"title":"One","text":"body"},{"id":2,"title":"Two"}]}`)
	client := New("https://example.com", "t", WithExecutor(exec))

	docs, err := client.Documents().List(context.Background(), 5, DocumentQuery{Fields: []string{"id", "title", "text"}})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(docs) != 2 || docs[0].Title != "One" || docs[1].ID != 2 {
		t.Errorf("List = %+v", docs)
	}
}

func TestDocuments_Get(t *testing.T) {
	exec := jsonExecutor(200, `{"id":9,"title":"Doc","text":"hello","suppliedId":"s-9"}`)
	client := New("https://example.com", "t", WithExecutor(exec))

	doc, err := client.Documents().Get(context.Background(), 5, 9)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if doc.ID != 9 || doc.Text != "hello" || doc.SuppliedID != "s-9" {
		t.Errorf("Get = %+v", doc)
	}
	if exec.req.URL != "https://example.com/api/v1/document-sets/5/documents/9" {
		t.Errorf("URL = %q", exec.req.URL)
	}
}

func TestDocuments_APIError(t *testing.T) {
	exec := jsonExecutor(404, `not found`)
	client := New("https://example.com", "t", WithExecutor(exec))

	_, err := client.Documents().Get(context.Background(), 5, 9)
	if err == nil {
		t.Fatal("Expected error for 404")
	}
	if !IsNotFoundError(err) {
		t.Errorf("IsNotFoundError = false for %v", err)
	}
}
