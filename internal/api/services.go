package api

// Service accessors group typed helpers by resource. Each service embeds
// *Client so helpers can share the dispatch and decode plumbing.

type DocumentsService struct{ *Client }

type StoreService struct{ *Client }

func (c *Client) Documents() DocumentsService {
	return DocumentsService{c}
}

func (c *Client) Store() StoreService {
	return StoreService{c}
}
