package apiclient

// AccessRequest is a read-only view of one pending request_access(file,
// access_kind) entry. This surface is observational only: approving or
// denying a request is a state-mutating wire operation and stays exclusive
// to the NM/client TCP protocol, never the admin API.
type AccessRequest struct {
	ID        int    `json:"id"`
	File      string `json:"file"`
	User      string `json:"user"`
	Access    string `json:"access"`
	Satisfied bool   `json:"satisfied"`
}

// ListAccessRequests returns every pending access request known to the
// name server.
func (c *Client) ListAccessRequests() ([]AccessRequest, error) {
	return listResources[AccessRequest](c, "/api/v1/access-requests")
}

// GetAccessRequest returns a single pending access request by ID.
func (c *Client) GetAccessRequest(id int) (*AccessRequest, error) {
	return getResource[AccessRequest](c, resourcePath("/api/v1/access-requests/%d", id))
}
