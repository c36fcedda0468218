package apiclient

// User is a read-only view of a registered client's session state, as
// tracked by the name server's UserRegistry. The admin API never creates,
// updates, or deletes users — registration happens only through the NM
// wire protocol's register/deregister messages.
type User struct {
	Username string `json:"username"`
	ClientIP string `json:"client_ip"`
	Active   bool   `json:"active"`
}

// ListUsers returns every username the name server has ever registered,
// active or not.
func (c *Client) ListUsers() ([]User, error) {
	return listResources[User](c, "/api/v1/users")
}

// GetUser returns the session state for a single username.
func (c *Client) GetUser(username string) (*User, error) {
	return getResource[User](c, resourcePath("/api/v1/users/%s", username))
}

// GetCurrentUser returns the identity associated with the admin API token
// used to authenticate this client.
func (c *Client) GetCurrentUser() (*User, error) {
	return getResource[User](c, "/api/v1/auth/me")
}
