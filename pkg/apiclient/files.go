package apiclient

import "time"

// File is a read-only view of one entry in the name server's file index.
// ACL is rendered as username -> access-level string ("none"/"read"/
// "write"/"read_write") since the wire AccessType enum has no meaning
// outside the protocol.
type File struct {
	Name           string            `json:"name"`
	Owner          string            `json:"owner"`
	StorageServer  int               `json:"storage_server_id"`
	ACL            map[string]string `json:"acl,omitempty"`
	Created        time.Time         `json:"created"`
	Accessed       time.Time         `json:"accessed"`
	LastAccessedBy string            `json:"last_accessed_by,omitempty"`
}

// ListFiles returns every file tracked in the name server's index. prefix
// restricts results to one folder prefix; pass "" for the full listing.
func (c *Client) ListFiles(prefix string) ([]File, error) {
	path := "/api/v1/files"
	if prefix != "" {
		path = resourcePath("/api/v1/files?prefix=%s", prefix)
	}
	return listResources[File](c, path)
}

// GetFile returns the metadata for a single file by name.
func (c *Client) GetFile(name string) (*File, error) {
	return getResource[File](c, resourcePath("/api/v1/files/%s", name))
}
