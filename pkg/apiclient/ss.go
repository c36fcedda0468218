package apiclient

import "time"

// StorageServer is a read-only view of one storage server's membership and
// health state, as tracked by the name server's SS registry.
type StorageServer struct {
	ID            int       `json:"id"`
	IP            string    `json:"ip"`
	NMPort        int       `json:"nm_port"`
	ClientPort    int       `json:"client_port"`
	FileCount     int       `json:"file_count"`
	Active        bool      `json:"active"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	RegisteredAt  time.Time `json:"registered_at"`
}

// ListStorageServers returns every storage server the name server has ever
// registered, active or not.
func (c *Client) ListStorageServers() ([]StorageServer, error) {
	return listResources[StorageServer](c, "/api/v1/storage-servers")
}

// GetStorageServer returns a single storage server's health record by ID.
func (c *Client) GetStorageServer(id int) (*StorageServer, error) {
	return getResource[StorageServer](c, resourcePath("/api/v1/storage-servers/%d", id))
}
