package nm

import (
	"testing"

	"github.com/shraw06/docsplusplus/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(8)
	rec := s.SS.Register(1, "10.0.0.1", 8080, 8081, nil, nil)
	rec.Active = true
	require.NoError(t, s.Files.Create("doc.txt", "alice", 1))
	return s
}

func TestRouteMetadataOpForwardsToOwningSS(t *testing.T) {
	s := newTestServer(t)
	msg := &wire.Message{Type: wire.MsgInfo, Filename: "doc.txt", Sender: "alice"}

	result, err := s.Route(msg)
	require.NoError(t, err)
	require.NotNil(t, result.Forward)
	assert.Equal(t, 1, result.SS.ID)
	assert.Empty(t, result.Redirect)
}

func TestRouteDataOpRedirectsAfterACLCheck(t *testing.T) {
	s := newTestServer(t)
	msg := &wire.Message{Type: wire.MsgRead, Filename: "doc.txt", Sender: "alice"}

	result, err := s.Route(msg)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8081", result.Redirect)

	meta, err := s.Files.Get("doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "alice", meta.LastAccessedBy)
}

func TestRouteDataOpDeniedWithoutAccess(t *testing.T) {
	s := newTestServer(t)
	msg := &wire.Message{Type: wire.MsgWrite, Filename: "doc.txt", Sender: "mallory"}

	_, err := s.Route(msg)
	assert.Error(t, err)
}

func TestRouteFailsWhenOwningSSInactive(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.SS.Get(1)
	rec.Active = false

	msg := &wire.Message{Type: wire.MsgInfo, Filename: "doc.txt", Sender: "alice"}
	_, err := s.Route(msg)
	assert.Error(t, err)
}

func TestDeleteRequiresOwnerAndUnlockedFile(t *testing.T) {
	s := newTestServer(t)

	err := s.Delete("doc.txt", "mallory", true)
	assert.Error(t, err)

	err = s.Delete("doc.txt", "alice", false)
	assert.Error(t, err)

	err = s.Delete("doc.txt", "alice", true)
	assert.NoError(t, err)
}

func TestAccessRequestApproveWorkflow(t *testing.T) {
	s := newTestServer(t)

	req, err := s.RequestAccess("doc.txt", "bob", AccessRead)
	require.NoError(t, err)
	require.False(t, req.Satisfied)

	pending := s.ViewRequests("alice")
	require.Len(t, pending, 1)

	require.NoError(t, s.ApproveRequest(req.ID, "alice"))
	assert.True(t, s.Files.HasAccess("doc.txt", "bob", AccessRead))
	assert.Empty(t, s.ViewRequests("alice"))
}

func TestAccessRequestApproveRejectsNonOwner(t *testing.T) {
	s := newTestServer(t)
	req, err := s.RequestAccess("doc.txt", "bob", AccessRead)
	require.NoError(t, err)

	err = s.ApproveRequest(req.ID, "mallory")
	assert.Error(t, err)
	// still pending since the non-owner approval was rejected
	assert.Len(t, s.ViewRequests("alice"), 1)
}

func TestAccessRequestDenyRemovesWithoutACLChange(t *testing.T) {
	s := newTestServer(t)
	req, err := s.RequestAccess("doc.txt", "bob", AccessRead)
	require.NoError(t, err)

	require.NoError(t, s.DenyRequest(req.ID, "alice"))
	assert.False(t, s.Files.HasAccess("doc.txt", "bob", AccessRead))
	assert.Empty(t, s.ViewRequests("alice"))
}
