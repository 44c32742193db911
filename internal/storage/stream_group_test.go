package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimSkipsBelowMinIdleWithoutForce(t *testing.T) {
	s := NewStream()
	id := StreamID{Ms: 1, Seq: 0}
	s.Add(id, []string{"field", "value"})
	require.NoError(t, s.CreateGroup("g", MinStreamID))

	_, err := s.ReadGroup("g", "alice", ">", 10, 1000)
	require.NoError(t, err)

	claimed, err := s.Claim("g", "bob", []StreamID{id}, 10_000, 1100, false, false)
	require.NoError(t, err)
	assert.Empty(t, claimed, "idle time under minIdleMs leaves ownership unchanged")
}

func TestClaimReassignsAfterIdleTimeElapses(t *testing.T) {
	s := NewStream()
	id := StreamID{Ms: 1, Seq: 0}
	s.Add(id, []string{"field", "value"})
	require.NoError(t, s.CreateGroup("g", MinStreamID))

	_, err := s.ReadGroup("g", "alice", ">", 10, 1000)
	require.NoError(t, err)

	claimed, err := s.Claim("g", "bob", []StreamID{id}, 10, 2000, false, false)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, id, claimed[0].ID)

	g := s.Groups["g"]
	assert.Equal(t, "bob", g.PEL[id].Consumer)
	_, aliceStillOwns := g.Consumers["alice"].Pending[id]
	assert.False(t, aliceStillOwns)
	_, bobOwns := g.Consumers["bob"].Pending[id]
	assert.True(t, bobOwns)
}

func TestClaimWithoutForceSkipsIDAbsentFromPEL(t *testing.T) {
	s := NewStream()
	id := StreamID{Ms: 1, Seq: 0}
	s.Add(id, []string{"field", "value"})
	require.NoError(t, s.CreateGroup("g", MinStreamID))
	// never delivered via ReadGroup, so id has no PEL entry

	claimed, err := s.Claim("g", "bob", []StreamID{id}, 0, 1000, false, false)
	require.NoError(t, err)
	assert.Empty(t, claimed, "an ID never delivered to the group is not claimable without FORCE")
	assert.Empty(t, s.Groups["g"].PEL, "no PEL entry is created without FORCE")
}

func TestClaimWithForceCreatesPELEntryForLoggedID(t *testing.T) {
	s := NewStream()
	id := StreamID{Ms: 1, Seq: 0}
	s.Add(id, []string{"field", "value"})
	require.NoError(t, s.CreateGroup("g", MinStreamID))

	claimed, err := s.Claim("g", "bob", []StreamID{id}, 10_000, 1000, false, true)
	require.NoError(t, err)
	require.Len(t, claimed, 1, "FORCE bypasses the idle-time gate for a newly created PEL entry")
	assert.Equal(t, id, claimed[0].ID)

	pe, exists := s.Groups["g"].PEL[id]
	require.True(t, exists)
	assert.Equal(t, "bob", pe.Consumer)
}

func TestClaimWithForceSkipsIDNotInLog(t *testing.T) {
	s := NewStream()
	require.NoError(t, s.CreateGroup("g", MinStreamID))
	neverAdded := StreamID{Ms: 99, Seq: 0}

	claimed, err := s.Claim("g", "bob", []StreamID{neverAdded}, 0, 1000, false, true)
	require.NoError(t, err)
	assert.Empty(t, claimed, "FORCE does not conjure entries for IDs absent from the stream log")
}

func TestClaimJustIDDoesNotIncrementDeliveryCount(t *testing.T) {
	s := NewStream()
	id := StreamID{Ms: 1, Seq: 0}
	s.Add(id, []string{"field", "value"})
	require.NoError(t, s.CreateGroup("g", MinStreamID))

	_, err := s.ReadGroup("g", "alice", ">", 10, 1000)
	require.NoError(t, err)
	before := s.Groups["g"].PEL[id].DeliveryCount

	_, err = s.Claim("g", "bob", []StreamID{id}, 0, 2000, true, false)
	require.NoError(t, err)
	assert.Equal(t, before, s.Groups["g"].PEL[id].DeliveryCount)
}
