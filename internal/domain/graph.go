package domain

import "time"

// FollowModel is one directed follow edge. A single row is both
// follower.following and following.followers.
type FollowModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	FollowerID  string    `gorm:"column:follower_id;type:varchar(36);not null;uniqueIndex:uidx_follows_pair"`
	FollowingID string    `gorm:"column:following_id;type:varchar(36);not null;uniqueIndex:uidx_follows_pair;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (FollowModel) TableName() string { return "follows" }

// BlockModel is one directed block edge: BlockerID blocked BlockedID.
type BlockModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	BlockerID string    `gorm:"column:blocker_id;type:varchar(36);not null;uniqueIndex:uidx_blocks_pair"`
	BlockedID string    `gorm:"column:blocked_id;type:varchar(36);not null;uniqueIndex:uidx_blocks_pair;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (BlockModel) TableName() string { return "blocks" }

// FollowResult is the outcome of a follow toggle.
type FollowResult struct {
	NowFollowing bool `json:"nowFollowing"`
}

// BlockResult is the outcome of a block toggle.
type BlockResult struct {
	NowBlocked bool `json:"nowBlocked"`
}

// EdgeCounts holds follower and following totals of one identity.
type EdgeCounts struct {
	Followers int64
	Following int64
}

// IDSet is a set of ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set is empty.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Viewer is the relationship neighbourhood of the identity making a read.
// Following, Followers and Bookmarked may be restricted to the ids a read
// touches; Blocked and BlockedBy are always complete. A nil *Viewer is an
// anonymous reader.
type Viewer struct {
	ID         string
	Following  IDSet // identities the viewer follows
	Followers  IDSet // identities following the viewer
	Blocked    IDSet // identities the viewer blocked
	BlockedBy  IDSet // identities that blocked the viewer
	Bookmarked IDSet // post ids saved in any of the viewer's lists
}
